package middleware

import (
	"errors"
	"net/http"

	"ripple-chat/internal/transport/httpdto"
	ripple_errors "ripple-chat/pkg/errors"
	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the catch-all for errors attached to the gin context
// that no handler translated itself. Domain sentinels still map onto
// their taxonomy codes here so a stray c.Error never leaks a 200.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.ErrorfCtx(c.Request.Context(), "unhandled request error: %s", err.Error())
		}

		status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
		switch {
		case errors.Is(err, ripple_errors.ErrNotFound):
			status, code = http.StatusNotFound, "NOT_FOUND"
		case errors.Is(err, ripple_errors.ErrConflict):
			status, code = http.StatusConflict, "CONFLICT"
		case errors.Is(err, ripple_errors.ErrValidation):
			status, code = http.StatusBadRequest, "INVALID_REQUEST"
		case errors.Is(err, ripple_errors.ErrUnauthorized):
			status, code = http.StatusUnauthorized, "UNAUTHORIZED"
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}
