package middleware

import (
	"time"

	"ripple-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware logs one line per request with the request id and
// user id fields carried in the context. Health probes are skipped.
func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		if path == "/ping" || path == "/health" {
			return
		}

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		if log == nil {
			return
		}
		log.InfofCtx(c.Request.Context(), "%s %s %d %s",
			method, path, c.Writer.Status(), time.Since(start).String())
	}
}
