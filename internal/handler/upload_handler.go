package handler

import (
	"io"
	"net/http"

	"ripple-chat/internal/services"
	"ripple-chat/internal/transport/httpdto"
	ripple_errors "ripple-chat/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadImage accepts a multipart image, pushes it to the blob store
// and returns the public URL for use as message or status content.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("missing file", "INVALID_REQUEST"))
		return
	}
	if file.Size > services.MaxUploadBytes {
		respondError(c, ripple_errors.ErrTooLarge)
		return
	}

	opened, err := file.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer opened.Close()

	data, err := io.ReadAll(io.LimitReader(opened, services.MaxUploadBytes+1))
	if err != nil {
		respondError(c, err)
		return
	}

	url, err := h.service.UploadImage(c.Request.Context(), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.UploadResponse{URL: url}))
}
