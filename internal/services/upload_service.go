package services

import (
	"context"
	"fmt"
	"strings"

	ripple_errors "ripple-chat/pkg/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MaxUploadBytes caps image uploads at 5MB.
const MaxUploadBytes = 5 << 20

// BlobStore is the external blob-store collaborator. It takes binary
// content and hands back a publicly resolvable URL that the rest of the
// system treats as an opaque string.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

type UploadService struct {
	blobs BlobStore
}

func NewUploadService(blobs BlobStore) *UploadService {
	return &UploadService{blobs: blobs}
}

// UploadImage validates size and mime type, stores the bytes and
// returns the public URL. Only image content is accepted.
func (s *UploadService) UploadImage(ctx context.Context, data []byte) (string, error) {
	if s.blobs == nil {
		return "", ripple_errors.ErrValidation
	}
	if len(data) == 0 {
		return "", ripple_errors.ErrValidation
	}
	if len(data) > MaxUploadBytes {
		return "", ripple_errors.ErrTooLarge
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", ripple_errors.ErrValidation
	}

	key := fmt.Sprintf("images/%s%s", uuid.New().String(), detected.Extension())
	return s.blobs.Upload(ctx, key, detected.String(), data)
}
