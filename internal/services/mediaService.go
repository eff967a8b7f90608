package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ObjectStore persists uploaded media and returns a public URL for it.
type ObjectStore interface {
	Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error)
}

// MediaService accepts profile photos and class images.
type MediaService struct {
	objects ObjectStore
}

func NewMediaService(objects ObjectStore) *MediaService {
	return &MediaService{objects: objects}
}

// Upload stores an image under a random name and returns its URL.
func (s *MediaService) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("unsupported content type %q: %w", contentType, ErrBadRequest)
	}
	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	url, err := s.objects.Put(ctx, objectName, r, size, contentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %v: %w", objectName, err, ErrStore)
	}
	return url, nil
}
