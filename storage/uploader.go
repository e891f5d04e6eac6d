package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const MaxLogoSize = 5 << 20 // 5MB

var (
	ErrUploadsDisabled   = errors.New("file uploads are not configured")
	ErrFileTooLarge      = fmt.Errorf("file must not be larger than %d bytes", MaxLogoSize)
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// SniffImage reads the head of r to detect the image type and returns a reader
// that still yields the full content.
func SniffImage(r io.Reader) (contentType, ext string, full io.Reader, err error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	contentType = http.DetectContentType(head)
	contentType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, contentType)
	}
	return contentType, ext, io.MultiReader(bytes.NewReader(head), r), nil
}

// LogoKey builds keys like "clubs/12/logo_<uuid>.png". A fresh uuid per upload
// keeps CDN caches from serving the previous logo.
func LogoKey(entity string, id int, ext string) string {
	return fmt.Sprintf("%s/%d/logo_%s%s", entity, id, uuid.NewString(), ext)
}
