// Package imagestore uploads and removes post and profile images in an
// external object store.
package imagestore

import (
	"context"
	"errors"
	"mime"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"foodfeed/internal/models"

	"github.com/google/uuid"
)

// DefaultFolder groups every object the application stores.
const DefaultFolder = "foodfeed"

var (
	// ErrStore signals the store was unreachable or failed the call.
	ErrStore = errors.New("image store error")
	// ErrRejected signals the store refused the payload.
	ErrRejected = errors.New("image rejected by store")
	// ErrTooLarge signals the upload exceeded the configured limit.
	ErrTooLarge = errors.New("image too large")
)

// Asset is a stored image.
type Asset struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// UploadInput describes one upload.
type UploadInput struct {
	Content     []byte
	ContentType string
	Filename    string
	Folder      string
	Transform   Transform
}

// Store is an object store for images.
type Store interface {
	// Upload stores the image after applying in.Transform.
	Upload(ctx context.Context, in UploadInput) (Asset, error)
	// Destroy removes the image. Unknown IDs are not an error.
	Destroy(ctx context.Context, id string) error
}

// IsPlaceholder reports whether id is the profile placeholder, which is
// never uploaded and never destroyed.
func IsPlaceholder(id string) bool {
	return models.IsPlaceholderImage(id)
}

var (
	objectIDRegex  = regexp.MustCompile(`^[a-z0-9_-]+/[0-9a-f-]{36}\.[a-z0-9]{2,4}$`)
	extensionRegex = regexp.MustCompile(`^\.[a-z0-9]{2,4}$`)
)

// isValidObjectID guards against traversal before an ID reaches a backend.
func isValidObjectID(id string) bool {
	return objectIDRegex.MatchString(id)
}

// newObjectID returns "<folder>/<uuid>.<ext>".
func newObjectID(folder, contentType, filename string) string {
	if folder == "" {
		folder = DefaultFolder
	}
	return path.Join(strings.ToLower(folder), uuid.New().String()+extensionFor(contentType, filename))
}

func extensionFor(contentType, filename string) string {
	switch normalizeContentType(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/svg+xml":
		return ".svg"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if extensionRegex.MatchString(ext) {
		return ext
	}
	return ".bin"
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
