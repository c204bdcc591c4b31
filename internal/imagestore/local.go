package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps images on disk under a directory served at baseURL.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a disk-backed store rooted at dir.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir is the root directory of stored files.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, fmt.Errorf("%w: %v", ErrStore, err)
	}
	if len(in.Content) == 0 {
		return Asset{}, fmt.Errorf("%w: empty payload", ErrRejected)
	}

	data, err := applyTransform(in.Content, in.ContentType, in.Transform)
	if err != nil {
		return Asset{}, err
	}

	id := newObjectID(in.Folder, in.ContentType, in.Filename)
	if err := writeBytesToFile(s.pathFor(id), data); err != nil {
		return Asset{}, fmt.Errorf("%w: write %s: %v", ErrStore, id, err)
	}
	return Asset{ID: id, URL: s.baseURL + "/" + id}, nil
}

func (s *LocalStore) Destroy(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	if IsPlaceholder(id) || !isValidObjectID(id) {
		return nil
	}
	err := os.Remove(s.pathFor(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: remove %s: %v", ErrStore, id, err)
	}
	return nil
}

func (s *LocalStore) pathFor(id string) string {
	return filepath.Join(s.dir, filepath.FromSlash(id))
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
