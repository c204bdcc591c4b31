// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"foodfeed/internal/database"
	"foodfeed/internal/imagestore"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// T is the subset of testing.TB the helpers need.
type T interface {
	Helper()
	Fatalf(string, ...any)
	Cleanup(func())
}

// NewTestDB opens a migrated, private in-memory SQLite database.
func NewTestDB(t T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Hold one connection so the shared in-memory database outlives idle pooling.
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGSubmission wraps a tiny PNG as a form submission.
func PNGSubmission(t interface {
	Helper()
	Fatalf(string, ...any)
}) imagestore.Submission {
	t.Helper()
	return imagestore.FileSubmission("dish.png", "image/png", TinyPNG(t, 4, 4))
}

// MemoryImageStore is an in-memory imagestore.Store that records calls.
type MemoryImageStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	Uploads   []imagestore.UploadInput
	Destroys  []string
	next      int
	UploadErr error
	// DestroyErr is returned by Destroy after recording the call.
	DestroyErr error
}

// NewMemoryImageStore creates an empty store.
func NewMemoryImageStore() *MemoryImageStore {
	return &MemoryImageStore{objects: make(map[string][]byte)}
}

func (s *MemoryImageStore) Upload(ctx context.Context, in imagestore.UploadInput) (imagestore.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return imagestore.Asset{}, err
	}
	s.Uploads = append(s.Uploads, in)
	if s.UploadErr != nil {
		return imagestore.Asset{}, s.UploadErr
	}
	s.next++
	folder := in.Folder
	if folder == "" {
		folder = imagestore.DefaultFolder
	}
	id := fmt.Sprintf("%s/img-%d", folder, s.next)
	s.objects[id] = in.Content
	return imagestore.Asset{ID: id, URL: "https://images.test/" + id}, nil
}

func (s *MemoryImageStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Destroys = append(s.Destroys, id)
	if s.DestroyErr != nil {
		return s.DestroyErr
	}
	delete(s.objects, id)
	return nil
}

// Has reports whether id is currently stored.
func (s *MemoryImageStore) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[id]
	return ok
}

// Len is the number of stored objects.
func (s *MemoryImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Put stores an object directly, for seeding prior state.
func (s *MemoryImageStore) Put(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[id] = []byte(strings.ToUpper(id))
}
