package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  repository.Store
	images *testutil.MemoryImageStore
	seeded int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		store:  repository.NewStore(testutil.NewTestDB(t)),
		images: testutil.NewMemoryImageStore(),
	}
}

// seedUser creates a user with its default profile.
func (f *fixture) seedUser(t *testing.T, username string) (*models.Profile, *models.ActingIdentity) {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: username, Password: "unused"}
	require.NoError(t, f.store.Users().Create(ctx, user))
	profile := models.NewProfile(user.ID)
	require.NoError(t, f.store.Profiles().Create(ctx, profile))
	profile.User = *user
	return profile, &models.ActingIdentity{UserID: user.ID, Username: username}
}

// seedPost stores a post whose image already exists in the image store.
func (f *fixture) seedPost(t *testing.T, author *models.Profile, text string) *models.Post {
	t.Helper()
	f.seeded++
	id := fmt.Sprintf("foodfeed/seed-%d", f.seeded)
	f.images.Put(id)
	post := &models.Post{
		AuthorID:  author.ID,
		Text:      text,
		ImageID:   id,
		ImageURL:  "https://images.test/" + id,
		CreatedAt: time.Now().Add(time.Duration(f.seeded) * time.Second),
	}
	require.NoError(t, f.store.Posts().Create(context.Background(), post))
	return post
}

func (f *fixture) seedComment(t *testing.T, post *models.Post, author *models.Profile, body string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: body}
	require.NoError(t, f.store.Comments().Create(context.Background(), comment))
	return comment
}

func (f *fixture) counts(t *testing.T) (posts, comments int64) {
	t.Helper()
	ctx := context.Background()
	posts, err := f.store.Posts().Count(ctx)
	require.NoError(t, err)
	comments, err = f.store.Comments().Count(ctx)
	require.NoError(t, err)
	return posts, comments
}

// assertMessages compares severities and texts in order.
func assertMessages(t *testing.T, o Outcome, want ...models.Message) {
	t.Helper()
	if len(want) == 0 {
		assert.Empty(t, o.Messages)
		return
	}
	assert.Equal(t, want, o.Messages)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

// failingPostStore fails every post insert.
type failingPostStore struct {
	repository.Store
	err error
}

func (s failingPostStore) Posts() repository.PostRepository {
	return failingPostRepo{PostRepository: s.Store.Posts(), err: s.err}
}

type failingPostRepo struct {
	repository.PostRepository
	err error
}

func (r failingPostRepo) Create(context.Context, *models.Post) error {
	return r.err
}
