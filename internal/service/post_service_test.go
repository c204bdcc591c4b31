package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/policy"
	"foodfeed/internal/testutil"
	"foodfeed/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unauthenticated asks to sign in", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, nil, CreatePostInput{Text: "Ramen", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, AuthRequired, o.Kind)
		assertMessages(t, o, models.Info(MsgSignInToPost))
		posts, _ := f.counts(t)
		assert.Zero(t, posts)
		assert.Empty(t, f.images.Uploads)
	})

	t.Run("valid form uploads once and stores the post", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		profile, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Succeeded, o.Kind)
		assertMessages(t, o, models.Success(MsgPostCreated))

		require.Len(t, f.images.Uploads, 1)
		assert.Equal(t, imagestore.DefaultFolder, f.images.Uploads[0].Folder)
		assert.Equal(t, imagestore.LimitTransform, f.images.Uploads[0].Transform)

		require.NotNil(t, o.Post)
		stored, err := f.store.Posts().GetByID(ctx, o.Post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ramen", stored.Text)
		assert.Equal(t, profile.ID, stored.AuthorID)
		assert.Equal(t, "chef", stored.Author.User.Username)
		assert.True(t, f.images.Has(stored.ImageID))
	})

	t.Run("empty text stores nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		assertMessages(t, o, models.Error(MsgPostCreateFailed))
		assert.NotEmpty(t, o.Errors.Field("text"))
		posts, _ := f.counts(t)
		assert.Zero(t, posts)
		assert.Empty(t, f.images.Uploads)
	})

	t.Run("text over the limit is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		long := strings.Repeat("a", validation.MaxPostTextLength+1)
		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: long, Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		posts, _ := f.counts(t)
		assert.Zero(t, posts)
	})

	t.Run("unsupported content type lists the rejection first", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		gif := imagestore.FileSubmission("dish.gif", "image/gif", []byte("GIF89a"))
		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: gif})
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		assertMessages(t, o,
			models.Error(validation.InvalidImageFormatMessage),
			models.Error(MsgPostCreateFailed),
		)
		assert.Empty(t, f.images.Uploads)
	})

	t.Run("missing image is invalid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: imagestore.NoFile()})
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		assertMessages(t, o, models.Error(MsgPostCreateFailed))
	})

	t.Run("store failure is reported without a post", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		f.images.UploadErr = imagestore.ErrStore
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Failed, o.Kind)
		assertMessages(t, o, models.Error(MsgSomethingWentWrong), models.Error(MsgPostCreateFailed))
		posts, _ := f.counts(t)
		assert.Zero(t, posts)
	})

	t.Run("store rejection is invalid", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		f.images.UploadErr = imagestore.ErrRejected
		svc := NewPostService(f.store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		assertMessages(t, o, models.Error(MsgImageNotProcessed), models.Error(MsgPostCreateFailed))
	})

	t.Run("insert failure destroys the uploaded image", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		store := failingPostStore{Store: f.store, err: models.NewInternalError(errors.New("disk full"))}
		svc := NewPostService(store, f.images)

		o, err := svc.CreatePost(ctx, who, CreatePostInput{Text: "Ramen", Image: testutil.PNGSubmission(t)})
		require.NoError(t, err)
		assert.Equal(t, Failed, o.Kind)
		require.Len(t, f.images.Uploads, 1)
		require.Len(t, f.images.Destroys, 1)
		assert.Zero(t, f.images.Len())
	})
}

func TestEditPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner replaces the text only", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, who := f.seedUser(t, "chef")
		post := f.seedPost(t, author, "Ramen")
		svc := NewPostService(f.store, f.images)

		o, err := svc.EditPost(ctx, who, post.ID, "Tonkotsu ramen")
		require.NoError(t, err)
		assert.Equal(t, Succeeded, o.Kind)
		assertMessages(t, o, models.Success(MsgPostUpdated))

		stored, err := f.store.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Tonkotsu ramen", stored.Text)
		assert.Equal(t, post.ImageID, stored.ImageID)
		assert.Empty(t, f.images.Uploads)
		assert.Empty(t, f.images.Destroys)
	})

	t.Run("non-owner leaves the post unchanged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, _ := f.seedUser(t, "chef")
		_, other := f.seedUser(t, "critic")
		post := f.seedPost(t, author, "Ramen")
		svc := NewPostService(f.store, f.images)

		o, err := svc.EditPost(ctx, other, post.ID, "Bad ramen")
		require.NoError(t, err)
		assert.Equal(t, Denied, o.Kind)
		assertMessages(t, o, models.Error(policy.EditPostDenied))

		stored, err := f.store.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ramen", stored.Text)
	})

	t.Run("anonymous edit is denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, _ := f.seedUser(t, "chef")
		post := f.seedPost(t, author, "Ramen")
		svc := NewPostService(f.store, f.images)

		o, err := svc.EditPost(ctx, nil, post.ID, "Bad ramen")
		require.NoError(t, err)
		assert.Equal(t, Denied, o.Kind)
	})

	t.Run("blank text keeps the original", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, who := f.seedUser(t, "chef")
		post := f.seedPost(t, author, "Ramen")
		svc := NewPostService(f.store, f.images)

		o, err := svc.EditPost(ctx, who, post.ID, "   ")
		require.NoError(t, err)
		assert.Equal(t, Invalid, o.Kind)
		assertMessages(t, o, models.Error(MsgPostUpdateFailed))

		stored, err := f.store.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ramen", stored.Text)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		_, err := svc.EditPost(ctx, who, 999, "Ramen")
		assertNotFoundError(t, err)
	})
}

func TestDeletePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("owner removes post comments and image", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, who := f.seedUser(t, "chef")
		critic, _ := f.seedUser(t, "critic")
		post := f.seedPost(t, author, "Ramen")
		f.seedComment(t, post, critic, "Too salty")
		f.seedComment(t, post, author, "Noted")
		svc := NewPostService(f.store, f.images)

		o, err := svc.DeletePost(ctx, who, post.ID)
		require.NoError(t, err)
		assert.Equal(t, Succeeded, o.Kind)
		assertMessages(t, o, models.Success(MsgPostDeleted))

		posts, comments := f.counts(t)
		assert.Zero(t, posts)
		assert.Zero(t, comments)
		assert.Equal(t, []string{post.ImageID}, f.images.Destroys)
		assert.False(t, f.images.Has(post.ImageID))
	})

	t.Run("non-owner leaves everything in place", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, _ := f.seedUser(t, "chef")
		critic, other := f.seedUser(t, "critic")
		post := f.seedPost(t, author, "Ramen")
		f.seedComment(t, post, critic, "Too salty")
		svc := NewPostService(f.store, f.images)

		o, err := svc.DeletePost(ctx, other, post.ID)
		require.NoError(t, err)
		assert.Equal(t, Denied, o.Kind)
		assertMessages(t, o, models.Error(policy.DeletePostDenied))

		posts, comments := f.counts(t)
		assert.EqualValues(t, 1, posts)
		assert.EqualValues(t, 1, comments)
		assert.Empty(t, f.images.Destroys)
	})

	t.Run("destroy failure still deletes the post", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, who := f.seedUser(t, "chef")
		post := f.seedPost(t, author, "Ramen")
		f.images.DestroyErr = imagestore.ErrStore
		svc := NewPostService(f.store, f.images)

		o, err := svc.DeletePost(ctx, who, post.ID)
		require.NoError(t, err)
		assert.Equal(t, Succeeded, o.Kind)
		posts, _ := f.counts(t)
		assert.Zero(t, posts)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, who := f.seedUser(t, "chef")
		svc := NewPostService(f.store, f.images)

		_, err := svc.DeletePost(ctx, who, 42)
		assertNotFoundError(t, err)
	})
}

func TestFeed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("pages of ten newest first", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, _ := f.seedUser(t, "chef")
		for i := 0; i < 12; i++ {
			f.seedPost(t, author, "dish")
		}
		svc := NewPostService(f.store, f.images)

		first, err := svc.Feed(ctx, 1)
		require.NoError(t, err)
		require.Len(t, first.Posts, PageSize)
		assert.Equal(t, PageMeta{Number: 1, NumPages: 2, HasNext: true, HasPrevious: false, Total: 12}, first.Page)
		for i := 1; i < len(first.Posts); i++ {
			assert.True(t, first.Posts[i-1].CreatedAt.After(first.Posts[i].CreatedAt))
		}
		assert.Equal(t, "chef", first.Posts[0].Author.User.Username)

		second, err := svc.Feed(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, second.Posts, 2)
		assert.True(t, second.Page.HasPrevious)
		assert.False(t, second.Page.HasNext)

		last, err := svc.Feed(ctx, LastPage)
		require.NoError(t, err)
		assert.Equal(t, 2, last.Page.Number)

		_, err = svc.Feed(ctx, 3)
		assertNotFoundError(t, err)
		_, err = svc.Feed(ctx, 0)
		assertNotFoundError(t, err)
	})

	t.Run("empty feed has one page", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := NewPostService(f.store, f.images)

		page, err := svc.Feed(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, page.Posts)
		assert.Equal(t, 1, page.Page.NumPages)

		_, err = svc.Feed(ctx, 2)
		assertNotFoundError(t, err)
	})

	t.Run("comment counts are included", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		author, _ := f.seedUser(t, "chef")
		post := f.seedPost(t, author, "Ramen")
		f.seedComment(t, post, author, "one")
		f.seedComment(t, post, author, "two")
		svc := NewPostService(f.store, f.images)

		page, err := svc.Feed(ctx, 1)
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		assert.Equal(t, 2, page.Posts[0].CommentsCount)
	})
}

func TestGetPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	author, _ := f.seedUser(t, "chef")
	post := f.seedPost(t, author, "Ramen")
	first := f.seedComment(t, post, author, "first")
	second := f.seedComment(t, post, author, "second")
	svc := NewPostService(f.store, f.images)

	detail, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, detail.Post.ID)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, first.ID, detail.Comments[0].ID)
	assert.Equal(t, second.ID, detail.Comments[1].ID)

	_, err = svc.GetPost(ctx, 404)
	assertNotFoundError(t, err)
}
