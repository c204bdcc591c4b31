package seed

import (
	"context"
	"testing"

	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/testutil"
	"foodfeed/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	images := testutil.NewMemoryImageStore()
	s := NewSeeder(db, images, 42)

	sum, err := s.Run(ctx, Options{Users: 4, Posts: 6, MaxCommentsPerPost: 3, Cost: bcrypt.MinCost})
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Users)
	assert.Equal(t, 6, sum.Posts)
	assert.LessOrEqual(t, sum.Comments, 18)
	assert.Equal(t, 6, images.Len())

	store := repository.NewStore(db)
	posts, err := store.Posts().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, posts)
	comments, err := store.Comments().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, sum.Comments, comments)

	users, err := store.Users().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for _, u := range users {
		assert.True(t, validation.Username(u.Username).Valid(), u.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))

		profile, err := store.Profiles().GetByUserID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, profile.HasPlaceholderImage())
	}

	feed, err := store.Posts().List(ctx, 10, 0)
	require.NoError(t, err)
	for _, p := range feed {
		assert.True(t, validation.PostText(p.Text).Valid())
		assert.True(t, images.Has(p.ImageID))
	}
}

func TestRunWithoutUsers(t *testing.T) {
	t.Parallel()
	sum, err := NewSeeder(testutil.NewTestDB(t), testutil.NewMemoryImageStore(), 1).Run(context.Background(), Options{Posts: 5})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestClearAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	images := testutil.NewMemoryImageStore()
	s := NewSeeder(db, images, 7)
	_, err := s.Run(ctx, Options{Users: 2, Posts: 3, MaxCommentsPerPost: 2, Cost: bcrypt.MinCost})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))
	assert.Zero(t, images.Len())
	assert.Len(t, images.Destroys, 3)

	for _, model := range []any{&models.User{}, &models.Profile{}, &models.Post{}, &models.Comment{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}
