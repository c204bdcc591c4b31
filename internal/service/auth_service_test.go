package service

import (
	"context"
	"testing"

	"foodfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(f *fixture) *AuthService {
	svc := NewAuthService(f.store, f.images)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a user with a default profile", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newAuthService(f)

		user, err := svc.Signup(ctx, SignupInput{Username: "chef", Email: "chef@example.com", Password: "s3cretpass"})
		require.NoError(t, err)
		require.NotNil(t, user.Profile)

		profile, err := f.store.Profiles().GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "", profile.Bio)
		assert.Equal(t, models.PlaceholderImageID, profile.ImageID)
		assert.NotEqual(t, "s3cretpass", user.Password)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newAuthService(f)

		_, err := svc.Signup(ctx, SignupInput{Username: "chef", Password: "s3cretpass"})
		require.NoError(t, err)
		_, err = svc.Signup(ctx, SignupInput{Username: "chef", Password: "otherpass"})
		assert.True(t, models.HasCode(err, models.CodeConflict), "got %v", err)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		svc := newAuthService(f)

		_, err := svc.Signup(ctx, SignupInput{Username: "chef", Password: "short"})
		assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuthService(f)
	created, err := svc.Signup(ctx, SignupInput{Username: "chef", Password: "s3cretpass"})
	require.NoError(t, err)

	user, err := svc.Login(ctx, "chef", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Login(ctx, "chef", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cretpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuthService(f)

	chef, chefID := f.seedUser(t, "chef")
	chef = f.withImage(t, chef, "foodfeed/avatar")
	critic, _ := f.seedUser(t, "critic")

	ramen := f.seedPost(t, chef, "Ramen")
	udon := f.seedPost(t, chef, "Udon")
	soba := f.seedPost(t, critic, "Soba")
	f.seedComment(t, ramen, critic, "Too salty")
	f.seedComment(t, soba, chef, "Nice")
	f.seedComment(t, soba, critic, "Thanks")

	result, err := svc.DeleteAccount(ctx, chefID.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Posts)
	assert.Equal(t, 3, result.ImagesDestroyed)
	assert.ElementsMatch(t, []string{ramen.ImageID, udon.ImageID, "foodfeed/avatar"}, f.images.Destroys)

	posts, comments := f.counts(t)
	assert.EqualValues(t, 1, posts)
	assert.EqualValues(t, 1, comments)

	_, err = f.store.Users().GetByUsername(ctx, "chef")
	assertNotFoundError(t, err)
	_, err = f.store.Profiles().GetByUserID(ctx, chefID.UserID)
	assertNotFoundError(t, err)
	assert.True(t, f.images.Has(soba.ImageID))
}
