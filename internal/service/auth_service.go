package service

import (
	"context"
	"log/slog"
	"strings"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login for any unknown user or wrong
// password.
var ErrInvalidCredentials = models.NewUnauthorizedError("Invalid username or password.")

// AuthService manages accounts.
type AuthService struct {
	store  repository.Store
	images imagestore.Store
	cost   int
}

// NewAuthService creates a new AuthService
func NewAuthService(store repository.Store, images imagestore.Store) *AuthService {
	return &AuthService{store: store, images: images, cost: bcrypt.DefaultCost}
}

// SignupInput is a submitted signup form.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AccountDeletion summarizes what DeleteAccount removed.
type AccountDeletion struct {
	Posts           int `json:"posts"`
	ImagesDestroyed int `json:"images_destroyed"`
}

// Signup creates a user together with its empty profile.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if r := validation.Username(username).Merge(validation.Password(in.Password)); !r.Valid() {
		return nil, r.Err()
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    strings.TrimSpace(in.Email),
		Password: string(hashed),
	}
	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		profile := models.NewProfile(user.ID)
		if err := tx.Profiles().Create(ctx, profile); err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks a username and password.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteAccount removes a user with its profile, posts and comments, then
// destroys every image they referenced.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) (AccountDeletion, error) {
	var result AccountDeletion
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		return result, err
	}
	posts, err := s.store.Posts().ListByAuthor(ctx, profile.ID)
	if err != nil {
		return result, err
	}

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		for _, post := range posts {
			if err := tx.Posts().Delete(ctx, post.ID); err != nil {
				return err
			}
		}
		if err := tx.Comments().DeleteByAuthor(ctx, profile.ID); err != nil {
			return err
		}
		if err := tx.Profiles().DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return result, err
	}
	result.Posts = len(posts)

	ids := make([]string, 0, len(posts)+1)
	for _, post := range posts {
		ids = append(ids, post.ImageID)
	}
	ids = append(ids, profile.ImageID)
	for _, id := range ids {
		if imagestore.IsPlaceholder(id) {
			continue
		}
		if err := s.images.Destroy(ctx, id); err != nil {
			slog.WarnContext(ctx, "failed to destroy image", "image_id", id, "error", err)
			continue
		}
		result.ImagesDestroyed++
	}
	return result, nil
}
