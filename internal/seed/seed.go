// Package seed fills a database with demo users, posts and comments for
// development.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/repository"
	"foodfeed/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users int
	Posts int
	// MaxCommentsPerPost caps the random number of comments on each post.
	MaxCommentsPerPost int
	// MaxDays spreads post creation times over the past MaxDays days.
	MaxDays int
	// Cost is the bcrypt cost for seeded passwords. Zero means bcrypt.DefaultCost.
	Cost int
}

// Summary counts what Run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder creates demo data through the repositories. Post images are
// generated and uploaded to the image store.
type Seeder struct {
	db     *gorm.DB
	store  repository.Store
	images imagestore.Store
	faker  *gofakeit.Faker
	now    func() time.Time
}

// NewSeeder creates a Seeder. The same seed yields the same content.
func NewSeeder(db *gorm.DB, images imagestore.Store, seed int64) *Seeder {
	return &Seeder{
		db:     db,
		store:  repository.NewStore(db),
		images: images,
		faker:  gofakeit.New(seed),
		now:    time.Now,
	}
}

// ClearAll deletes every comment, post, profile and user, and destroys the
// stored images they reference.
func (s *Seeder) ClearAll(ctx context.Context) error {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Pluck("image_id", &ids).Error; err != nil {
		return fmt.Errorf("list post images: %w", err)
	}
	var avatars []string
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Pluck("image_id", &avatars).Error; err != nil {
		return fmt.Errorf("list profile images: %w", err)
	}
	for _, id := range append(ids, avatars...) {
		if models.IsPlaceholderImage(id) {
			continue
		}
		if err := s.images.Destroy(ctx, id); err != nil {
			return fmt.Errorf("destroy image %s: %w", id, err)
		}
	}

	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.Profile{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds users, then posts by random users, then comments on those posts.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	profiles, err := s.Users(ctx, opts.Users, opts.Cost)
	if err != nil {
		return sum, err
	}
	sum.Users = len(profiles)
	if len(profiles) == 0 {
		return sum, nil
	}

	posts, err := s.Posts(ctx, profiles, opts.Posts, opts.MaxDays)
	if err != nil {
		return sum, err
	}
	sum.Posts = len(posts)

	sum.Comments, err = s.Comments(ctx, posts, profiles, opts.MaxCommentsPerPost)
	return sum, err
}

// Users creates n accounts, each with an empty profile, sharing
// DefaultPassword.
func (s *Seeder) Users(ctx context.Context, n, cost int) ([]*models.Profile, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, err
	}

	profiles := make([]*models.Profile, 0, n)
	for i := range n {
		user := &models.User{
			Username: s.username(i),
			Email:    s.faker.Email(),
			Password: string(hashed),
		}
		err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
			if err := tx.Users().Create(ctx, user); err != nil {
				return err
			}
			profile := models.NewProfile(user.ID)
			profile.Bio = s.faker.Sentence(12)
			if err := tx.Profiles().Create(ctx, profile); err != nil {
				return err
			}
			profile.User = *user
			profiles = append(profiles, profile)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("seed user %q: %w", user.Username, err)
		}
	}
	return profiles, nil
}

// username is unique per index and always passes username validation.
func (s *Seeder) username(i int) string {
	base := strings.Map(func(r rune) rune {
		if validation.IsUsernameRune(r) {
			return r
		}
		return -1
	}, s.faker.Username())
	if base == "" {
		base = "cook"
	}
	return fmt.Sprintf("%s%d", strings.ToLower(base), i+1)
}

// Posts creates n posts by randomly chosen authors.
func (s *Seeder) Posts(ctx context.Context, authors []*models.Profile, n, maxDays int) ([]*models.Post, error) {
	if maxDays <= 0 {
		maxDays = 90
	}
	posts := make([]*models.Post, 0, n)
	for range n {
		author := authors[s.faker.Number(0, len(authors)-1)]
		asset, err := s.images.Upload(ctx, imagestore.UploadInput{
			Content:     s.faker.ImagePng(s.faker.Number(200, 900), s.faker.Number(200, 900)),
			ContentType: "image/png",
			Filename:    "dish.png",
			Folder:      imagestore.DefaultFolder,
			Transform:   imagestore.LimitTransform,
		})
		if err != nil {
			return nil, fmt.Errorf("seed post image: %w", err)
		}
		post := &models.Post{
			AuthorID:  author.ID,
			Text:      s.dish(),
			ImageID:   asset.ID,
			ImageURL:  asset.URL,
			CreatedAt: s.now().Add(-time.Duration(s.faker.Number(0, maxDays*24*60)) * time.Minute),
		}
		if err := s.store.Posts().Create(ctx, post); err != nil {
			_ = s.images.Destroy(ctx, asset.ID)
			return nil, fmt.Errorf("seed post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) dish() string {
	var meal string
	switch s.faker.Number(0, 3) {
	case 0:
		meal = s.faker.Breakfast()
	case 1:
		meal = s.faker.Lunch()
	case 2:
		meal = s.faker.Dinner()
	default:
		meal = s.faker.Dessert()
	}
	return meal + ". " + s.faker.Sentence(s.faker.Number(6, 20))
}

// Comments adds up to limit comments to each post and returns how many were
// created.
func (s *Seeder) Comments(ctx context.Context, posts []*models.Post, authors []*models.Profile, limit int) (int, error) {
	if limit <= 0 {
		return 0, nil
	}
	created := 0
	for _, post := range posts {
		for range s.faker.Number(0, limit) {
			comment := &models.Comment{
				PostID:   post.ID,
				AuthorID: authors[s.faker.Number(0, len(authors)-1)].ID,
				Body:     s.faker.Sentence(s.faker.Number(3, 15)),
			}
			if err := s.store.Comments().Create(ctx, comment); err != nil {
				return created, fmt.Errorf("seed comment: %w", err)
			}
			created++
		}
	}
	return created, nil
}
