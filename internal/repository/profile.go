package repository

import (
	"context"

	"foodfeed/internal/cache"
	"foodfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	// UpdateDetails writes bio and image fields.
	UpdateDetails(ctx context.Context, profile *models.Profile) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ImageID == "" {
		profile.ImageID = models.PlaceholderImageID
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		return r.db.WithContext(ctx).Preload("User").First(&profile, id).Error
	})
	if err != nil {
		return nil, notFoundOr(err, "Profile", id)
	}
	return &profile, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, notFoundOr(err, "Profile for user", userID)
	}
	return &profile, nil
}

func (r *profileRepository) UpdateDetails(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]any{
			"bio":       profile.Bio,
			"image_id":  profile.ImageID,
			"image_url": profile.ImageURL,
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profile.ID)
	}
	cache.Invalidate(ctx, cache.ProfileKey(profile.ID))
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Profile{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, id := range ids {
		cache.Invalidate(ctx, cache.ProfileKey(id))
	}
	return nil
}
