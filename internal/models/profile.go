package models

import "time"

// PlaceholderImageID is stored on a Profile that has no uploaded image.
// It is never uploaded to or destroyed in the image store.
const PlaceholderImageID = "no-profile-image"

// Profile extends a User with a bio and an avatar.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Bio       string    `gorm:"size:800;not null;default:''" json:"bio"`
	ImageID   string    `gorm:"not null;default:'no-profile-image'" json:"image_id"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewProfile returns the profile every new user starts with.
func NewProfile(userID uint) *Profile {
	return &Profile{
		UserID:  userID,
		Bio:     "",
		ImageID: PlaceholderImageID,
	}
}

// HasPlaceholderImage reports whether the profile shows the default avatar.
func (p *Profile) HasPlaceholderImage() bool {
	return IsPlaceholderImage(p.ImageID)
}

// IsPlaceholderImage reports whether id is the sentinel or unset.
func IsPlaceholderImage(id string) bool {
	return id == "" || id == PlaceholderImageID
}
