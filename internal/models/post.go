package models

import "time"

// Post is a text and image entry in the feed. The image is fixed at creation.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AuthorID      uint      `gorm:"not null;index" json:"author_id"`
	Author        Profile   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Text          string    `gorm:"size:1000;not null" json:"text"`
	ImageID       string    `gorm:"not null" json:"image_id"`
	ImageURL      string    `gorm:"not null" json:"image_url"`
	Comments      []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CommentsCount int       `gorm:"->;-:migration" json:"comments_count"`
	CreatedAt     time.Time `gorm:"index" json:"created_on"`
	UpdatedAt     time.Time `json:"updated_on"`
}

// Comment belongs to exactly one Post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    Profile   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"index" json:"created_on"`
	UpdatedAt time.Time `json:"updated_on"`
}
