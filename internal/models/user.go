// Package models contains the persisted entities of foodfeed and the
// values passed between its layers.
package models

import "time"

// User is the account behind a Profile.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"-"`
	Profile   *Profile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ActingIdentity is the authenticated actor of a request. A nil
// *ActingIdentity means the request is anonymous.
type ActingIdentity struct {
	UserID   uint
	Username string
}

// Authenticated reports whether the identity belongs to a signed-in user.
func (a *ActingIdentity) Authenticated() bool {
	return a != nil && a.UserID != 0
}
