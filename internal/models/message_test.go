package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageConstructors(t *testing.T) {
	assert.Equal(t, Message{Severity: SeverityInfo, Text: "a"}, Info("a"))
	assert.Equal(t, Message{Severity: SeveritySuccess, Text: "b"}, Success("b"))
	assert.Equal(t, Message{Severity: SeverityError, Text: "c"}, Error("c"))
}

func TestActingIdentityAuthenticated(t *testing.T) {
	var anon *ActingIdentity
	assert.False(t, anon.Authenticated())
	assert.False(t, (&ActingIdentity{}).Authenticated())
	assert.True(t, (&ActingIdentity{UserID: 3}).Authenticated())
}

func TestNewProfileDefaults(t *testing.T) {
	p := NewProfile(7)
	assert.Equal(t, uint(7), p.UserID)
	assert.Equal(t, "", p.Bio)
	assert.Equal(t, PlaceholderImageID, p.ImageID)
	assert.True(t, p.HasPlaceholderImage())
}

func TestHasCode(t *testing.T) {
	err := NewNotFoundError("Post", 4)
	wrapped := errors.Join(errors.New("outer"), err)

	assert.True(t, HasCode(err, CodeNotFound))
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(err, CodeValidation))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.Equal(t, "Post with ID 4 not found", err.Error())
}
