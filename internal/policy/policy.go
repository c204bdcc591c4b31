// Package policy decides whether an acting identity may change an entity.
package policy

import "foodfeed/internal/models"

// Rejection messages shown when an ownership check fails.
const (
	EditPostDenied      = "Not authorised to edit this post!"
	DeletePostDenied    = "Not authorised to delete this post!"
	EditCommentDenied   = "Not authorised to edit this comment!"
	DeleteCommentDenied = "Not authorised to delete this comment!"
	EditProfileDenied   = "Unauthorised to edit this profile!"
)

// CanMutate reports whether who is signed in and owns the entity whose
// owning user is ownerUserID.
func CanMutate(who *models.ActingIdentity, ownerUserID uint) bool {
	return who.Authenticated() && who.UserID == ownerUserID
}

// CanMutatePost checks a post against its author's user.
func CanMutatePost(who *models.ActingIdentity, post *models.Post) bool {
	return post != nil && CanMutate(who, post.Author.UserID)
}

// CanMutateComment checks a comment against its author's user.
func CanMutateComment(who *models.ActingIdentity, comment *models.Comment) bool {
	return comment != nil && CanMutate(who, comment.Author.UserID)
}

// CanEditProfile checks a profile against the user it belongs to.
func CanEditProfile(who *models.ActingIdentity, profile *models.Profile) bool {
	return profile != nil && CanMutate(who, profile.UserID)
}
