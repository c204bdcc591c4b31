package service

// Status messages shown to the user.
const (
	MsgSignInToPost    = "Sign in to create a post!"
	MsgSignInToComment = "Sign in to create a comment!"

	MsgPostCreated      = "Post created successfully!"
	MsgPostCreateFailed = "Post creation failed!"
	MsgPostUpdated      = "Post updated successfully!"
	MsgPostUpdateFailed = "Post update failed!"
	MsgPostDeleted      = "Post deleted successfully!"

	MsgCommentCreated      = "Comment created successfully!"
	MsgCommentCreateFailed = "Comment creation failed!"
	MsgCommentUpdated      = "Comment updated successfully!"
	MsgCommentUpdateFailed = "Comment update failed!"
	MsgCommentDeleted      = "Comment deleted successfully!"

	MsgProfileUpdated      = "Profile updated successfully!"
	MsgProfileUpdateFailed = "Profile update failed!"

	MsgImageNotProcessed  = "The image could not be processed."
	MsgSomethingWentWrong = "Something went wrong, please try again."
)

// MsgImageTooLarge is shown when an upload exceeds the configured limit.
const MsgImageTooLarge = "The image is too large."
