package validation

import (
	"mime"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"foodfeed/internal/imagestore"
)

const (
	MaxPostTextLength = 1000
	MaxUsernameLength = 150
	MaxBioLength      = 800
	MinPasswordLength = 8
)

// InvalidImageFormatMessage is shown whenever a submitted image has a content
// type outside AcceptedImageTypes.
const InvalidImageFormatMessage = "Invalid image format. Accepted formats are JPEG, PNG and SVG."

// AcceptedImageTypes lists the only content types an upload may carry.
var AcceptedImageTypes = map[string]struct{}{
	"image/jpeg":    {},
	"image/png":     {},
	"image/svg+xml": {},
}

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// IsUsernameRune reports whether r may appear in a username.
func IsUsernameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune("@.+-_", r)
}

// NormalizeContentType lowercases a content type and strips its parameters.
func NormalizeContentType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(mediaType)
}

// IsAcceptedImageType reports whether contentType may be uploaded.
func IsAcceptedImageType(contentType string) bool {
	_, ok := AcceptedImageTypes[NormalizeContentType(contentType)]
	return ok
}

// PostText requires between 1 and MaxPostTextLength characters.
func PostText(text string) Result {
	var r Result
	switch n := utf8.RuneCountInString(text); {
	case strings.TrimSpace(text) == "":
		r.Add("text", "This field is required.")
	case n > MaxPostTextLength:
		r.Add("text", "Ensure this value has at most 1000 characters.")
	}
	return r
}

// ImageContentType rejects anything outside AcceptedImageTypes.
func ImageContentType(contentType string) Result {
	var r Result
	if !IsAcceptedImageType(contentType) {
		r.Add("image", InvalidImageFormatMessage)
	}
	return r
}

// PostImage requires a file with an accepted content type.
func PostImage(sub imagestore.Submission) Result {
	file, ok := sub.File()
	if !ok {
		var r Result
		r.Add("image", "An image is required.")
		return r
	}
	return ImageContentType(file.ContentType)
}

// NewPost validates a post creation form.
func NewPost(text string, image imagestore.Submission) Result {
	return PostText(text).Merge(PostImage(image))
}

// CommentBody requires a non-blank body of any length.
func CommentBody(body string) Result {
	var r Result
	if strings.TrimSpace(body) == "" {
		r.Add("body", "This field is required.")
	}
	return r
}

// Username requires 1 to MaxUsernameLength letters, digits or @.+-_ characters.
func Username(name string) Result {
	var r Result
	switch {
	case name == "":
		r.Add("username", "This field is required.")
	case utf8.RuneCountInString(name) > MaxUsernameLength:
		r.Add("username", "Ensure this value has at most 150 characters.")
	case !usernameRegex.MatchString(name):
		r.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return r
}

// Bio is optional and capped at MaxBioLength characters.
func Bio(bio string) Result {
	var r Result
	if utf8.RuneCountInString(bio) > MaxBioLength {
		r.Add("bio", "Ensure this value has at most 800 characters.")
	}
	return r
}

// Password enforces the minimum signup length.
func Password(password string) Result {
	var r Result
	if utf8.RuneCountInString(password) < MinPasswordLength {
		r.Add("password", "This password is too short. It must contain at least 8 characters.")
	}
	return r
}
