package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/policy"
	"foodfeed/internal/repository"
	"foodfeed/internal/validation"
)

// ProfileService handles viewing and editing profiles.
type ProfileService struct {
	store  repository.Store
	images imagestore.Store
}

// NewProfileService creates a new ProfileService
func NewProfileService(store repository.Store, images imagestore.Store) *ProfileService {
	return &ProfileService{store: store, images: images}
}

// ProfileEditInput is a submitted profile form. DeleteImageToggle is the raw
// value of the remove-image checkbox.
type ProfileEditInput struct {
	Bio               string
	Username          string
	Image             imagestore.Submission
	DeleteImageToggle string
}

// ImageCandidate is what the form asks to do with the profile image.
type ImageCandidate int

const (
	// ImageUnchanged keeps the current image.
	ImageUnchanged ImageCandidate = iota
	// ImageNone removes the image and uploads nothing.
	ImageNone
	// ImageRejected is a submitted file with an unaccepted content type.
	ImageRejected
	// ImageUpload is a submitted file to upload.
	ImageUpload
)

// ProfileEditPlan is the decision taken for a profile form before anything
// is validated or persisted.
type ProfileEditPlan struct {
	RemoveImage bool
	Candidate   ImageCandidate
	File        imagestore.File
	Bio         string
	Username    string
	// NoChanges means the form matches the stored profile.
	NoChanges bool
}

// ProfilePage is a profile with its author's posts, newest first.
type ProfilePage struct {
	Profile *models.Profile `json:"profile"`
	Posts   []*models.Post  `json:"posts"`
}

// IsTruthyToggle reports whether a checkbox was submitted as set. A checked
// box posts its value attribute, whatever it is, so any non-empty value
// counts except the explicit falsy ones.
func IsTruthyToggle(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "off", "false", "0", "no":
		return false
	}
	return true
}

// PlanProfileEdit decides how a form applies to current. Removal wins over
// a new upload.
func PlanProfileEdit(current *models.Profile, in ProfileEditInput) ProfileEditPlan {
	plan := ProfileEditPlan{
		RemoveImage: IsTruthyToggle(in.DeleteImageToggle),
		Bio:         strings.TrimSpace(in.Bio),
		Username:    strings.TrimSpace(in.Username),
	}

	file, submitted := in.Image.File()
	switch {
	case plan.RemoveImage:
		plan.Candidate = ImageNone
	case !submitted:
		plan.Candidate = ImageUnchanged
	case !validation.IsAcceptedImageType(file.ContentType):
		plan.Candidate = ImageRejected
		plan.File = file
	default:
		plan.Candidate = ImageUpload
		plan.File = file
	}

	plan.NoChanges = plan.Candidate == ImageUnchanged &&
		!plan.RemoveImage &&
		plan.Bio == current.Bio &&
		plan.Username == current.User.Username
	return plan
}

// GetProfile returns a profile and its posts.
func (s *ProfileService) GetProfile(ctx context.Context, profileID uint) (*ProfilePage, error) {
	profile, err := s.store.Profiles().GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.Posts().ListByAuthor(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfilePage{Profile: profile, Posts: posts}, nil
}

// EditableProfile returns the profile when who may edit it. Otherwise the
// outcome carries the rejection.
func (s *ProfileService) EditableProfile(ctx context.Context, who *models.ActingIdentity, profileID uint) (*models.Profile, Outcome, error) {
	profile, err := s.store.Profiles().GetByID(ctx, profileID)
	if err != nil {
		if isNotFound(err) {
			return nil, Outcome{}, err
		}
		return nil, failed(ctx, "edit_profile", err, MsgProfileUpdateFailed), nil
	}
	if !policy.CanEditProfile(who, profile) {
		return nil, denied(policy.EditProfileDenied), nil
	}
	return profile, Outcome{Kind: Succeeded, Profile: profile}, nil
}

// EditProfile merges a submitted form into the profile and its user.
func (s *ProfileService) EditProfile(ctx context.Context, who *models.ActingIdentity, profileID uint, in ProfileEditInput) (Outcome, error) {
	const action = "edit_profile"
	current, o, err := s.EditableProfile(ctx, who, profileID)
	if err != nil {
		return Outcome{}, err
	}
	if current == nil {
		return record(action, o), nil
	}

	plan := PlanProfileEdit(current, in)
	if plan.NoChanges {
		return record(action, Outcome{Kind: NoChange, Profile: current}), nil
	}

	details := validation.Bio(plan.Bio)
	if plan.Candidate == ImageRejected {
		details.Add("image", validation.InvalidImageFormatMessage)
	}
	account := validation.Username(plan.Username)
	if account.Valid() && plan.Username != current.User.Username {
		taken, err := s.store.Users().UsernameTaken(ctx, plan.Username, current.UserID)
		if err != nil {
			return record(action, failed(ctx, action, err, MsgProfileUpdateFailed)), nil
		}
		if taken {
			account.Add("username", repository.ErrUsernameTaken.Message)
		}
	}
	if r := details.Merge(account); !r.Valid() {
		o := invalid(r, MsgProfileUpdateFailed)
		o.Profile = current
		return record(action, o), nil
	}

	var uploaded *imagestore.Asset
	if plan.Candidate == ImageUpload {
		asset, err := s.images.Upload(ctx, imagestore.UploadInput{
			Content:     plan.File.Content,
			ContentType: plan.File.ContentType,
			Filename:    plan.File.Filename,
			Folder:      imagestore.DefaultFolder,
			Transform:   imagestore.LimitTransform,
		})
		if err != nil {
			if isRejectedByStore(err) {
				o := Outcome{Kind: Invalid, Profile: current, Messages: []models.Message{
					models.Error(MsgImageNotProcessed),
					models.Error(MsgProfileUpdateFailed),
				}}
				o.Errors.Add("image", MsgImageNotProcessed)
				return record(action, o), nil
			}
			o := failed(ctx, action, err, MsgProfileUpdateFailed)
			o.Profile = current
			return record(action, o), nil
		}
		uploaded = &asset
	}

	updated := *current
	updated.Bio = plan.Bio
	var previous string
	switch {
	case plan.RemoveImage:
		previous = current.ImageID
		updated.ImageID = models.PlaceholderImageID
		updated.ImageURL = ""
	case uploaded != nil:
		previous = current.ImageID
		updated.ImageID = uploaded.ID
		updated.ImageURL = uploaded.URL
	}
	renamed := plan.Username != current.User.Username

	err = s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		if renamed {
			if err := tx.Users().UpdateUsername(ctx, current.UserID, plan.Username); err != nil {
				return err
			}
		}
		return tx.Profiles().UpdateDetails(ctx, &updated)
	})
	if err != nil {
		if uploaded != nil {
			destroyImage(ctx, s.images, uploaded.ID)
		}
		if errors.Is(err, repository.ErrUsernameTaken) {
			var r validation.Result
			r.Add("username", repository.ErrUsernameTaken.Message)
			o := invalid(r, MsgProfileUpdateFailed)
			o.Profile = current
			return record(action, o), nil
		}
		o := failed(ctx, action, err, MsgProfileUpdateFailed)
		o.Profile = current
		return record(action, o), nil
	}

	if previous != "" && previous != updated.ImageID {
		destroyImage(ctx, s.images, previous)
	}
	if renamed {
		updated.User.Username = plan.Username
	}
	// Cached posts embed the author's username and picture.
	if renamed || updated.ImageID != current.ImageID {
		if err := s.store.Posts().InvalidateAuthor(ctx, current.ID); err != nil {
			slog.WarnContext(ctx, "failed to invalidate author posts", "profile_id", current.ID, "error", err)
		}
	}

	o = succeeded(MsgProfileUpdated)
	o.Profile = &updated
	return record(action, o), nil
}
