package service

import (
	"context"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/policy"
	"foodfeed/internal/repository"
	"foodfeed/internal/validation"
)

// PageSize is the number of posts per feed page.
const PageSize = 10

// LastPage asks Feed for the final page.
const LastPage = -1

// PostService handles post creation, editing, deletion and the feed.
type PostService struct {
	store  repository.Store
	images imagestore.Store
}

// NewPostService creates a new PostService
func NewPostService(store repository.Store, images imagestore.Store) *PostService {
	return &PostService{store: store, images: images}
}

// CreatePostInput is a submitted post form.
type CreatePostInput struct {
	Text  string
	Image imagestore.Submission
}

// PageMeta describes one page of the feed.
type PageMeta struct {
	Number      int   `json:"number"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
	Total       int64 `json:"total"`
}

// FeedPage is one page of posts, newest first.
type FeedPage struct {
	Posts []*models.Post `json:"posts"`
	Page  PageMeta       `json:"page"`
}

// PostDetail is a post with its comments, oldest first.
type PostDetail struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// CreatePost validates the form, uploads the image and stores the post.
func (s *PostService) CreatePost(ctx context.Context, who *models.ActingIdentity, in CreatePostInput) (Outcome, error) {
	const action = "create_post"
	if !who.Authenticated() {
		return record(action, authRequired(MsgSignInToPost)), nil
	}

	if r := validation.NewPost(in.Text, in.Image); !r.Valid() {
		return record(action, invalid(r, MsgPostCreateFailed)), nil
	}

	author, err := s.store.Profiles().GetByUserID(ctx, who.UserID)
	if err != nil {
		return record(action, failed(ctx, action, err, MsgPostCreateFailed)), nil
	}

	file, _ := in.Image.File()
	asset, err := s.images.Upload(ctx, imagestore.UploadInput{
		Content:     file.Content,
		ContentType: file.ContentType,
		Filename:    file.Filename,
		Folder:      imagestore.DefaultFolder,
		Transform:   imagestore.LimitTransform,
	})
	if err != nil {
		if isRejectedByStore(err) {
			var r validation.Result
			r.Add("image", MsgImageNotProcessed)
			o := invalid(r, MsgPostCreateFailed)
			o.Messages = append([]models.Message{models.Error(MsgImageNotProcessed)}, o.Messages...)
			return record(action, o), nil
		}
		return record(action, failed(ctx, action, err, MsgPostCreateFailed)), nil
	}

	post := &models.Post{
		AuthorID: author.ID,
		Text:     in.Text,
		ImageID:  asset.ID,
		ImageURL: asset.URL,
	}
	if err := s.store.Posts().Create(ctx, post); err != nil {
		// The asset would be orphaned without a post referencing it.
		destroyImage(ctx, s.images, asset.ID)
		return record(action, failed(ctx, action, err, MsgPostCreateFailed)), nil
	}
	post.Author = *author

	o := succeeded(MsgPostCreated)
	o.Post = post
	return record(action, o), nil
}

// EditablePost returns the post when who may edit it. Otherwise the outcome
// carries the rejection.
func (s *PostService) EditablePost(ctx context.Context, who *models.ActingIdentity, postID uint) (*models.Post, Outcome, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return nil, Outcome{}, err
		}
		return nil, failed(ctx, "edit_post", err, MsgPostUpdateFailed), nil
	}
	if !policy.CanMutatePost(who, post) {
		return nil, denied(policy.EditPostDenied), nil
	}
	return post, Outcome{Kind: Succeeded, Post: post}, nil
}

// EditPost replaces the text of a post. The image never changes.
func (s *PostService) EditPost(ctx context.Context, who *models.ActingIdentity, postID uint, text string) (Outcome, error) {
	const action = "edit_post"
	post, o, err := s.EditablePost(ctx, who, postID)
	if err != nil {
		return Outcome{}, err
	}
	if post == nil {
		return record(action, o), nil
	}

	if r := validation.PostText(text); !r.Valid() {
		return record(action, invalid(r, MsgPostUpdateFailed)), nil
	}
	if err := s.store.Posts().UpdateText(ctx, post.ID, text); err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgPostUpdateFailed)), nil
	}
	post.Text = text

	o = succeeded(MsgPostUpdated)
	o.Post = post
	return record(action, o), nil
}

// DeletePost removes a post with its comments, then its image.
func (s *PostService) DeletePost(ctx context.Context, who *models.ActingIdentity, postID uint) (Outcome, error) {
	const action = "delete_post"
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgSomethingWentWrong)), nil
	}
	if !policy.CanMutatePost(who, post) {
		return record(action, denied(policy.DeletePostDenied)), nil
	}

	if err := s.store.Posts().Delete(ctx, post.ID); err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgSomethingWentWrong)), nil
	}
	destroyImage(ctx, s.images, post.ImageID)

	o := succeeded(MsgPostDeleted)
	o.Post = post
	return record(action, o), nil
}

// Feed returns one page of posts, newest first. Pages start at 1 and
// LastPage selects the final one. A page outside the range is not found,
// except page 1 of an empty feed.
func (s *PostService) Feed(ctx context.Context, page int) (*FeedPage, error) {
	total, err := s.store.Posts().Count(ctx)
	if err != nil {
		return nil, err
	}
	numPages := int((total + PageSize - 1) / PageSize)
	if numPages == 0 {
		numPages = 1
	}
	if page == LastPage {
		page = numPages
	}
	if page < 1 || page > numPages {
		return nil, models.NewNotFoundError("Page", page)
	}

	posts, err := s.store.Posts().List(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return &FeedPage{
		Posts: posts,
		Page: PageMeta{
			Number:      page,
			NumPages:    numPages,
			HasNext:     page < numPages,
			HasPrevious: page > 1,
			Total:       total,
		},
	}, nil
}

// GetPost returns a post and its comments.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}
