package service

import (
	"context"

	"foodfeed/internal/models"
	"foodfeed/internal/policy"
	"foodfeed/internal/repository"
	"foodfeed/internal/validation"
)

// CommentService handles comments on posts.
type CommentService struct {
	store repository.Store
}

// NewCommentService creates a new CommentService
func NewCommentService(store repository.Store) *CommentService {
	return &CommentService{store: store}
}

// CreateComment attaches a comment by who to postID.
func (s *CommentService) CreateComment(ctx context.Context, who *models.ActingIdentity, postID uint, body string) (Outcome, error) {
	const action = "create_comment"
	if !who.Authenticated() {
		return record(action, authRequired(MsgSignInToComment)), nil
	}

	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgCommentCreateFailed)), nil
	}

	if r := validation.CommentBody(body); !r.Valid() {
		return record(action, invalid(r, MsgCommentCreateFailed)), nil
	}

	author, err := s.store.Profiles().GetByUserID(ctx, who.UserID)
	if err != nil {
		return record(action, failed(ctx, action, err, MsgCommentCreateFailed)), nil
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: body}
	if err := s.store.Comments().Create(ctx, comment); err != nil {
		return record(action, failed(ctx, action, err, MsgCommentCreateFailed)), nil
	}
	comment.Author = *author

	o := succeeded(MsgCommentCreated)
	o.Post = post
	o.Comment = comment
	return record(action, o), nil
}

// GetComment returns the comment when it belongs to postID.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// EditableComment returns the comment when who may edit it. Otherwise the
// outcome carries the rejection.
func (s *CommentService) EditableComment(ctx context.Context, who *models.ActingIdentity, postID, commentID uint) (*models.Comment, Outcome, error) {
	comment, err := s.GetComment(ctx, postID, commentID)
	if err != nil {
		if isNotFound(err) {
			return nil, Outcome{}, err
		}
		return nil, failed(ctx, "edit_comment", err, MsgCommentUpdateFailed), nil
	}
	if !policy.CanMutateComment(who, comment) {
		return nil, denied(policy.EditCommentDenied), nil
	}
	return comment, Outcome{Kind: Succeeded, Comment: comment}, nil
}

// EditComment replaces the body of a comment on postID.
func (s *CommentService) EditComment(ctx context.Context, who *models.ActingIdentity, postID, commentID uint, body string) (Outcome, error) {
	const action = "edit_comment"
	comment, o, err := s.EditableComment(ctx, who, postID, commentID)
	if err != nil {
		return Outcome{}, err
	}
	if comment == nil {
		return record(action, o), nil
	}

	if r := validation.CommentBody(body); !r.Valid() {
		return record(action, invalid(r, MsgCommentUpdateFailed)), nil
	}
	if err := s.store.Comments().UpdateBody(ctx, comment.ID, body); err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgCommentUpdateFailed)), nil
	}
	comment.Body = body

	o = succeeded(MsgCommentUpdated)
	o.Comment = comment
	return record(action, o), nil
}

// DeleteComment removes a comment owned by who.
func (s *CommentService) DeleteComment(ctx context.Context, who *models.ActingIdentity, commentID uint) (Outcome, error) {
	const action = "delete_comment"
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgSomethingWentWrong)), nil
	}
	if !policy.CanMutateComment(who, comment) {
		return record(action, denied(policy.DeleteCommentDenied)), nil
	}
	if err := s.store.Comments().Delete(ctx, comment.ID); err != nil {
		if isNotFound(err) {
			return Outcome{}, err
		}
		return record(action, failed(ctx, action, err, MsgSomethingWentWrong)), nil
	}

	o := succeeded(MsgCommentDeleted)
	o.Comment = comment
	return record(action, o), nil
}
