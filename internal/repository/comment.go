package repository

import (
	"context"

	"foodfeed/internal/cache"
	"foodfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns a post's comments oldest first.
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	UpdateBody(ctx context.Context, id uint, body string) error
	Delete(ctx context.Context, id uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
	Count(ctx context.Context) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	// Cached posts carry a comment count.
	cache.Invalidate(ctx, cache.PostKey(comment.PostID))
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author.User").First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author.User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) UpdateBody(ctx context.Context, id uint, body string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("body", body)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var postIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Pluck("post_id", &postIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	for _, postID := range postIDs {
		cache.Invalidate(ctx, cache.PostKey(postID))
	}
	return nil
}

func (r *commentRepository) DeleteByAuthor(ctx context.Context, authorID uint) error {
	var postIDs []uint
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Distinct("post_id").Where("author_id = ?", authorID).Pluck("post_id", &postIDs).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	keys := make([]string, 0, len(postIDs))
	for _, postID := range postIDs {
		keys = append(keys, cache.PostKey(postID))
	}
	cache.Invalidate(ctx, keys...)
	return nil
}

func (r *commentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
