// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"foodfeed/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store groups the repositories and runs units of work against them.
type Store interface {
	Users() UserRepository
	Profiles() ProfileRepository
	Posts() PostRepository
	Comments() CommentRepository
	// WithinTransaction runs fn with repositories bound to one transaction.
	// The transaction commits when fn returns nil.
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Profiles() ProfileRepository { return NewProfileRepository(s.db) }
func (s *gormStore) Posts() PostRepository       { return NewPostRepository(s.db) }
func (s *gormStore) Comments() CommentRepository { return NewCommentRepository(s.db) }

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError and wraps
// anything else as internal.
func notFoundOr(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
