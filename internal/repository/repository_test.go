package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"foodfeed/internal/models"
	"foodfeed/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := repo.GetByUsername(context.Background(), "ghost")
	assert.Nil(t, user)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "users"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "chef", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommentRepository_Create(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommentRepository(db)

	comment := &models.Comment{Body: "Nice plating!", PostID: 1, AuthorID: 2}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), comment))
	assert.Equal(t, uint(1), comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepository_UpdateTextMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "text"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateText(context.Background(), 99, "new text")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueConstraintError(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: users.username")))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueConstraintError(errors.New("connection reset")))
}

// seedAuthor creates a user with its profile.
func seedAuthor(t *testing.T, s Store, username string) *models.Profile {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, s.Users().Create(ctx, user))
	profile := models.NewProfile(user.ID)
	require.NoError(t, s.Profiles().Create(ctx, profile))
	return profile
}

func seedPost(t *testing.T, s Store, author *models.Profile, text string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text, ImageID: "foodfeed/" + text, ImageURL: "u", CreatedAt: at}
	require.NoError(t, s.Posts().Create(context.Background(), post))
	return post
}

func TestPostRepository_ListNewestFirstWithCounts(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	author := seedAuthor(t, s, "chef")

	base := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	older := seedPost(t, s, author, "older", base)
	newer := seedPost(t, s, author, "newer", base.Add(time.Hour))
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: older.ID, AuthorID: author.ID, Body: "one"}))
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: older.ID, AuthorID: author.ID, Body: "two"}))

	posts, err := s.Posts().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, 0, posts[0].CommentsCount)
	assert.Equal(t, older.ID, posts[1].ID)
	assert.Equal(t, 2, posts[1].CommentsCount)
	assert.Equal(t, "chef", posts[1].Author.User.Username)

	n, err := s.Posts().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPostRepository_DeleteRemovesComments(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	author := seedAuthor(t, s, "chef")
	post := seedPost(t, s, author, "soup", time.Now())
	for _, body := range []string{"a", "b"} {
		require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: body}))
	}

	require.NoError(t, s.Posts().Delete(ctx, post.ID))

	posts, _ := s.Posts().Count(ctx)
	comments, _ := s.Comments().Count(ctx)
	assert.Zero(t, posts)
	assert.Zero(t, comments)

	err := s.Posts().Delete(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestCommentRepository_ListByPostOldestFirst(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	author := seedAuthor(t, s, "chef")
	post := seedPost(t, s, author, "stew", time.Now())

	base := time.Now().Add(-time.Hour)
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: "second", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.Comments().Create(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: "first", CreatedAt: base}))

	comments, err := s.Comments().ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "second", comments[1].Body)
	assert.Equal(t, author.UserID, comments[0].Author.UserID)
}

func TestProfileRepository_Defaults(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	profile := seedAuthor(t, s, "baker")

	got, err := s.Profiles().GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.Bio)
	assert.Equal(t, models.PlaceholderImageID, got.ImageID)
	assert.Equal(t, "baker", got.User.Username)

	got.Bio = "Sourdough every day"
	require.NoError(t, s.Profiles().UpdateDetails(ctx, got))
	again, err := s.Profiles().GetByUserID(ctx, profile.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Sourdough every day", again.Bio)
}

func TestUserRepository_UsernameTaken(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()
	a := seedAuthor(t, s, "alpha")
	seedAuthor(t, s, "beta")

	taken, err := s.Users().UsernameTaken(ctx, "beta", a.UserID)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Users().UsernameTaken(ctx, "alpha", a.UserID)
	require.NoError(t, err)
	assert.False(t, taken)

	err = s.Users().Create(ctx, &models.User{Username: "alpha", Password: "x"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestWithinTransactionRollsBack(t *testing.T) {
	s := NewStore(testutil.NewTestDB(t))
	ctx := context.Background()

	err := s.WithinTransaction(ctx, func(tx Store) error {
		require.NoError(t, tx.Users().Create(ctx, &models.User{Username: "temp", Password: "x"}))
		return errors.New("abort")
	})
	assert.EqualError(t, err, "abort")

	_, err = s.Users().GetByUsername(ctx, "temp")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, s.Ping(ctx))
}
