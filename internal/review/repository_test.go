// AngelaMos | 2026
// repository_test.go

package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return NewRepository(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func TestRepositoryCreateReviewRemapsUniqueToConflict(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO reviews").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreateReview(context.Background(), &Review{
		TitleID:  7,
		AuthorID: "u-1",
		Text:     "again",
		Score:    5,
	})

	assert.True(t, errors.Is(err, core.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateReviewPopulatesIDAndPubDate(t *testing.T) {
	repo, mock := newMockRepo(t)

	published := time.Now()
	mock.ExpectQuery("INSERT INTO reviews").
		WithArgs(int64(7), "u-1", "fresh take", 9).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "pub_date"}).
				AddRow(int64(11), published),
		)

	rev := &Review{TitleID: 7, AuthorID: "u-1", Text: "fresh take", Score: 9}
	require.NoError(t, repo.CreateReview(context.Background(), rev))

	assert.Equal(t, int64(11), rev.ID)
	assert.Equal(t, published, rev.PubDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetReviewScopedToTitle(t *testing.T) {
	repo, mock := newMockRepo(t)

	// The review exists but under another title; the scoped query returns
	// no rows and the caller sees a 404.
	mock.ExpectQuery("SELECT(.+)FROM reviews r(.+)WHERE r.id = (.+) AND r.title_id").
		WithArgs(int64(11), int64(99)).
		WillReturnRows(sqlmock.NewRows(nil))

	_, err := repo.GetReview(context.Background(), 99, 11)

	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListReviewsOldestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM reviews").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "title_id", "author_id", "text", "score", "pub_date",
		"author_username",
	}).
		AddRow(int64(1), int64(7), "u-1", "first", 8, older, "reader").
		AddRow(int64(2), int64(7), "u-2", "second", 4, newer, "other")

	mock.ExpectQuery("SELECT(.+)FROM reviews r(.+)ORDER BY r.pub_date ASC").
		WithArgs(int64(7), 20, 0).
		WillReturnRows(rows)

	reviews, total, err := repo.ListReviews(
		context.Background(), 7, ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 2, total)
	require.Len(t, reviews, 2)
	assert.Equal(t, "reader", reviews[0].AuthorUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListCommentsNewestFirst(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM comments").
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rows := sqlmock.NewRows([]string{
		"id", "review_id", "author_id", "text", "pub_date", "author_username",
	}).AddRow(int64(5), int64(11), "u-2", "agreed", time.Now(), "other")

	mock.ExpectQuery("SELECT(.+)FROM comments c(.+)ORDER BY c.pub_date DESC").
		WithArgs(int64(11), 20, 0).
		WillReturnRows(rows)

	comments, total, err := repo.ListComments(
		context.Background(), 11, ListParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, comments, 1)
	assert.Equal(t, "other", comments[0].AuthorUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateReviewMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE reviews").
		WithArgs(int64(404), "text", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateReview(context.Background(), &Review{
		ID:    404,
		Text:  "text",
		Score: 5,
	})

	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
