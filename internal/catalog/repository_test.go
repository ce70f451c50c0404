// AngelaMos | 2026
// repository_test.go

package catalog

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

func TestRepositoryCreateCategoryRemapsUniqueViolation(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO categories").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.CreateCategory(context.Background(), &Category{
		Name: "Films",
		Slug: "films",
	})

	assert.True(t, errors.Is(err, core.ErrDuplicateKey))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetTitleDerivesRating(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Now()
	categoryID := int64(3)
	rating := 7.5
	categoryName := "Films"
	categorySlug := "films"

	titleRows := sqlmock.NewRows([]string{
		"id", "name", "year", "description", "category_id", "created_at",
		"category_name", "category_slug", "rating",
	}).AddRow(
		int64(42), "The Long Take", 2020, "", categoryID, created,
		categoryName, categorySlug, rating,
	)
	mock.ExpectQuery("SELECT(.+)AVG\\(r.score\\)(.+)FROM titles t").
		WithArgs(int64(42)).
		WillReturnRows(titleRows)

	genreRows := sqlmock.NewRows([]string{
		"title_id", "id", "name", "slug", "created_at",
	}).AddRow(int64(42), int64(1), "Drama", "drama", created)
	mock.ExpectQuery("SELECT(.+)FROM title_genres tg").
		WillReturnRows(genreRows)

	detail, err := repo.GetTitle(context.Background(), 42)
	require.NoError(t, err)

	require.NotNil(t, detail.Rating)
	assert.InDelta(t, 7.5, *detail.Rating, 0.0001)
	require.NotNil(t, detail.CategorySlug)
	assert.Equal(t, "films", *detail.CategorySlug)
	require.Len(t, detail.Genres, 1)
	assert.Equal(t, "drama", detail.Genres[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetTitleNoReviewsNullRating(t *testing.T) {
	repo, mock := newMockRepo(t)

	created := time.Now()
	titleRows := sqlmock.NewRows([]string{
		"id", "name", "year", "description", "category_id", "created_at",
		"category_name", "category_slug", "rating",
	}).AddRow(
		int64(42), "Unreviewed", 2020, "", nil, created,
		nil, nil, nil,
	)
	mock.ExpectQuery("SELECT(.+)FROM titles t").
		WithArgs(int64(42)).
		WillReturnRows(titleRows)

	mock.ExpectQuery("SELECT(.+)FROM title_genres tg").
		WillReturnRows(sqlmock.NewRows([]string{
			"title_id", "id", "name", "slug", "created_at",
		}))

	detail, err := repo.GetTitle(context.Background(), 42)
	require.NoError(t, err)

	assert.Nil(t, detail.Rating)
	assert.Nil(t, detail.CategoryID)
	assert.Nil(t, detail.CategorySlug)
	assert.Empty(t, detail.Genres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetTitleNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT(.+)FROM titles t").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(nil))

	_, err := repo.GetTitle(context.Background(), 9)

	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteCategoryMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteCategoryBySlug(context.Background(), "ghost")

	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
