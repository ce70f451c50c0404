// AngelaMos | 2026
// repository.go

package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/revue/internal/core"
)

const reviewSelectColumns = `
	r.id, r.title_id, r.author_id, r.text, r.score, r.pub_date,
	a.username AS author_username`

const commentSelectColumns = `
	c.id, c.review_id, c.author_id, c.text, c.pub_date,
	a.username AS author_username`

// ReviewDetail carries the author's username for responses; reviews are
// always rendered with who wrote them.
type ReviewDetail struct {
	Review
	AuthorUsername string `db:"author_username"`
}

type CommentDetail struct {
	Comment
	AuthorUsername string `db:"author_username"`
}

type Repository interface {
	CreateReview(ctx context.Context, r *Review) error
	GetReview(ctx context.Context, titleID, reviewID int64) (*ReviewDetail, error)
	UpdateReview(ctx context.Context, r *Review) error
	DeleteReview(ctx context.Context, titleID, reviewID int64) error
	ListReviews(ctx context.Context, titleID int64, params ListParams) ([]ReviewDetail, int, error)
	HasReview(ctx context.Context, titleID int64, authorID string) (bool, error)

	CreateComment(ctx context.Context, c *Comment) error
	GetComment(ctx context.Context, reviewID, commentID int64) (*CommentDetail, error)
	UpdateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, reviewID, commentID int64) error
	ListComments(ctx context.Context, reviewID int64, params ListParams) ([]CommentDetail, int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateReview(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews (title_id, author_id, text, score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, pub_date`

	err := r.db.GetContext(ctx, rev, query,
		rev.TitleID,
		rev.AuthorID,
		rev.Text,
		rev.Score,
	)
	if err != nil {
		// The (title_id, author_id) unique index catches the race between
		// the duplicate pre-check and the insert.
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create review: %w", core.ErrConflict)
		}
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *repository) GetReview(
	ctx context.Context,
	titleID, reviewID int64,
) (*ReviewDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews r
		JOIN accounts a ON a.id = r.author_id
		WHERE r.id = $1 AND r.title_id = $2`,
		reviewSelectColumns)

	var detail ReviewDetail
	err := r.db.GetContext(ctx, &detail, query, reviewID, titleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}

	return &detail, nil
}

func (r *repository) UpdateReview(ctx context.Context, rev *Review) error {
	query := `
		UPDATE reviews
		SET text = $2, score = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, rev.ID, rev.Text, rev.Score)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteReview(
	ctx context.Context,
	titleID, reviewID int64,
) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM reviews WHERE id = $1 AND title_id = $2`,
		reviewID,
		titleID,
	)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete review: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListReviews(
	ctx context.Context,
	titleID int64,
	params ListParams,
) ([]ReviewDetail, int, error) {
	params.Normalize()

	var total int
	err := r.db.GetContext(
		ctx,
		&total,
		`SELECT COUNT(*) FROM reviews WHERE title_id = $1`,
		titleID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reviews r
		JOIN accounts a ON a.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.pub_date ASC, r.id ASC
		LIMIT $2 OFFSET $3`,
		reviewSelectColumns)

	var reviews []ReviewDetail
	err = r.db.SelectContext(
		ctx,
		&reviews,
		query,
		titleID,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}

func (r *repository) HasReview(
	ctx context.Context,
	titleID int64,
	authorID string,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(
		ctx,
		&exists,
		`SELECT EXISTS (
			SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`,
		titleID,
		authorID,
	)
	if err != nil {
		return false, fmt.Errorf("has review: %w", err)
	}

	return exists, nil
}

func (r *repository) CreateComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (review_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, pub_date`

	err := r.db.GetContext(ctx, c, query, c.ReviewID, c.AuthorID, c.Text)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetComment(
	ctx context.Context,
	reviewID, commentID int64,
) (*CommentDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN accounts a ON a.id = c.author_id
		WHERE c.id = $1 AND c.review_id = $2`,
		commentSelectColumns)

	var detail CommentDetail
	err := r.db.GetContext(ctx, &detail, query, commentID, reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &detail, nil
}

func (r *repository) UpdateComment(ctx context.Context, c *Comment) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE comments SET text = $2 WHERE id = $1`,
		c.ID,
		c.Text,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteComment(
	ctx context.Context,
	reviewID, commentID int64,
) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM comments WHERE id = $1 AND review_id = $2`,
		commentID,
		reviewID,
	)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListComments(
	ctx context.Context,
	reviewID int64,
	params ListParams,
) ([]CommentDetail, int, error) {
	params.Normalize()

	var total int
	err := r.db.GetContext(
		ctx,
		&total,
		`SELECT COUNT(*) FROM comments WHERE review_id = $1`,
		reviewID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM comments c
		JOIN accounts a ON a.id = c.author_id
		WHERE c.review_id = $1
		ORDER BY c.pub_date DESC, c.id DESC
		LIMIT $2 OFFSET $3`,
		commentSelectColumns)

	var comments []CommentDetail
	err = r.db.SelectContext(
		ctx,
		&comments,
		query,
		reviewID,
		params.PageSize,
		params.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}
