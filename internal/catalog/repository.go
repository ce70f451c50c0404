// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/angelamos/revue/internal/core"
)

const titleSelectColumns = `
	t.id, t.name, t.year, t.description, t.category_id, t.created_at,
	c.name AS category_name, c.slug AS category_slug,
	(SELECT AVG(r.score)::float8 FROM reviews r WHERE r.title_id = t.id)
		AS rating`

// TitleDetail is a title joined with its category and the derived rating.
// Rating is nil until the first review lands; it is never stored.
type TitleDetail struct {
	Title
	Rating       *float64 `db:"rating"`
	CategoryName *string  `db:"category_name"`
	CategorySlug *string  `db:"category_slug"`
	Genres       []Genre  `db:"-"`
}

type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategoryBySlug(ctx context.Context, slug string) error
	ListCategories(ctx context.Context, params ListParams) ([]Category, int, error)

	CreateGenre(ctx context.Context, g *Genre) error
	GetGenreBySlug(ctx context.Context, slug string) (*Genre, error)
	UpdateGenre(ctx context.Context, g *Genre) error
	DeleteGenreBySlug(ctx context.Context, slug string) error
	ListGenres(ctx context.Context, params ListParams) ([]Genre, int, error)
	GetGenresBySlugs(ctx context.Context, slugs []string) ([]Genre, error)

	CreateTitle(ctx context.Context, t *Title, genreIDs []int64) error
	GetTitle(ctx context.Context, id int64) (*TitleDetail, error)
	UpdateTitle(ctx context.Context, t *Title, genreIDs []int64) error
	DeleteTitle(ctx context.Context, id int64) error
	ListTitles(ctx context.Context, params ListTitlesParams) ([]TitleDetail, int, error)
	TitleExists(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCategory(ctx context.Context, c *Category) error {
	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, c, query, c.Name, c.Slug)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

func (r *repository) GetCategoryBySlug(
	ctx context.Context,
	slug string,
) (*Category, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM categories
		WHERE slug = $1`

	var c Category
	err := r.db.GetContext(ctx, &c, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

func (r *repository) UpdateCategory(ctx context.Context, c *Category) error {
	query := `UPDATE categories SET name = $2, slug = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Slug)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update category: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteCategoryBySlug(
	ctx context.Context,
	slug string,
) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM categories WHERE slug = $1`,
		slug,
	)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListCategories(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	params.Normalize()

	whereClause := "TRUE"
	var args []any
	argIdx := 1

	if params.Search != "" {
		whereClause = fmt.Sprintf("name ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM categories WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at
		FROM categories
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var categories []Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	return categories, total, nil
}

func (r *repository) CreateGenre(ctx context.Context, g *Genre) error {
	query := `
		INSERT INTO genres (name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.GetContext(ctx, g, query, g.Name, g.Slug)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("create genre: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create genre: %w", err)
	}

	return nil
}

func (r *repository) GetGenreBySlug(
	ctx context.Context,
	slug string,
) (*Genre, error) {
	query := `
		SELECT id, name, slug, created_at
		FROM genres
		WHERE slug = $1`

	var g Genre
	err := r.db.GetContext(ctx, &g, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get genre: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}

	return &g, nil
}

func (r *repository) UpdateGenre(ctx context.Context, g *Genre) error {
	query := `UPDATE genres SET name = $2, slug = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, g.ID, g.Name, g.Slug)
	if err != nil {
		if core.IsUniqueViolation(err) {
			return fmt.Errorf("update genre: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("update genre: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update genre: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update genre: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteGenreBySlug(ctx context.Context, slug string) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM genres WHERE slug = $1`,
		slug,
	)
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete genre: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListGenres(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	params.Normalize()

	whereClause := "TRUE"
	var args []any
	argIdx := 1

	if params.Search != "" {
		whereClause = fmt.Sprintf("name ILIKE $%d", argIdx)
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM genres WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count genres: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug, created_at
		FROM genres
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var genres []Genre
	if err := r.db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list genres: %w", err)
	}

	return genres, total, nil
}

func (r *repository) GetGenresBySlugs(
	ctx context.Context,
	slugs []string,
) ([]Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT id, name, slug, created_at FROM genres WHERE slug IN (?)`,
		slugs,
	)
	if err != nil {
		return nil, fmt.Errorf("get genres by slugs: %w", err)
	}

	var genres []Genre
	err = r.db.SelectContext(ctx, &genres, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("get genres by slugs: %w", err)
	}

	return genres, nil
}

func (r *repository) CreateTitle(
	ctx context.Context,
	t *Title,
	genreIDs []int64,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO titles (name, year, description, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`

		err := tx.GetContext(ctx, t, query,
			t.Name,
			t.Year,
			t.Description,
			t.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("insert title: %w", err)
		}

		return linkGenres(ctx, tx, t.ID, genreIDs)
	})
	if err != nil {
		return fmt.Errorf("create title: %w", err)
	}

	return nil
}

func (r *repository) GetTitle(
	ctx context.Context,
	id int64,
) (*TitleDetail, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.id = $1`,
		titleSelectColumns)

	var detail TitleDetail
	err := r.db.GetContext(ctx, &detail, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get title: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}

	genresByTitle, err := r.genresForTitles(ctx, []int64{id})
	if err != nil {
		return nil, fmt.Errorf("get title: %w", err)
	}
	detail.Genres = genresByTitle[id]

	return &detail, nil
}

func (r *repository) UpdateTitle(
	ctx context.Context,
	t *Title,
	genreIDs []int64,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE titles
			SET name = $2, year = $3, description = $4, category_id = $5
			WHERE id = $1`

		result, err := tx.ExecContext(ctx, query,
			t.ID,
			t.Name,
			t.Year,
			t.Description,
			t.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("update title: %w", core.ErrNotFound)
		}

		// nil genreIDs means the payload left genres untouched.
		if genreIDs == nil {
			return nil
		}

		_, err = tx.ExecContext(
			ctx,
			`DELETE FROM title_genres WHERE title_id = $1`,
			t.ID,
		)
		if err != nil {
			return fmt.Errorf("unlink genres: %w", err)
		}

		return linkGenres(ctx, tx, t.ID, genreIDs)
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *repository) DeleteTitle(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete title: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListTitles(
	ctx context.Context,
	params ListTitlesParams,
) ([]TitleDetail, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	if params.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.slug = $%d", argIdx))
		args = append(args, params.Category)
		argIdx++
	}

	if params.Genre != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM title_genres tg
			JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d)`, argIdx))
		args = append(args, params.Genre)
		argIdx++
	}

	if params.Name != "" {
		conditions = append(conditions, fmt.Sprintf(
			"t.name ILIKE $%d", argIdx))
		args = append(args, "%"+escapeLike(params.Name)+"%")
		argIdx++
	}

	if params.Year != 0 {
		conditions = append(conditions, fmt.Sprintf("t.year = $%d", argIdx))
		args = append(args, params.Year)
		argIdx++
	}

	whereClause := "TRUE"
	if len(conditions) > 0 {
		whereClause = strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE %s`,
		whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM titles t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE %s
		ORDER BY t.name ASC, t.id ASC
		LIMIT $%d OFFSET $%d`,
		titleSelectColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var titles []TitleDetail
	if err := r.db.SelectContext(ctx, &titles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	if len(titles) > 0 {
		ids := make([]int64, 0, len(titles))
		for i := range titles {
			ids = append(ids, titles[i].ID)
		}

		genresByTitle, err := r.genresForTitles(ctx, ids)
		if err != nil {
			return nil, 0, fmt.Errorf("list titles: %w", err)
		}

		for i := range titles {
			titles[i].Genres = genresByTitle[titles[i].ID]
		}
	}

	return titles, total, nil
}

func (r *repository) TitleExists(
	ctx context.Context,
	id int64,
) (bool, error) {
	var exists bool
	err := r.db.GetContext(
		ctx,
		&exists,
		`SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}

	return exists, nil
}

// genresForTitles loads genres for a batch of titles in one query to keep
// list responses off the N+1 path.
func (r *repository) genresForTitles(
	ctx context.Context,
	titleIDs []int64,
) (map[int64][]Genre, error) {
	query, args, err := sqlx.In(`
		SELECT tg.title_id, g.id, g.name, g.slug, g.created_at
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id IN (?)
		ORDER BY g.name ASC`,
		titleIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("genres for titles: %w", err)
	}

	var rows []struct {
		TitleID int64 `db:"title_id"`
		Genre
	}
	err = r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("genres for titles: %w", err)
	}

	genresByTitle := make(map[int64][]Genre, len(titleIDs))
	for _, row := range rows {
		genresByTitle[row.TitleID] = append(genresByTitle[row.TitleID], row.Genre)
	}

	return genresByTitle, nil
}

// linkGenres runs against either the pool or a transaction; title writes
// call it inside InTx so the links land atomically with the title row.
func linkGenres(
	ctx context.Context,
	db core.DBTX,
	titleID int64,
	genreIDs []int64,
) error {
	for _, genreID := range genreIDs {
		_, err := db.ExecContext(
			ctx,
			`INSERT INTO title_genres (title_id, genre_id)
			 VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			titleID,
			genreID,
		)
		if err != nil {
			return fmt.Errorf("link genre %d: %w", genreID, err)
		}
	}

	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
