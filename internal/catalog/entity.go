// AngelaMos | 2026
// entity.go

package catalog

import (
	"fmt"
	"regexp"
	"time"

	"github.com/angelamos/revue/internal/core"
)

const (
	MaxNameLen = 256
	MaxSlugLen = 50
)

var slugRe = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Category groups titles by kind of work (film, book, music and so on).
type Category struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// Genre tags a title; a title carries at least one genre.
type Genre struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// Title is a reviewable work. CategoryID goes null when its category is
// deleted; the title itself survives.
type Title struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Year        int       `db:"year"`
	Description string    `db:"description"`
	CategoryID  *int64    `db:"category_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required: %w", core.ErrInvalidInput)
	}
	if len(slug) > MaxSlugLen {
		return fmt.Errorf(
			"slug exceeds %d characters: %w",
			MaxSlugLen,
			core.ErrInvalidInput,
		)
	}
	if !slugRe.MatchString(slug) {
		return fmt.Errorf(
			"slug may only contain letters, numbers, hyphens and underscores: %w",
			core.ErrInvalidInput,
		)
	}
	return nil
}
