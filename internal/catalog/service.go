// AngelaMos | 2026
// service.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) CreateCategory(
	ctx context.Context,
	actor policy.Actor,
	req TermRequest,
) (*Category, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}
	if err := ValidateSlug(req.Slug); err != nil {
		return nil, err
	}

	c := &Category{Name: req.Name, Slug: req.Slug}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) GetCategory(
	ctx context.Context,
	slug string,
) (*Category, error) {
	return s.repo.GetCategoryBySlug(ctx, slug)
}

func (s *Service) UpdateCategory(
	ctx context.Context,
	actor policy.Actor,
	slug string,
	req UpdateTermRequest,
) (*Category, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}

	c, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Slug != nil {
		if err := ValidateSlug(*req.Slug); err != nil {
			return nil, err
		}
		c.Slug = *req.Slug
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) DeleteCategory(
	ctx context.Context,
	actor policy.Actor,
	slug string,
) error {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return err
	}
	return s.repo.DeleteCategoryBySlug(ctx, slug)
}

func (s *Service) ListCategories(
	ctx context.Context,
	params ListParams,
) ([]Category, int, error) {
	return s.repo.ListCategories(ctx, params)
}

func (s *Service) CreateGenre(
	ctx context.Context,
	actor policy.Actor,
	req TermRequest,
) (*Genre, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}
	if err := ValidateSlug(req.Slug); err != nil {
		return nil, err
	}

	g := &Genre{Name: req.Name, Slug: req.Slug}
	if err := s.repo.CreateGenre(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) GetGenre(
	ctx context.Context,
	slug string,
) (*Genre, error) {
	return s.repo.GetGenreBySlug(ctx, slug)
}

func (s *Service) UpdateGenre(
	ctx context.Context,
	actor policy.Actor,
	slug string,
	req UpdateTermRequest,
) (*Genre, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}

	g, err := s.repo.GetGenreBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Slug != nil {
		if err := ValidateSlug(*req.Slug); err != nil {
			return nil, err
		}
		g.Slug = *req.Slug
	}

	if err := s.repo.UpdateGenre(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) DeleteGenre(
	ctx context.Context,
	actor policy.Actor,
	slug string,
) error {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return err
	}
	return s.repo.DeleteGenreBySlug(ctx, slug)
}

func (s *Service) ListGenres(
	ctx context.Context,
	params ListParams,
) ([]Genre, int, error) {
	return s.repo.ListGenres(ctx, params)
}

// CreateTitle resolves the category and genre slugs the client sent and
// rejects years in the future. At least one genre is required.
func (s *Service) CreateTitle(
	ctx context.Context,
	actor policy.Actor,
	req CreateTitleRequest,
) (*TitleDetail, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}
	if err := s.validateYear(req.Year); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	genres, err := s.resolveGenres(ctx, req.Genre)
	if err != nil {
		return nil, err
	}

	t := &Title{
		Name:        req.Name,
		Year:        req.Year,
		Description: req.Description,
		CategoryID:  &category.ID,
	}

	if err := s.repo.CreateTitle(ctx, t, genreIDs(genres)); err != nil {
		return nil, err
	}

	return s.repo.GetTitle(ctx, t.ID)
}

func (s *Service) GetTitle(
	ctx context.Context,
	id int64,
) (*TitleDetail, error) {
	return s.repo.GetTitle(ctx, id)
}

func (s *Service) ListTitles(
	ctx context.Context,
	params ListTitlesParams,
) ([]TitleDetail, int, error) {
	return s.repo.ListTitles(ctx, params)
}

func (s *Service) UpdateTitle(
	ctx context.Context,
	actor policy.Actor,
	id int64,
	req UpdateTitleRequest,
) (*TitleDetail, error) {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return nil, err
	}

	detail, err := s.repo.GetTitle(ctx, id)
	if err != nil {
		return nil, err
	}

	t := detail.Title
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Year != nil {
		if err := s.validateYear(*req.Year); err != nil {
			return nil, err
		}
		t.Year = *req.Year
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Category != nil {
		category, err := s.resolveCategory(ctx, *req.Category)
		if err != nil {
			return nil, err
		}
		t.CategoryID = &category.ID
	}

	var ids []int64
	if req.Genre != nil {
		genres, err := s.resolveGenres(ctx, req.Genre)
		if err != nil {
			return nil, err
		}
		ids = genreIDs(genres)
	}

	if err := s.repo.UpdateTitle(ctx, &t, ids); err != nil {
		return nil, err
	}

	return s.repo.GetTitle(ctx, id)
}

func (s *Service) DeleteTitle(
	ctx context.Context,
	actor policy.Actor,
	id int64,
) error {
	if err := policy.CanWriteCatalog(actor); err != nil {
		return err
	}
	return s.repo.DeleteTitle(ctx, id)
}

// TitleExists backs existence checks for nested resources under a title.
func (s *Service) TitleExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.TitleExists(ctx, id)
}

func (s *Service) validateYear(year int) error {
	current := s.now().Year()
	if year > current {
		return fmt.Errorf(
			"year %d is in the future: %w",
			year,
			core.ErrInvalidInput,
		)
	}
	return nil
}

// resolveCategory maps an unknown slug to ErrInvalidInput: the client named
// a category that does not exist, which is a bad payload, not a missing
// resource.
func (s *Service) resolveCategory(
	ctx context.Context,
	slug string,
) (*Category, error) {
	category, err := s.repo.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf(
				"unknown category %q: %w",
				slug,
				core.ErrInvalidInput,
			)
		}
		return nil, err
	}
	return category, nil
}

func (s *Service) resolveGenres(
	ctx context.Context,
	slugs []string,
) ([]Genre, error) {
	unique := dedupe(slugs)
	if len(unique) == 0 {
		return nil, fmt.Errorf(
			"at least one genre is required: %w",
			core.ErrInvalidInput,
		)
	}

	genres, err := s.repo.GetGenresBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}

	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range unique {
			if !found[slug] {
				return nil, fmt.Errorf(
					"unknown genre %q: %w",
					slug,
					core.ErrInvalidInput,
				)
			}
		}
	}

	return genres, nil
}

func genreIDs(genres []Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}

func dedupe(slugs []string) []string {
	seen := make(map[string]bool, len(slugs))
	unique := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		unique = append(unique, slug)
	}
	return unique
}

func isNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
