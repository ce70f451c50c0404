// AngelaMos | 2026
// service_test.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/policy"
)

var (
	adminActor = policy.Actor{ID: "a-1", Username: "boss", Role: "admin"}
	userActor  = policy.Actor{ID: "u-1", Username: "reader", Role: "user"}
)

type fakeRepo struct {
	categories map[string]*Category
	genres     map[string]*Genre
	titles     map[int64]*TitleDetail
	nextID     int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		categories: make(map[string]*Category),
		genres:     make(map[string]*Genre),
		titles:     make(map[int64]*TitleDetail),
	}
}

func (f *fakeRepo) nextSerial() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateCategory(_ context.Context, c *Category) error {
	if _, ok := f.categories[c.Slug]; ok {
		return fmt.Errorf("create category: %w", core.ErrDuplicateKey)
	}
	c.ID = f.nextSerial()
	stored := *c
	f.categories[c.Slug] = &stored
	return nil
}

func (f *fakeRepo) GetCategoryBySlug(
	_ context.Context,
	slug string,
) (*Category, error) {
	if c, ok := f.categories[slug]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, fmt.Errorf("get category: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateCategory(_ context.Context, c *Category) error {
	for slug, existing := range f.categories {
		if existing.ID == c.ID {
			delete(f.categories, slug)
			stored := *c
			f.categories[c.Slug] = &stored
			return nil
		}
	}
	return fmt.Errorf("update category: %w", core.ErrNotFound)
}

func (f *fakeRepo) DeleteCategoryBySlug(_ context.Context, slug string) error {
	if _, ok := f.categories[slug]; !ok {
		return fmt.Errorf("delete category: %w", core.ErrNotFound)
	}
	delete(f.categories, slug)
	return nil
}

func (f *fakeRepo) ListCategories(
	_ context.Context,
	_ ListParams,
) ([]Category, int, error) {
	out := make([]Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) CreateGenre(_ context.Context, g *Genre) error {
	if _, ok := f.genres[g.Slug]; ok {
		return fmt.Errorf("create genre: %w", core.ErrDuplicateKey)
	}
	g.ID = f.nextSerial()
	stored := *g
	f.genres[g.Slug] = &stored
	return nil
}

func (f *fakeRepo) GetGenreBySlug(
	_ context.Context,
	slug string,
) (*Genre, error) {
	if g, ok := f.genres[slug]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, fmt.Errorf("get genre: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateGenre(_ context.Context, g *Genre) error {
	for slug, existing := range f.genres {
		if existing.ID == g.ID {
			delete(f.genres, slug)
			stored := *g
			f.genres[g.Slug] = &stored
			return nil
		}
	}
	return fmt.Errorf("update genre: %w", core.ErrNotFound)
}

func (f *fakeRepo) DeleteGenreBySlug(_ context.Context, slug string) error {
	if _, ok := f.genres[slug]; !ok {
		return fmt.Errorf("delete genre: %w", core.ErrNotFound)
	}
	delete(f.genres, slug)
	return nil
}

func (f *fakeRepo) ListGenres(
	_ context.Context,
	_ ListParams,
) ([]Genre, int, error) {
	out := make([]Genre, 0, len(f.genres))
	for _, g := range f.genres {
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (f *fakeRepo) GetGenresBySlugs(
	_ context.Context,
	slugs []string,
) ([]Genre, error) {
	var out []Genre
	for _, slug := range slugs {
		if g, ok := f.genres[slug]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateTitle(
	_ context.Context,
	t *Title,
	genreIDs []int64,
) error {
	t.ID = f.nextSerial()

	detail := &TitleDetail{Title: *t}
	for _, id := range genreIDs {
		for _, g := range f.genres {
			if g.ID == id {
				detail.Genres = append(detail.Genres, *g)
			}
		}
	}
	if t.CategoryID != nil {
		for _, c := range f.categories {
			if c.ID == *t.CategoryID {
				detail.CategoryName = &c.Name
				detail.CategorySlug = &c.Slug
			}
		}
	}

	f.titles[t.ID] = detail
	return nil
}

func (f *fakeRepo) GetTitle(_ context.Context, id int64) (*TitleDetail, error) {
	if d, ok := f.titles[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, fmt.Errorf("get title: %w", core.ErrNotFound)
}

func (f *fakeRepo) UpdateTitle(
	_ context.Context,
	t *Title,
	genreIDs []int64,
) error {
	detail, ok := f.titles[t.ID]
	if !ok {
		return fmt.Errorf("update title: %w", core.ErrNotFound)
	}

	detail.Title = *t
	if genreIDs != nil {
		detail.Genres = nil
		for _, id := range genreIDs {
			for _, g := range f.genres {
				if g.ID == id {
					detail.Genres = append(detail.Genres, *g)
				}
			}
		}
	}
	return nil
}

func (f *fakeRepo) DeleteTitle(_ context.Context, id int64) error {
	if _, ok := f.titles[id]; !ok {
		return fmt.Errorf("delete title: %w", core.ErrNotFound)
	}
	delete(f.titles, id)
	return nil
}

func (f *fakeRepo) ListTitles(
	_ context.Context,
	_ ListTitlesParams,
) ([]TitleDetail, int, error) {
	out := make([]TitleDetail, 0, len(f.titles))
	for _, d := range f.titles {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (f *fakeRepo) TitleExists(_ context.Context, id int64) (bool, error) {
	_, ok := f.titles[id]
	return ok, nil
}

func seededService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()

	repo := newFakeRepo()
	svc := NewService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}

	ctx := context.Background()
	_, err := svc.CreateCategory(ctx, adminActor, TermRequest{
		Name: "Films", Slug: "films",
	})
	require.NoError(t, err)

	for _, g := range []TermRequest{
		{Name: "Drama", Slug: "drama"},
		{Name: "Comedy", Slug: "comedy"},
	} {
		_, err := svc.CreateGenre(ctx, adminActor, g)
		require.NoError(t, err)
	}

	return svc, repo
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateCategory(context.Background(), userActor, TermRequest{
		Name: "Films", Slug: "films",
	})
	assert.True(t, errors.Is(err, core.ErrForbidden))

	_, err = svc.CreateCategory(context.Background(), policy.Actor{}, TermRequest{
		Name: "Films", Slug: "films",
	})
	assert.True(t, errors.Is(err, core.ErrUnauthorized))
}

func TestCreateCategoryValidatesSlug(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateCategory(context.Background(), adminActor, TermRequest{
		Name: "Films", Slug: "bad slug!",
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestCreateTitle(t *testing.T) {
	svc, _ := seededService(t)

	detail, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "The Long Take",
			Year:     2020,
			Category: "films",
			Genre:    []string{"drama", "comedy"},
		})
	require.NoError(t, err)

	assert.Equal(t, "The Long Take", detail.Name)
	assert.Len(t, detail.Genres, 2)
	assert.Nil(t, detail.Rating, "no reviews yet")
	require.NotNil(t, detail.CategorySlug)
	assert.Equal(t, "films", *detail.CategorySlug)
}

func TestCreateTitleRejectsFutureYear(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Not Yet Released",
			Year:     2027,
			Category: "films",
			Genre:    []string{"drama"},
		})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestCreateTitleCurrentYearAllowed(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "This Year",
			Year:     2026,
			Category: "films",
			Genre:    []string{"drama"},
		})
	assert.NoError(t, err)
}

func TestCreateTitleRejectsUnknownCategory(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Orphan",
			Year:     2020,
			Category: "books",
			Genre:    []string{"drama"},
		})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestCreateTitleRejectsUnknownGenre(t *testing.T) {
	svc, _ := seededService(t)

	_, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Mislabeled",
			Year:     2020,
			Category: "films",
			Genre:    []string{"drama", "noir"},
		})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
	assert.Contains(t, err.Error(), "noir")
}

func TestUpdateTitleRejectsFutureYear(t *testing.T) {
	svc, _ := seededService(t)

	detail, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Editable",
			Year:     2020,
			Category: "films",
			Genre:    []string{"drama"},
		})
	require.NoError(t, err)

	future := 2030
	_, err = svc.UpdateTitle(context.Background(), adminActor, detail.ID,
		UpdateTitleRequest{Year: &future})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestUpdateTitleReplacesGenres(t *testing.T) {
	svc, _ := seededService(t)

	detail, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Regenred",
			Year:     2020,
			Category: "films",
			Genre:    []string{"drama", "comedy"},
		})
	require.NoError(t, err)

	updated, err := svc.UpdateTitle(context.Background(), adminActor, detail.ID,
		UpdateTitleRequest{Genre: []string{"comedy"}})
	require.NoError(t, err)

	require.Len(t, updated.Genres, 1)
	assert.Equal(t, "comedy", updated.Genres[0].Slug)
}

func TestDeleteTitleRequiresAdmin(t *testing.T) {
	svc, _ := seededService(t)

	detail, err := svc.CreateTitle(context.Background(), adminActor,
		CreateTitleRequest{
			Name:     "Protected",
			Year:     2020,
			Category: "films",
			Genre:    []string{"drama"},
		})
	require.NoError(t, err)

	err = svc.DeleteTitle(context.Background(), userActor, detail.ID)
	assert.True(t, errors.Is(err, core.ErrForbidden))

	err = svc.DeleteTitle(context.Background(), adminActor, detail.ID)
	assert.NoError(t, err)
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("sci-fi_2"))
	assert.Error(t, ValidateSlug(""))
	assert.Error(t, ValidateSlug("has space"))
	assert.Error(t, ValidateSlug("ünïcödé"))

	long := make([]byte, MaxSlugLen+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateSlug(string(long)))
}
