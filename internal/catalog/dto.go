// AngelaMos | 2026
// dto.go

package catalog

// TermRequest creates a category or a genre; both are (name, slug) pairs.
type TermRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50"`
}

type UpdateTermRequest struct {
	Name *string `json:"name,omitempty" validate:"omitempty,max=256"`
	Slug *string `json:"slug,omitempty" validate:"omitempty,max=50"`
}

type TermResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateTitleRequest references its category and genres by slug, the way
// clients know them. The service resolves slugs to IDs.
type CreateTitleRequest struct {
	Name        string   `json:"name"        validate:"required,max=256"`
	Year        int      `json:"year"        validate:"required"`
	Description string   `json:"description" validate:"omitempty,max=4000"`
	Category    string   `json:"category"    validate:"required,max=50"`
	Genre       []string `json:"genre"       validate:"required,min=1,dive,max=50"`
}

type UpdateTitleRequest struct {
	Name        *string  `json:"name,omitempty"        validate:"omitempty,max=256"`
	Year        *int     `json:"year,omitempty"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Category    *string  `json:"category,omitempty"    validate:"omitempty,max=50"`
	Genre       []string `json:"genre,omitempty"       validate:"omitempty,min=1,dive,max=50"`
}

// TitleResponse expands the category and genres into objects and carries the
// derived rating: the mean review score, or null when no reviews exist.
type TitleResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Year        int            `json:"year"`
	Rating      *float64       `json:"rating"`
	Description string         `json:"description"`
	Category    *TermResponse  `json:"category"`
	Genre       []TermResponse `json:"genre"`
}

type ListParams struct {
	Page     int
	PageSize int
	Search   string
}

func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListTitlesParams filters titles; every field is optional and they combine.
type ListTitlesParams struct {
	Page     int
	PageSize int
	Category string
	Genre    string
	Name     string
	Year     int
}

func (p *ListTitlesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListTitlesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func toTermResponse(name, slug string) TermResponse {
	return TermResponse{Name: name, Slug: slug}
}

func ToCategoryResponse(c *Category) TermResponse {
	return toTermResponse(c.Name, c.Slug)
}

func ToGenreResponse(g *Genre) TermResponse {
	return toTermResponse(g.Name, g.Slug)
}

func ToCategoryResponseList(categories []Category) []TermResponse {
	responses := make([]TermResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, ToCategoryResponse(&categories[i]))
	}
	return responses
}

func ToTitleResponse(d *TitleDetail) TitleResponse {
	resp := TitleResponse{
		ID:          d.ID,
		Name:        d.Name,
		Year:        d.Year,
		Rating:      d.Rating,
		Description: d.Description,
		Genre:       ToGenreResponseList(d.Genres),
	}

	if d.CategorySlug != nil && d.CategoryName != nil {
		resp.Category = &TermResponse{
			Name: *d.CategoryName,
			Slug: *d.CategorySlug,
		}
	}

	return resp
}

func ToTitleResponseList(details []TitleDetail) []TitleResponse {
	responses := make([]TitleResponse, 0, len(details))
	for i := range details {
		responses = append(responses, ToTitleResponse(&details[i]))
	}
	return responses
}

func ToGenreResponseList(genres []Genre) []TermResponse {
	responses := make([]TermResponse, 0, len(genres))
	for i := range genres {
		responses = append(responses, ToGenreResponse(&genres[i]))
	}
	return responses
}
