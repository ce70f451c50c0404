// AngelaMos | 2026
// handler.go

package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/revue/internal/core"
	"github.com/angelamos/revue/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the catalog endpoints. Reads are public; writes run
// through policy inside the service, so the subtree only needs OptionalAuth.
// nested, when non-nil, is mounted inside the per-title subtree so other
// packages can hang resources off /titles/{titleID}.
func (h *Handler) RegisterRoutes(r chi.Router, nested func(chi.Router)) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{slug}", h.GetCategory)
		r.Patch("/{slug}", h.UpdateCategory)
		r.Delete("/{slug}", h.DeleteCategory)
	})

	r.Route("/genres", func(r chi.Router) {
		r.Get("/", h.ListGenres)
		r.Post("/", h.CreateGenre)
		r.Get("/{slug}", h.GetGenre)
		r.Patch("/{slug}", h.UpdateGenre)
		r.Delete("/{slug}", h.DeleteGenre)
	})

	r.Route("/titles", func(r chi.Router) {
		r.Get("/", h.ListTitles)
		r.Post("/", h.CreateTitle)

		r.Route("/{titleID}", func(r chi.Router) {
			r.Get("/", h.GetTitle)
			r.Patch("/", h.UpdateTitle)
			r.Delete("/", h.DeleteTitle)

			if nested != nil {
				nested(r)
			}
		})
	})
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	params := termListParams(r)

	categories, total, err := h.service.ListCategories(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCategoryResponseList(categories),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTerm(w, r)
	if !ok {
		return
	}

	c, err := h.service.CreateCategory(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "category slug already in use")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToCategoryResponse(c))
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "category")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req UpdateTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.UpdateCategory(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "slug"),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "category")
			return
		}
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "category slug already in use")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToCategoryResponse(c))
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteCategory(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "slug"),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "category")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	params := termListParams(r)

	genres, total, err := h.service.ListGenres(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToGenreResponseList(genres),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTerm(w, r)
	if !ok {
		return
	}

	g, err := h.service.CreateGenre(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "genre slug already in use")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToGenreResponse(g))
}

func (h *Handler) GetGenre(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGenre(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "genre")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToGenreResponse(g))
}

func (h *Handler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	var req UpdateTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	g, err := h.service.UpdateGenre(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "slug"),
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "genre")
			return
		}
		if errors.Is(err, core.ErrDuplicateKey) {
			core.Conflict(w, "genre slug already in use")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToGenreResponse(g))
}

func (h *Handler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteGenre(
		r.Context(),
		middleware.GetActor(r.Context()),
		chi.URLParam(r, "slug"),
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "genre")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListTitles(w http.ResponseWriter, r *http.Request) {
	params := ListTitlesParams{
		Category: r.URL.Query().Get("category"),
		Genre:    r.URL.Query().Get("genre"),
		Name:     r.URL.Query().Get("name"),
	}
	params.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	params.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	params.Year, _ = strconv.Atoi(r.URL.Query().Get("year"))
	params.Normalize()

	titles, total, err := h.service.ListTitles(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToTitleResponseList(titles),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateTitle(w http.ResponseWriter, r *http.Request) {
	var req CreateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.CreateTitle(
		r.Context(),
		middleware.GetActor(r.Context()),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToTitleResponse(detail))
}

func (h *Handler) GetTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetTitle(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "title")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTitleResponse(detail))
}

func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.UpdateTitle(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
		req,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "title")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToTitleResponse(detail))
}

func (h *Handler) DeleteTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := titleID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteTitle(
		r.Context(),
		middleware.GetActor(r.Context()),
		id,
	)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "title")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decodeTerm(
	w http.ResponseWriter,
	r *http.Request,
) (TermRequest, bool) {
	var req TermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func termListParams(r *http.Request) ListParams {
	params := ListParams{Search: r.URL.Query().Get("search")}
	params.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	params.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	params.Normalize()
	return params
}

func titleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "titleID"), 10, 64)
	if err != nil || id < 1 {
		core.NotFound(w, "title")
		return 0, false
	}
	return id, true
}
