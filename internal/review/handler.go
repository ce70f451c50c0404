// AngelaMos | 2026
// handler.go

package review

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

// RegisterRoutes expects a router already scoped to /titles/{titleID}; the
// catalog handler mounts it there. Comments nest one level further down.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reviews", func(r chi.Router) {
		r.Get("/", h.ListReviews)
		r.Post("/", h.CreateReview)

		r.Route("/{reviewID}", func(r chi.Router) {
			r.Get("/", h.GetReview)
			r.Patch("/", h.UpdateReview)
			r.Delete("/", h.DeleteReview)

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", h.ListComments)
				r.Post("/", h.CreateComment)

				r.Route("/{commentID}", func(r chi.Router) {
					r.Get("/", h.GetComment)
					r.Patch("/", h.UpdateComment)
					r.Delete("/", h.DeleteComment)
				})
			})
		})
	})
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	params := listParams(r)

	reviews, total, err := h.service.ListReviews(r.Context(), titleID, params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(
		w,
		ToReviewResponseList(reviews),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID", "title")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.CreateReview(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToReviewResponse(detail))
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetReview(r.Context(), titleID, reviewID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(detail))
}

func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.UpdateReview(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		reviewID,
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToReviewResponse(detail))
}

func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteReview(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		reviewID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	params := listParams(r)

	comments, total, err := h.service.ListComments(
		r.Context(),
		titleID,
		reviewID,
		params,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Paginated(
		w,
		ToCommentResponseList(comments),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := reviewPath(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.CreateComment(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		reviewID,
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToCommentResponse(detail))
}

func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetComment(
		r.Context(),
		titleID,
		reviewID,
		commentID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToCommentResponse(detail))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	detail, err := h.service.UpdateComment(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		reviewID,
		commentID,
		req,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToCommentResponse(detail))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, commentID, ok := commentPath(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteComment(
		r.Context(),
		middleware.GetActor(r.Context()),
		titleID,
		reviewID,
		commentID,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "resource")
		return
	}
	core.JSONError(w, err)
}

func listParams(r *http.Request) ListParams {
	var params ListParams
	params.Page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	params.PageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	params.Normalize()
	return params
}

func pathID(
	w http.ResponseWriter,
	r *http.Request,
	param, resource string,
) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id < 1 {
		core.NotFound(w, resource)
		return 0, false
	}
	return id, true
}

func reviewPath(
	w http.ResponseWriter,
	r *http.Request,
) (titleID, reviewID int64, ok bool) {
	titleID, ok = pathID(w, r, "titleID", "title")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = pathID(w, r, "reviewID", "review")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func commentPath(
	w http.ResponseWriter,
	r *http.Request,
) (titleID, reviewID, commentID int64, ok bool) {
	titleID, reviewID, ok = reviewPath(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	commentID, ok = pathID(w, r, "commentID", "comment")
	if !ok {
		return 0, 0, 0, false
	}
	return titleID, reviewID, commentID, true
}
