package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/handler/dto"
	"github.com/socialvote/socialvote/internal/service"
)

// PostHandler handles HTTP requests for post operations.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// List handles GET /posts?limit=&skip=&search=.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.ListPostsInput{Search: query.Get("search")}

	var ok bool
	if input.Limit, ok = intParam(w, query.Get("limit"), "limit"); !ok {
		return
	}
	if input.Offset, ok = intParam(w, query.Get("skip"), "skip"); !ok {
		return
	}

	posts, err := h.svc.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostListResponse(posts))
}

// Get handles GET /posts/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// Create handles POST /posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := auth.MustUserFromContext(r.Context())

	post, err := h.svc.Create(r.Context(), user.ID, toPostInput(req))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToPostResponse(post))
}

// Update handles PUT /posts/{id}. The body replaces every writable field.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.PostRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := auth.MustUserFromContext(r.Context())

	post, err := h.svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), toPostInput(req))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPostResponse(post))
}

// Delete handles DELETE /posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toPostInput(req dto.PostRequest) service.PostInput {
	return service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}
}

// intParam parses an optional non-negative integer query parameter.
// Empty means zero, which lets the service apply its default.
func intParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_QUERY", name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
