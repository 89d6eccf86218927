package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/handler/dto"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/service"
)

// VoteHandler handles HTTP requests for vote operations. Every route
// acts on the authenticated caller's own vote.
type VoteHandler struct {
	svc    *service.VoteService
	logger *slog.Logger
}

// NewVoteHandler creates a new VoteHandler.
func NewVoteHandler(svc *service.VoteService, logger *slog.Logger) *VoteHandler {
	return &VoteHandler{
		svc:    svc,
		logger: logger,
	}
}

// Cast handles POST /votes. A newly stored vote answers 201; a changed
// or repeated vote answers 200.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	var req dto.VoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "post_id is required")
		return
	}
	if req.Direction == nil {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "vote_dir is required")
		return
	}

	user := auth.MustUserFromContext(r.Context())

	result, err := h.svc.Cast(r.Context(), user.ID, req.PostID, model.VoteDirection(*req.Direction))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	status := http.StatusOK
	if result.Outcome == model.VoteCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, dto.ToVoteResponse(result.Vote, result.Outcome))
}

// Get handles GET /votes/{post_id}.
func (h *VoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.MustUserFromContext(r.Context())

	vote, err := h.svc.Get(r.Context(), user.ID, chi.URLParam(r, "post_id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToVoteResponse(vote, ""))
}

// Retract handles DELETE /votes.
func (h *VoteHandler) Retract(w http.ResponseWriter, r *http.Request) {
	var req dto.RetractVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PostID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "post_id is required")
		return
	}

	user := auth.MustUserFromContext(r.Context())

	if err := h.svc.Retract(r.Context(), user.ID, req.PostID); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
