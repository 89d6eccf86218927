// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/socialvote/socialvote/internal/handler/dto"
	"github.com/socialvote/socialvote/internal/service"
)

// NotFound handles 404 responses for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.NewError(code, message))
}

// decodeJSON decodes the request body into dst and writes the error
// response itself when it cannot. It reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses. Anything it
// does not recognize is logged and answered with a generic 500.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidVoteDirection):
		writeError(w, http.StatusUnprocessableEntity, "INVALID_VOTE_DIRECTION", "vote_dir must be -1, 0 or 1")
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authorized to perform requested action")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrTargetNotFound):
		writeError(w, http.StatusNotFound, "POST_NOT_FOUND", "Post to vote on does not exist")
	case errors.Is(err, service.ErrVoteNotFound):
		writeError(w, http.StatusNotFound, "VOTE_NOT_FOUND", "Vote does not exist")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrVoteConflict):
		writeError(w, http.StatusConflict, "VOTE_CONFLICT", "Vote changed concurrently, retry the request")
	default:
		logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
