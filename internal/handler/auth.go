package handler

import (
	"log/slog"
	"net/http"

	"github.com/socialvote/socialvote/internal/handler/dto"
	"github.com/socialvote/socialvote/internal/service"
)

// AuthHandler exchanges credentials for access tokens.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Login handles POST /login. Credentials arrive as an OAuth2 password
// form: the email in "username" and the password in "password".
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "username and password are required")
		return
	}

	result, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresAt:   result.ExpiresAt,
	})
}
