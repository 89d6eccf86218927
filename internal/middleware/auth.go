package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/service"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
	Recorder      metrics.Recorder
}

// Auth returns a middleware that requires a valid bearer token.
// The resolved user is stored in the request context; every failure is
// answered with the same 401 so callers cannot tell the causes apart.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Recorder == nil {
		cfg.Recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Recorder.IncAuthFailure(metrics.AuthMissingToken)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", metrics.AuthMissingToken),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			user, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("authentication error",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
				return
			}

			r = r.WithContext(auth.ContextWithUser(r.Context(), user))
			recordUser(r)
			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
}
