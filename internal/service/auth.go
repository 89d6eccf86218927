package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

// TokenType is the OAuth2 token type reported by Login.
const TokenType = "bearer"

// TokenIssuer issues and verifies access tokens.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *model.User
}

// AuthService exchanges credentials for tokens and resolves tokens back to
// users.
type AuthService struct {
	users     UserStore
	hasher    auth.PasswordHasher
	tokens    TokenIssuer
	metrics   metrics.Recorder
	logger    *slog.Logger
	dummyHash string
}

// NewAuthService creates a new AuthService. It hashes a throwaway password
// once so that logins for unknown emails cost the same as real ones.
func NewAuthService(users UserStore, hasher auth.PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) (*AuthService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	dummy, err := hasher.Hash("timing-equalizer-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   recorder,
		logger:    logger,
		dummyHash: dummy,
	}, nil
}

// Login verifies email and password and issues an access token. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		_, _ = s.hasher.Verify(password, s.dummyHash)
		s.metrics.IncLogin(metrics.LoginInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.metrics.IncLogin(metrics.LoginInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	s.logger.Info("user_logged_in", "user_id", user.ID)

	return &LoginResult{
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// Authenticate resolves a bearer token to its user. A bad token and a
// token for a user that no longer exists both yield ErrUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		s.metrics.IncAuthFailure(metrics.AuthMissingToken)
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.IncAuthFailure(metrics.AuthInvalidToken)
		s.logger.Warn("auth_failed", "reason", metrics.AuthInvalidToken, "error", err)
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncAuthFailure(metrics.AuthUnknownUser)
			s.logger.Warn("auth_failed", "reason", metrics.AuthUnknownUser, "user_id", claims.UserID)
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}

	return user, nil
}
