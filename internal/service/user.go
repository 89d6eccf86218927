package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository"
)

const (
	maxEmailLength = 320
	// bcrypt ignores input past 72 bytes, so longer passwords are refused
	// rather than silently truncated.
	maxPasswordBytes = 72
)

// UserService handles registration and profile lookups.
type UserService struct {
	users   UserStore
	hasher  auth.PasswordHasher
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher auth.PasswordHasher, recorder metrics.Recorder, logger *slog.Logger) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		users:   users,
		hasher:  hasher,
		metrics: recorder,
		logger:  logger,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Email    string
	Password string
}

// Register validates the input, hashes the password and stores the user.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    nowUTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user_registered", "user_id", user.ID)

	return user, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// normalizeEmail trims and lower-cases an address after checking it parses
// as a bare addr-spec.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalidf("email is required")
	}
	if len(email) > maxEmailLength {
		return "", invalidf("email is too long")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", invalidf("email is not a valid address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if password == "" {
		return invalidf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return invalidf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}
