package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/socialvote/socialvote/internal/auth"
	"github.com/socialvote/socialvote/internal/metrics"
	"github.com/socialvote/socialvote/internal/model"
	"github.com/socialvote/socialvote/internal/repository/memstore"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store   *memstore.Store
	metrics *metrics.InMemoryRecorder
	tokens  *auth.TokenService
	users   *UserService
	auth    *AuthService
	posts   *PostService
	votes   *VoteService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := auth.NewHasher(auth.HasherConfig{Algorithm: auth.AlgorithmBcrypt, BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte("service-test-secret"),
		Algorithm: "HS256",
		TTL:       30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	store := memstore.New()
	rec := metrics.NewInMemory()
	logger := discardLogger()

	authSvc, err := NewAuthService(store, hasher, tokens, rec, logger)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}

	return &testEnv{
		store:   store,
		metrics: rec,
		tokens:  tokens,
		users:   NewUserService(store, hasher, rec, logger),
		auth:    authSvc,
		posts:   NewPostService(store, rec, logger),
		votes:   NewVoteService(store, rec, logger),
	}
}

func (e *testEnv) register(t *testing.T, email string) *model.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{Email: email, Password: "password123"})
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", email, err)
	}
	return user
}

func (e *testEnv) createPost(t *testing.T, ownerID, title string) *model.Post {
	t.Helper()
	post, err := e.posts.Create(context.Background(), ownerID, PostInput{Title: title, Content: "body"})
	if err != nil {
		t.Fatalf("Create post failed: %v", err)
	}
	return post
}
