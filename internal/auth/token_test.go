package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestTokenService(t *testing.T, cfg TokenConfig) *TokenService {
	t.Helper()
	if cfg.Secret == nil {
		cfg.Secret = []byte("unit-test-secret")
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = "HS256"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 30 * time.Minute
	}
	s, err := NewTokenService(cfg)
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewTokenService_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  TokenConfig
	}{
		{"empty secret", TokenConfig{Algorithm: "HS256", TTL: time.Minute}},
		{"zero ttl", TokenConfig{Secret: []byte("s"), Algorithm: "HS256"}},
		{"unknown alg", TokenConfig{Secret: []byte("s"), Algorithm: "XX999", TTL: time.Minute}},
		{"asymmetric alg", TokenConfig{Secret: []byte("s"), Algorithm: "RS256", TTL: time.Minute}},
		{"none alg", TokenConfig{Secret: []byte("s"), Algorithm: "none", TTL: time.Minute}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := NewTokenService(tt.cfg); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestTokenService_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		alg := alg
		t.Run(alg, func(t *testing.T) {
			t.Parallel()

			s := newTestTokenService(t, TokenConfig{Algorithm: alg})

			token, expiresAt, err := s.Issue("01HUSER")
			if err != nil {
				t.Fatalf("Issue failed: %v", err)
			}
			if !expiresAt.Equal(fixedNow.Add(30 * time.Minute)) {
				t.Errorf("unexpected expiry %s", expiresAt)
			}

			claims, err := s.Verify(token)
			if err != nil {
				t.Fatalf("Verify failed: %v", err)
			}
			if claims.UserID != "01HUSER" {
				t.Errorf("UserID = %q, want 01HUSER", claims.UserID)
			}
		})
	}
}

func TestTokenService_Expiry(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, TokenConfig{TTL: time.Minute})

	token, _, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	s.now = func() time.Time { return fixedNow.Add(59 * time.Second) }
	if _, err := s.Verify(token); err != nil {
		t.Fatalf("token should still be valid before TTL elapses: %v", err)
	}

	s.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	_, err = s.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected wrapped jwt.ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_Leeway(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, TokenConfig{TTL: time.Minute, Leeway: 30 * time.Second})

	token, _, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	s.now = func() time.Time { return fixedNow.Add(80 * time.Second) }
	if _, err := s.Verify(token); err != nil {
		t.Errorf("token inside leeway should verify: %v", err)
	}

	s.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	if _, err := s.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token beyond leeway should fail, got %v", err)
	}
}

func TestTokenService_Rejects(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, TokenConfig{})
	valid, _, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherSecret := newTestTokenService(t, TokenConfig{Secret: []byte("another-secret")})
	foreign, _, _ := otherSecret.Issue("user-1")

	otherAlg := newTestTokenService(t, TokenConfig{Algorithm: "HS512"})
	wrongAlg, _, _ := otherAlg.Issue("user-1")

	exp := jwt.NewNumericDate(fixedNow.Add(time.Hour))
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString([]byte("unit-test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).
		SignedString([]byte("unit-test-secret"))

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"tampered signature", tampered},
		{"different secret", foreign},
		{"different algorithm", wrongAlg},
		{"missing user_id", noUser},
		{"missing exp", noExpiry},
		{"alg none", unsigned},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := s.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
			if claims != nil {
				t.Errorf("Verify(%s) returned claims for invalid token", tt.name)
			}
		})
	}
}

func TestTokenService_IssueRequiresUser(t *testing.T) {
	t.Parallel()

	s := newTestTokenService(t, TokenConfig{})
	if _, _, err := s.Issue(""); err == nil {
		t.Error("expected error for empty user id")
	}
}
