package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: bad signature,
// malformed payload, missing user id, wrong algorithm or expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an access token.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenConfig configures a TokenService. It is fixed for the process lifetime.
type TokenConfig struct {
	Secret    []byte
	Algorithm string
	TTL       time.Duration
	// Leeway tolerates clock skew between issuer and verifier. It only
	// extends acceptance at verify time; issued expiries are unaffected.
	Leeway time.Duration
}

// TokenService issues and verifies stateless HMAC-signed access tokens.
// Tokens cannot be revoked before they expire.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewTokenService validates cfg and builds a TokenService.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("token TTL must be positive")
	}

	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	s := &TokenService{
		secret: cfg.Secret,
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)

	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id must not be empty")
	}

	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
// It does not check that the user still exists.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := s.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	return claims, nil
}
