// Package auth provides credential hashing, signed access tokens and
// request identity helpers.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters other than the iteration count are fixed.
const (
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// Supported digest formats.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

var (
	// ErrInvalidHash indicates the hash format is invalid.
	ErrInvalidHash = errors.New("invalid hash format")
	// ErrIncompatibleVersion indicates the hash version is not supported.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
	// ErrUnsupportedAlgorithm indicates an unknown hashing algorithm was requested.
	ErrUnsupportedAlgorithm = errors.New("unsupported password hash algorithm")
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// HasherConfig selects the algorithm new digests are produced with and its cost.
type HasherConfig struct {
	Algorithm  string
	BcryptCost int
	Argon2Time uint32
}

// Hasher produces digests with the configured algorithm and verifies digests
// of either supported format, so existing users keep working when the
// algorithm or its cost changes.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon2Time uint32
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg HasherConfig) (*Hasher, error) {
	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", cfg.BcryptCost)
		}
	case AlgorithmArgon2id:
		if cfg.Argon2Time == 0 {
			return nil, errors.New("argon2 time must be positive")
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}

	return &Hasher{
		algorithm:  cfg.Algorithm,
		bcryptCost: cfg.BcryptCost,
		argon2Time: cfg.Argon2Time,
	}, nil
}

// Hash returns a digest of plaintext using the configured algorithm.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(plaintext, h.argon2Time)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is not an error.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		return verifyArgon2id(plaintext, digest)
	case strings.HasPrefix(digest, "$2a$"), strings.HasPrefix(digest, "$2b$"), strings.HasPrefix(digest, "$2y$"):
		err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, ErrInvalidHash
	default:
		return false, ErrInvalidHash
	}
}

// hashArgon2id encodes the digest in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func hashArgon2id(password string, iterations uint32) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		iterations,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

func verifyArgon2id(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, ErrInvalidHash
	}
	if version != argon2.Version {
		return false, ErrIncompatibleVersion
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrInvalidHash
	}
	// argon2.IDKey panics on these rather than returning an error.
	if iterations == 0 || threads == 0 {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(expected)))

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}
