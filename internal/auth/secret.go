package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// MinSecretBytes is the smallest signing secret GenerateSecret will produce.
const MinSecretBytes = 32

// GenerateSecret returns a random signing secret of n bytes, base64url encoded,
// suitable for JWT_SECRET.
func GenerateSecret(n int) (string, error) {
	if n < MinSecretBytes {
		n = MinSecretBytes
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
