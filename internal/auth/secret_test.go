package auth

import (
	"encoding/base64"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		n         int
		wantBytes int
	}{
		{"default minimum", 0, MinSecretBytes},
		{"below minimum", 8, MinSecretBytes},
		{"larger", 64, 64},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			secret, err := GenerateSecret(tt.n)
			if err != nil {
				t.Fatalf("GenerateSecret failed: %v", err)
			}

			raw, err := base64.RawURLEncoding.DecodeString(secret)
			if err != nil {
				t.Fatalf("secret is not base64url: %v", err)
			}
			if len(raw) != tt.wantBytes {
				t.Errorf("secret length = %d bytes, want %d", len(raw), tt.wantBytes)
			}
		})
	}

	a, _ := GenerateSecret(32)
	b, _ := GenerateSecret(32)
	if a == b {
		t.Error("two generated secrets should differ")
	}
}
