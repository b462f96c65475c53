package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avral/gatehouse/internal/fsx"
)

const minSecretLen = 16

// NewRandomSecretB64 returns n random bytes, base64url-encoded.
func NewRandomSecretB64(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ResolveSecret returns the raw token secret. A non-empty configured value
// wins (base64url or raw text). Otherwise the secret is read from path, or
// generated and persisted there on first start so tokens issued before a
// restart keep validating.
func ResolveSecret(configured, path string) ([]byte, error) {
	text := strings.TrimSpace(configured)
	if text == "" {
		b, err := fsx.ReadFile(path)
		switch {
		case err == nil:
			text = strings.TrimSpace(string(b))
		case errors.Is(err, os.ErrNotExist):
			text, err = NewRandomSecretB64(32)
			if err != nil {
				return nil, err
			}
			if err := fsx.EnsureDir(filepath.Dir(path), 0o755); err != nil {
				return nil, err
			}
			if err := fsx.WriteFileAtomic(path, []byte(text+"\n"), 0o600); err != nil {
				return nil, fmt.Errorf("persisting generated secret: %w", err)
			}
		default:
			return nil, fmt.Errorf("reading secret file: %w", err)
		}
	}

	raw, err := base64.RawURLEncoding.DecodeString(text)
	if err != nil {
		// Accept a raw string secret.
		raw = []byte(text)
	}
	if len(raw) < minSecretLen {
		return nil, fmt.Errorf("token secret too short: %d bytes, need at least %d", len(raw), minSecretLen)
	}
	return raw, nil
}
