package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const size = 32

// New returns a random URL-safe token carrying 32 bytes of entropy.
func New() (string, error) {
	const op = "token.New"

	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Hash is the form a token is stored under, so a leaked store does not leak
// usable tokens.
func Hash(tok string) string {
	sum := sha256.Sum256([]byte(tok))

	return hex.EncodeToString(sum[:])
}
