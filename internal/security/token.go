package security

import (
	"crypto/rand"
	"fmt"
)

const (
	tokenLength   = 60
	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// NewAuthToken returns a 60-character alphanumeric bearer token. The value is
// opaque; validity lives entirely in the auth_tokens table.
func NewAuthToken() (string, error) {
	buf := make([]byte, tokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	out := make([]byte, tokenLength)
	for i, b := range buf {
		out[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return string(out), nil
}
