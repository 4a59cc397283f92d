package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// refreshBytes is the entropy of a refresh token (96 hex chars on the wire).
const refreshBytes = 48

// NewRefreshToken returns a new opaque refresh token. Only its HashRefresh
// value is ever persisted.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashRefresh returns the hex SHA-256 digest of a raw refresh token.
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
