package token

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRefreshToken returns a 64-character hex string from 32 random bytes.
// Refresh tokens are opaque and stored server-side on the session record.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
