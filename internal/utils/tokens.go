package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureToken draws length random bytes from the OS entropy pool
// and returns them URL-safe base64 encoded. Used for CSRF tokens.
func GenerateSecureToken(length int) (string, error) {
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}
