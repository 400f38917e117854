package common

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecret returns a URL-safe random string of exactly n characters,
// suitable for single-use tokens carried in links.
func GenerateSecret(n int) (string, error) {
	// each 3 random bytes yield 4 base64 characters
	rawSize := (n*3 + 3) / 4
	raw := make([]byte, rawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	secret := base64.RawURLEncoding.EncodeToString(raw)
	return secret[:n], nil
}
