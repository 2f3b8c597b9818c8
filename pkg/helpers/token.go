package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// GenOpaqueToken returns n random bytes as a URL-safe string.
// Used for one-time verification tokens.
func GenOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
