package authprogram

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

type (
	// TokenIssuer returns a new session token on each call.
	TokenIssuer func() (string, error)
)

const (
	// TokenBytes is the amount of randomness in a session token
	TokenBytes = 32
)

// IssueToken reads TokenBytes from src and encodes them as unpadded URL-safe
// base64, 43 characters in total.
func IssueToken(src io.Reader) (string, error) {
	var buf [TokenBytes]byte
	if _, err := io.ReadFull(src, buf[:]); err != nil {
		return "", fmt.Errorf("unable to read random bytes for token, cause %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

// RandomTokens issues tokens from crypto/rand.
func RandomTokens() (string, error) {
	return IssueToken(rand.Reader)
}
