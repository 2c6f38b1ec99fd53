package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultTokenEntropy is the number of random bytes mixed into a new token.
	DefaultTokenEntropy = 32

	tokenSuffixLength = 32
)

// ErrInvalidUsername is returned by GenerateToken for unusable usernames.
var ErrInvalidUsername = errors.New("username must be non-empty and must not contain ':' or ';'")

// GenerateToken issues a new token for username: the prefix followed by the first 32 hex
// characters of sha256(sha256(username) || random bytes).
func GenerateToken(username string, entropy int) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.ContainsAny(username, fieldSeparator+pairSeparator) {
		return "", ErrInvalidUsername
	}

	if entropy <= 0 {
		entropy = DefaultTokenEntropy
	}

	random := make([]byte, entropy)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	salt := sha256.Sum256([]byte(username))
	digest := sha256.Sum256(append(salt[:], random...))

	return TokenPrefix + hex.EncodeToString(digest[:])[:tokenSuffixLength], nil
}

// TableEntry formats a token as one API_KEYS entry.
func TableEntry(username, token string) string {
	return strings.TrimSpace(username) + fieldSeparator + token
}
