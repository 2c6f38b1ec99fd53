// Package auth implements the bearer-token gate in front of the /v1 API.
// Tokens are opaque `op_wui_` secrets mapped to a username; only their SHA-256 digests
// are kept in memory.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"strings"
)

// TokenPrefix is the required prefix of every issued token.
const TokenPrefix = "op_wui_"

const (
	pairSeparator  = ";"
	fieldSeparator = ":"
)

// Config contains the raw token table.
type Config struct {
	APIKeys string `env:"API_KEYS"`
}

// TokenTable is the immutable set of valid tokens, keyed by digest.
type TokenTable struct {
	owners map[[sha256.Size]byte]string
}

// ParseTokenTable parses `user1:token1;user2:token2`. Any malformed entry is an error.
func ParseTokenTable(raw string) (*TokenTable, error) {
	table := &TokenTable{owners: make(map[[sha256.Size]byte]string)}

	for i, pair := range strings.Split(raw, pairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		username, token, ok := strings.Cut(pair, fieldSeparator)
		if !ok {
			return nil, fmt.Errorf("API_KEYS entry %d: missing %q between username and token", i+1, fieldSeparator)
		}

		username = strings.TrimSpace(username)
		token = strings.TrimSpace(token)
		if username == "" || token == "" {
			return nil, fmt.Errorf("API_KEYS entry %d: username and token must not be empty", i+1)
		}

		if !strings.HasPrefix(token, TokenPrefix) {
			return nil, fmt.Errorf("API_KEYS entry %d: token for user %s must start with %s", i+1, username, TokenPrefix)
		}

		digest := sha256.Sum256([]byte(token))
		if owner, exists := table.owners[digest]; exists {
			return nil, fmt.Errorf("API_KEYS entry %d: token for user %s duplicates the token of user %s", i+1, username, owner)
		}

		table.owners[digest] = username
	}

	return table, nil
}

// Len returns the number of tokens in the table.
func (t *TokenTable) Len() int {
	return len(t.owners)
}

// Users returns the distinct usernames in the table.
func (t *TokenTable) Users() []string {
	seen := make(map[string]bool, len(t.owners))
	users := make([]string, 0, len(t.owners))
	for _, user := range t.owners {
		if !seen[user] {
			seen[user] = true
			users = append(users, user)
		}
	}
	return users
}

// lookup returns the owner of token. Every digest is compared in constant time.
func (t *TokenTable) lookup(token string) (string, bool) {
	if t == nil {
		return "", false
	}

	digest := sha256.Sum256([]byte(token))

	owner, found := "", false
	for candidate, user := range t.owners {
		if subtle.ConstantTimeCompare(digest[:], candidate[:]) == 1 {
			owner, found = user, true
		}
	}
	return owner, found
}
