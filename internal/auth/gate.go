package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
)

const bearerPrefix = "Bearer "

// Gate validates Authorization headers against the token table.
type Gate struct {
	table *TokenTable
}

// NewGate parses the configured token table (DI constructor).
// A malformed table is a startup error; an empty one rejects every request.
func NewGate(cfg *Config) (*Gate, error) {
	raw := ""
	if cfg != nil {
		raw = cfg.APIKeys
	}

	table, err := ParseTokenTable(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token table: %w", err)
	}

	logger := observability.FromContext(context.Background())
	if table.Len() == 0 {
		logger.Warn("no API keys configured, every /v1 request will be rejected")
	} else {
		logger.Info("bearer token authentication enabled",
			observability.Int("tokens", table.Len()),
			observability.Int("users", len(table.Users())))
	}

	return NewGateFromTable(table), nil
}

// NewGateFromTable creates a gate over an already parsed table.
func NewGateFromTable(table *TokenTable) *Gate {
	return &Gate{table: table}
}

// Authenticate returns the username owning the bearer token in header.
func (g *Gate) Authenticate(header string) (string, error) {
	if header == "" {
		return "", &domain.AuthError{Kind: domain.AuthMissing}
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", &domain.AuthError{Kind: domain.AuthMalformed}
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", &domain.AuthError{Kind: domain.AuthMalformed}
	}

	user, ok := g.table.lookup(token)
	if !ok {
		return "", &domain.AuthError{Kind: domain.AuthInvalid}
	}

	return user, nil
}
