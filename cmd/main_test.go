package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/bridge/internal/auth"
	"github.com/davidbz/bridge/internal/provider/anthropic"
	"github.com/davidbz/bridge/internal/provider/echo"
	"github.com/davidbz/bridge/internal/provider/gemini"
	"github.com/davidbz/bridge/internal/provider/registry"
	"github.com/davidbz/bridge/internal/provider/xai"
	usageredis "github.com/davidbz/bridge/internal/usage/redis"
)

func TestTokenCmd(t *testing.T) {
	t.Run("should print an API_KEYS entry", func(t *testing.T) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"token", "--username", "alice"})

		require.NoError(t, cmd.Execute())

		line := strings.TrimSpace(out.String())
		require.True(t, strings.HasPrefix(line, "API_KEYS=alice:"+auth.TokenPrefix))

		table, err := auth.ParseTokenTable(strings.TrimPrefix(line, "API_KEYS="))
		require.NoError(t, err)
		require.Equal(t, []string{"alice"}, table.Users())
	})

	t.Run("should require a username", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"token"})

		require.Error(t, cmd.Execute())
	})

	t.Run("should reject unusable usernames", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"token", "--username", "a;b"})

		require.ErrorIs(t, cmd.Execute(), auth.ErrInvalidUsername)
	})
}

func TestRegisterProviders(t *testing.T) {
	t.Run("should register only configured providers", func(t *testing.T) {
		reg := registry.NewRegistry()

		err := registerProviders(reg,
			&anthropic.Config{APIKey: "sk-ant", BaseURL: "https://api.anthropic.com", Version: "2023-06-01"},
			&gemini.Config{},
			&xai.Config{},
			&echo.Config{Enabled: true},
		)
		require.NoError(t, err)

		names, err := reg.List(context.Background())
		require.NoError(t, err)
		require.Equal(t, []string{"anthropic", "echo"}, names)
	})

	t.Run("should register nothing without credentials", func(t *testing.T) {
		reg := registry.NewRegistry()

		require.NoError(t, registerProviders(reg, &anthropic.Config{}, &gemini.Config{}, &xai.Config{}, &echo.Config{}))

		names, err := reg.List(context.Background())
		require.NoError(t, err)
		require.Empty(t, names)
	})
}

func TestUsageLedgerDisabled(t *testing.T) {
	cfg := &usageredis.Config{}

	client, err := newRedisClient(cfg)
	require.NoError(t, err)
	require.Nil(t, client)
	require.Nil(t, newUsageRecorder(client, cfg))
}

type fakeLedger struct {
	totals map[string]string
	err    error

	user string
	day  time.Time
}

func (f *fakeLedger) Totals(_ context.Context, user string, day time.Time) (map[string]string, error) {
	f.user, f.day = user, day
	return f.totals, f.err
}

func TestPrintUsage(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("should print counters sorted by field", func(t *testing.T) {
		ledger := &fakeLedger{totals: map[string]string{
			"grok-3:requests":      "2",
			"echo4:requests":       "1",
			"grok-3:prompt_tokens": "24",
		}}
		var out bytes.Buffer

		require.NoError(t, printUsage(context.Background(), &out, ledger, "alice", day))
		require.Equal(t, "echo4:requests\t1\ngrok-3:prompt_tokens\t24\ngrok-3:requests\t2\n", out.String())
		require.Equal(t, "alice", ledger.user)
		require.Equal(t, day, ledger.day)
	})

	t.Run("should say when nothing was recorded", func(t *testing.T) {
		var out bytes.Buffer

		require.NoError(t, printUsage(context.Background(), &out, &fakeLedger{}, "bob", day))
		require.Equal(t, "no usage recorded for bob on 2025-03-10\n", out.String())
	})

	t.Run("should return ledger errors", func(t *testing.T) {
		err := printUsage(context.Background(), &bytes.Buffer{}, &fakeLedger{err: errors.New("boom")}, "bob", day)
		require.EqualError(t, err, "boom")
	})
}

func TestUsageCmd(t *testing.T) {
	t.Run("should fail when the ledger is disabled", func(t *testing.T) {
		t.Setenv("REDIS_URL", "")
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"usage", "--user", "alice"})

		require.ErrorIs(t, cmd.Execute(), errLedgerDisabled)
	})

	t.Run("should reject malformed dates", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetArgs([]string{"usage", "--user", "alice", "--date", "10/03/2025"})

		require.ErrorContains(t, cmd.Execute(), "invalid --date")
	})
}
