package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidbz/bridge/internal/auth"
	"github.com/davidbz/bridge/internal/config"
	usageredis "github.com/davidbz/bridge/internal/usage/redis"
)

const rootLongDesc string = `bridge exposes an OpenAI-compatible chat completions API in front of
Anthropic, Gemini and xAI.

Configuration is read from the environment (and .env when present):
  ANTHROPIC_API_KEY, GOOGLE_API_KEY, GROK_API_KEY   provider credentials
  API_KEYS                                          user1:op_wui_...;user2:op_wui_...
  MODELS_FILE                                       optional model catalog override

Commands:
  bridge serve                     Run the gateway (default)
  bridge token --username alice    Issue a bearer token
  bridge usage --user alice        Show today's recorded usage (needs REDIS_URL)`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bridge",
		Short:         "OpenAI-compatible gateway for Anthropic and Gemini",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newUsageCmd())

	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx)
}

func newTokenCmd() *cobra.Command {
	var (
		username string
		length   int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for API_KEYS",
		Long: `Issue a new op_wui_ bearer token for a user.

The output is an API_KEYS entry; append it to the existing value with ';'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := auth.GenerateToken(username, length)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API_KEYS=%s\n", auth.TableEntry(username, token))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username associated with the token (shown in logs)")
	cmd.Flags().IntVar(&length, "length", auth.DefaultTokenEntropy, "Number of random bytes mixed into the token")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

var errLedgerDisabled = errors.New("usage ledger is disabled: REDIS_URL is not set")

type usageTotals interface {
	Totals(ctx context.Context, user string, day time.Time) (map[string]string, error)
}

func newUsageCmd() *cobra.Command {
	var (
		user string
		date string
	)

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show a user's recorded token usage for one day",
		Long: `Print the usage ledger counters of a user for one UTC day.

Counters are keyed <model>:<requests|prompt_tokens|completion_tokens>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now().UTC()
			if date != "" {
				parsed, err := time.Parse(time.DateOnly, date)
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				day = parsed
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Usage.Enabled() {
				return errLedgerDisabled
			}

			client, err := usageredis.NewClient(&cfg.Usage)
			if err != nil {
				return err
			}
			defer client.Close()

			return printUsage(cmd.Context(), cmd.OutOrStdout(), usageredis.NewRecorder(client, &cfg.Usage), user, day)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username whose counters are shown")
	cmd.Flags().StringVar(&date, "date", "", "UTC day as YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printUsage(ctx context.Context, out io.Writer, ledger usageTotals, user string, day time.Time) error {
	totals, err := ledger.Totals(ctx, user, day)
	if err != nil {
		return err
	}

	if len(totals) == 0 {
		fmt.Fprintf(out, "no usage recorded for %s on %s\n", user, day.Format(time.DateOnly))
		return nil
	}

	for _, field := range slices.Sorted(maps.Keys(totals)) {
		fmt.Fprintf(out, "%s\t%s\n", field, totals[field])
	}
	return nil
}
