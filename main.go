/* main.go
 * The "main" method for running tourney-threads. Reads a Challonge tournament and opens one Discord thread per match,
 * or previews the threads with --dry-run
 * Usage: go run . --config config.yaml [--tournament <slug>] [--dry-run] [--debug]
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "tourney-threads/api/api"
	"tourney-threads/bot"
	"tourney-threads/config"

	"github.com/spf13/cobra"
)

const (
	envDryRun = "TOURNEY_DRY_RUN"
	envDebug  = "TOURNEY_DEBUG"

	discordTimeout = 30 * time.Second
)

// errRunFailed marks a run that completed but had failing matches. Details were already reported
var errRunFailed = errors.New("one or more matches failed")

type options struct {
	configPath string
	tournament string
	dryRun     bool
	debug      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// newRootCommand builds the command line interface
func newRootCommand(stdout io.Writer, stderr io.Writer) *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "tourney-threads",
		Short:         "Create Discord scheduling threads for Challonge matches",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := envFlag(cmd, "dry-run", envDryRun, &opts.dryRun); err != nil {
				return err
			}
			if err := envFlag(cmd, "debug", envDebug, &opts.debug); err != nil {
				return err
			}
			return run(cmd.Context(), opts, stdout, stderr)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the YAML config file")
	cmd.Flags().StringVar(&opts.tournament, "tournament", "", "tournament slug, overrides challonge.tournament")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the threads instead of creating them (env "+envDryRun+")")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "verbose logging and a summary of fetched matches (env "+envDebug+")")
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// envFlag fills a boolean flag from the environment when it was not given on the command line
func envFlag(cmd *cobra.Command, flag string, env string, target *bool) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}
	raw, ok := os.LookupEnv(env)
	if !ok || raw == "" {
		return nil
	}
	value, err := parseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", env, err)
	}
	*target = value
	return nil
}

// run loads the config, fetches the tournament and processes every match.
// Preconditions: Receives a context cancelled on interrupt, the parsed options and the output writers
// Postconditions: Returns nil when every match was previewed or submitted, errRunFailed when any match failed, or
// the fatal error that stopped the run before any match was processed
func run(ctx context.Context, opts options, stdout io.Writer, stderr io.Writer) error {
	logger := newLogger(stderr, opts.debug)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg = cfg.WithTournament(opts.tournament)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !opts.dryRun {
		if err := cfg.ValidateDiscord(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	tournament, err := api.NewAPI(ctx, cfg, logger).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch matches: %w", err)
	}

	settings := api.SettingsFromConfig(cfg, opts.dryRun)
	if opts.debug {
		api.WriteDebugSummary(stdout, tournament, settings)
	}

	var creator api.ThreadCreator
	if !opts.dryRun {
		session, err := bot.NewSession(cfg.Discord.BotToken, discordTimeout)
		if err != nil {
			return err
		}
		creator = bot.NewThreadPublisher(session, cfg.Discord.ThreadsPerMinute, logger)
	}

	report := api.NewOrchestrator(settings, creator, stdout, logger).Run(ctx, tournament)
	if len(report.Outcomes) > 0 || report.Err != nil {
		fmt.Fprintln(stderr, report.Summary())
	}
	if report.Failed() {
		return errRunFailed
	}
	return nil
}

// newLogger creates the text logger used across the run. Debug raises the level so request and match details show
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
