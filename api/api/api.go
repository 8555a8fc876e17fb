/* api.go
 * This file contains the public methods for interacting with this package. Callers load a tournament through the API
 * and hand it to an Orchestrator; the sub packages for fetching and rendering should not be called directly
 */

package api

import (
	"context"
	"log/slog"
	"time"

	"tourney-threads/api/external"
	"tourney-threads/api/logic"
	"tourney-threads/api/shared"
	"tourney-threads/config"

	"golang.org/x/sync/errgroup"
)

const requestTimeout = 30 * time.Second

// MatchLister returns every match of a tournament
type MatchLister interface {
	FetchAll(ctx context.Context, opts external.FetchOptions) ([]shared.Match, error)
}

// StageProber reads the stage type from tournament metadata
type StageProber interface {
	ProbeStageType(ctx context.Context, tournament string) (string, error)
}

// Tournament is everything fetched for one run
type Tournament struct {
	Name    string
	Matches []shared.Match
	Stage   logic.StageType // StageUnknown when the metadata gave no hint
}

// API loads tournaments
type API struct {
	Matches MatchLister
	Prober  StageProber
	Options external.FetchOptions
	logger  *slog.Logger
}

// NewAPI creates an API reading the tournament named in the config from Challonge
// Preconditions: Receives a context that outlives the API, a validated config and a logger
// Postconditions: Returns a ready API. No request is made until Load
func NewAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	client := external.NewClient(ctx, external.Options{
		BaseURL:           cfg.Challonge.BaseURL,
		TokenURL:          cfg.OAuth2.TokenURL,
		ClientID:          cfg.OAuth2.ClientID,
		ClientSecret:      cfg.OAuth2.ClientSecret,
		Scope:             cfg.OAuth2.Scope,
		PathSuffix:        cfg.OAuth2.PathSuffix,
		Subdomain:         cfg.Challonge.Subdomain,
		RequestsPerMinute: cfg.Challonge.RequestsPerMinute,
		Timeout:           requestTimeout,
	}, logger)

	return &API{
		Matches: external.NewFetcher(client, logger),
		Prober:  client,
		Options: external.FetchOptions{
			Tournament: cfg.Challonge.Tournament,
			State:      cfg.Challonge.State,
			StartPage:  cfg.Challonge.Page,
			PerPage:    cfg.Challonge.PerPage,
			MaxPages:   cfg.Challonge.MaxPages,
		},
		logger: logger,
	}
}

// Load fetches the tournament's matches and probes its stage type at the same time.
// Preconditions: Receives a context used for every request
// Postconditions: Returns the tournament, or the *external.FetchError that stopped the match fetch. A failed probe is
// logged and leaves the stage unknown
func (a *API) Load(ctx context.Context) (Tournament, error) {
	t := Tournament{Name: a.Options.Tournament}
	logger := a.logger
	if logger == nil {
		logger = slog.Default()
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.Prober != nil {
		g.Go(func() error {
			name, err := a.Prober.ProbeStageType(gctx, a.Options.Tournament)
			if err != nil {
				logger.Warn("could not determine stage type from tournament metadata", "error", err)
				return nil
			}
			t.Stage = logic.ParseStageType(name)
			logger.Debug("stage type probed", "stage", t.Stage.String())
			return nil
		})
	}
	g.Go(func() error {
		matches, err := a.Matches.FetchAll(gctx, a.Options)
		if err != nil {
			return err
		}
		t.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return Tournament{}, err
	}
	logger.Info("matches fetched", "tournament", t.Name, "matches", len(t.Matches))
	return t, nil
}
