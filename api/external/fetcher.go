/* fetcher.go
 * Contains the Fetcher which walks every page of a tournament's match listing and returns a single ordered match
 * list with participants resolved
 */

package external

import (
	"context"
	"fmt"
	"log/slog"

	"tourney-threads/api/shared"
)

// DefaultMaxPages caps pagination when FetchOptions.MaxPages is not set
const DefaultMaxPages = 50

// MatchSource is the page level tournament api consumed by the Fetcher
type MatchSource interface {
	FetchMatchesPage(ctx context.Context, tournament string, state string, page int, perPage int) (MatchPage, error)
}

// FetchOptions selects what the Fetcher reads
type FetchOptions struct {
	Tournament string
	State      string // "" or "all" for every state
	StartPage  int
	PerPage    int
	MaxPages   int
}

// FetchError is returned when any page of the listing could not be fetched. No partial result is returned with it
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching matches page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher turns a paginated MatchSource into a complete match list
type Fetcher struct {
	source MatchSource
	logger *slog.Logger
}

// NewFetcher creates a Fetcher over a page source
func NewFetcher(source MatchSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{source: source, logger: logger}
}

// FetchAll reads every page of the tournament's matches.
// Preconditions: Receives the fetch options; StartPage and PerPage default to 1 and 25
// Postconditions: Returns the matches in page order then in-page order, with player references replaced by the
// participant records from the listing (a reference to a participant that was never listed becomes nil). Pagination
// stops when the api reports no further page, a page comes back empty, or MaxPages pages were read. Any page failure
// returns a *FetchError
func (f *Fetcher) FetchAll(ctx context.Context, opts FetchOptions) ([]shared.Match, error) {
	page := opts.StartPage
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 {
		perPage = 25
	}
	maxPages := opts.MaxPages
	if maxPages < 1 {
		maxPages = DefaultMaxPages
	}
	state := opts.State
	if state == "all" {
		state = ""
	}

	var matches []shared.Match
	participants := make(map[string]shared.Participant)

	for read := 0; read < maxPages; read++ {
		if err := ctx.Err(); err != nil {
			return nil, &FetchError{Page: page, Err: err}
		}

		result, err := f.source.FetchMatchesPage(ctx, opts.Tournament, state, page, perPage)
		if err != nil {
			return nil, &FetchError{Page: page, Err: err}
		}
		f.logger.Debug("fetched match page", "page", page, "matches", len(result.Matches),
			"participants", len(result.Participants), "has_next", result.HasNextPage)

		matches = append(matches, result.Matches...)
		for _, p := range result.Participants {
			participants[p.ID] = p
		}

		if !result.HasNextPage || len(result.Matches) == 0 {
			break
		}
		if read == maxPages-1 {
			f.logger.Warn("page cap reached, remaining matches were not fetched", "max_pages", maxPages)
		}
		page++
	}

	for i := range matches {
		matches[i].Player1 = f.resolve(matches[i].ID, matches[i].Player1, participants)
		matches[i].Player2 = f.resolve(matches[i].ID, matches[i].Player2, participants)
	}
	return matches, nil
}

func (f *Fetcher) resolve(matchID string, ref *shared.Participant, participants map[string]shared.Participant) *shared.Participant {
	if ref == nil {
		return nil
	}
	p, ok := participants[ref.ID]
	if !ok {
		f.logger.Debug("participant not in listing, treating as undetermined", "match_id", matchID, "participant_id", ref.ID)
		return nil
	}
	return &p
}
