/* challonge.go
 * Contains the client used to fetch tournament data from the Challonge v2.1 api. Requests are authorised with an
 * OAuth2 client credentials token and paced with a rate limiter
 */

package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tourney-threads/api/shared"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	challongeWebURL = "https://challonge.com"
	errorBodyLimit  = 500
)

// Options configures a Client
type Options struct {
	BaseURL           string
	TokenURL          string
	ClientID          string
	ClientSecret      string
	Scope             string
	PathSuffix        string
	Subdomain         string
	RequestsPerMinute int
	Timeout           time.Duration

	// HTTPClient is used for both token and api requests. Defaults to http.DefaultClient's transport
	HTTPClient *http.Client
}

// Client talks to the Challonge api
type Client struct {
	httpClient *http.Client
	baseURL    string
	pathSuffix string
	subdomain  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Challonge client.
// Preconditions: Receives a context that outlives the client (it is used for token refreshes), the client options
// and a logger (nil uses slog.Default)
// Postconditions: Returns a ready client. No request is made until the first fetch
func NewClient(ctx context.Context, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	base := http.DefaultTransport
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
		if opts.HTTPClient.Transport != nil {
			base = opts.HTTPClient.Transport
		}
	}

	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
		Scopes:       strings.Fields(opts.Scope),
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60.0)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: cc.TokenSource(ctx),
				Base:   &debugTransport{wrappedRT: base, logger: logger},
			},
		},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		pathSuffix: opts.PathSuffix,
		subdomain:  opts.Subdomain,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
	}
}

// Slug returns the api identifier of a tournament, prefixed with the organisation subdomain when one is configured
func (c *Client) Slug(tournament string) string {
	if c.subdomain != "" {
		return c.subdomain + "-" + tournament
	}
	return tournament
}

// MatchURL returns the public link to a match on challonge.com
func (c *Client) MatchURL(tournament string, matchID string) string {
	base := challongeWebURL
	if c.subdomain != "" {
		base = "https://" + c.subdomain + ".challonge.com"
	}
	return fmt.Sprintf("%s/%s/matches/%s", base, tournament, matchID)
}

// FetchMatchesPage fetches one page of a tournament's matches along with the participants the page references.
// Preconditions: Receives the tournament slug, an optional state filter ("" for none), a 1 based page number and
// the page size
// Postconditions: Returns the decoded page or an error describing the failed request
func (c *Client) FetchMatchesPage(ctx context.Context, tournament string, state string, page int, perPage int) (MatchPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	if state != "" {
		params.Set("state", state)
	}

	var payload matchesPayload
	path := fmt.Sprintf("/tournaments/%s/matches%s", url.PathEscape(c.Slug(tournament)), c.pathSuffix)
	if err := c.getJSON(ctx, path, params, &payload); err != nil {
		return MatchPage{}, err
	}

	result := MatchPage{}
	for _, inc := range payload.Included {
		if inc.Type != "participant" {
			continue
		}
		var attrs participantAttributes
		if len(inc.Attributes) > 0 {
			if err := json.Unmarshal(inc.Attributes, &attrs); err != nil {
				return MatchPage{}, fmt.Errorf("decoding participant %s: %w", inc.ID, err)
			}
		}
		result.Participants = append(result.Participants, shared.Participant{ID: string(inc.ID), Name: participantName(attrs)})
	}

	for _, m := range payload.Data {
		match, err := c.parseMatch(tournament, m)
		if err != nil {
			return MatchPage{}, err
		}
		result.Matches = append(result.Matches, match)
	}

	if payload.Links != nil {
		result.HasNextPage = payload.Links.Next != ""
	} else {
		result.HasNextPage = len(payload.Data) >= perPage && perPage > 0
	}
	return result, nil
}

func (c *Client) parseMatch(tournament string, m resource) (shared.Match, error) {
	var attrs matchAttributes
	if len(m.Attributes) > 0 {
		if err := json.Unmarshal(m.Attributes, &attrs); err != nil {
			return shared.Match{}, fmt.Errorf("decoding match %s: %w", m.ID, err)
		}
	}

	round := 0
	if attrs.Round != nil {
		r, err := attrs.Round.Int64()
		if err != nil {
			return shared.Match{}, fmt.Errorf("match %s has invalid round %q: %w", m.ID, attrs.Round.String(), err)
		}
		round = int(r)
	}

	id := string(m.ID)
	return shared.Match{
		ID:      id,
		Round:   round,
		State:   shared.MatchState(attrs.State),
		Player1: participantRef(m.Relationships["player1"]),
		Player2: participantRef(m.Relationships["player2"]),
		URL:     c.MatchURL(tournament, id),
	}, nil
}

func participantRef(rel relationship) *shared.Participant {
	if rel.Data == nil || rel.Data.ID == "" {
		return nil
	}
	return &shared.Participant{ID: string(rel.Data.ID)}
}

// ProbeStageType reads the tournament's settings to work out the stage format.
// Preconditions: Receives the tournament slug
// Postconditions: Returns "Swiss" or "Groups" when a group stage is enabled or underway, otherwise "Elimination".
// Returns an error when the tournament could not be read
func (c *Client) ProbeStageType(ctx context.Context, tournament string) (string, error) {
	var payload tournamentPayload
	path := fmt.Sprintf("/tournaments/%s%s", url.PathEscape(c.Slug(tournament)), c.pathSuffix)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return "", fmt.Errorf("stage probe: %w", err)
	}

	attrs := payload.Data.Attributes
	stageType := ""
	if attrs.GroupStageOptions != nil {
		stageType = strings.ToLower(attrs.GroupStageOptions.StageType)
	}
	if strings.Contains(strings.ToLower(attrs.State), "group") || attrs.GroupStageEnabled {
		if stageType == "swiss" {
			return "Swiss", nil
		}
		return "Groups", nil
	}
	return "Elimination", nil
}

// getJSON performs a rate limited GET against the api and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Authorization-Type", "v2")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Content-Type", "application/vnd.api+json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		text := string(body)
		if len(text) > errorBodyLimit {
			text = text[:errorBodyLimit]
		}
		return &StatusError{Path: path, StatusCode: response.StatusCode, Body: text}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// StatusError is returned when the api answers with a non 200 status
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s failed (%d): %s", e.Path, e.StatusCode, e.Body)
}
