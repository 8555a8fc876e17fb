/* models.go
 * This file contain the structs that are shared between sub packages: the matches and participants fetched from
 * the tournament service
 */

package shared

// MatchState is the lifecycle state reported by the tournament service for a match
type MatchState string

const (
	MatchOpen     MatchState = "open"
	MatchPending  MatchState = "pending"
	MatchComplete MatchState = "complete"
)

// Participant is a competitor. Name is the raw name from the service and may still carry the
// "(invitation pending)" marker
type Participant struct {
	ID   string
	Name string
}

// Match is a single snapshot of one scheduled or completed contest.
// Round is positive for the winners bracket, negative for the losers bracket. A nil player has not been determined yet
type Match struct {
	ID      string
	Round   int
	State   MatchState
	Player1 *Participant
	Player2 *Participant
	URL     string
}
