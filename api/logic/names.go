/* names.go
 * Contains the logic for cleaning participant names and turning them into Discord mentions
 */

package logic

import (
	"regexp"
	"strings"

	"tourney-threads/api/shared"

	"github.com/bwmarrin/discordgo"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// TBD is shown in place of a participant that has not been determined yet
const TBD = "TBD"

var invitePendingRe = regexp.MustCompile(`\s*\(invitation pending\)\s*$`)

// CleanRunnerName removes a trailing "(invitation pending)" marker and surrounding whitespace from a participant name.
// Preconditions: Receives the raw name from the tournament service
// Postconditions: Returns the display name
func CleanRunnerName(name string) string {
	return strings.TrimSpace(invitePendingRe.ReplaceAllString(name, ""))
}

// UserMention formats a Discord user mention for the given user id
func UserMention(userID string) string {
	return (&discordgo.User{ID: userID}).Mention()
}

// RoleMention formats a Discord role mention for the given role id
func RoleMention(roleID string) string {
	return (&discordgo.Role{ID: roleID}).Mention()
}

// ResolveParticipant produces the display name and mention text for a participant.
// Preconditions: Receives a participant (nil when not yet determined) and a runner map of name -> Discord user id
// Postconditions: Returns ("TBD", "TBD") for a nil participant. Otherwise returns the cleaned name and either a user
// mention (when the cleaned name, or failing that the raw name, is a runner map key) or the cleaned name as plain text
func ResolveParticipant(p *shared.Participant, runnerMap map[string]string) (string, string) {
	if p == nil {
		return TBD, TBD
	}
	display := CleanRunnerName(p.Name)
	if id := runnerMap[display]; id != "" {
		return display, UserMention(id)
	}
	if id := runnerMap[p.Name]; id != "" {
		return display, UserMention(id)
	}
	return display, display
}

// BuildRoleMentions joins role mentions for each id with a single space. An empty list gives an empty string
func BuildRoleMentions(roleIDs []string) string {
	mentions := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == "" {
			continue
		}
		mentions = append(mentions, RoleMention(id))
	}
	return strings.Join(mentions, " ")
}

// SuggestRunner looks for the runner map key closest to a name that has no exact entry. It is only used for
// diagnostics; mentions are never produced from a fuzzy match.
// Preconditions: Receives a display name and the runner map
// Postconditions: Returns the best ranked key and true, or "" and false when nothing is close
func SuggestRunner(name string, runnerMap map[string]string) (string, bool) {
	if name == "" || name == TBD || len(runnerMap) == 0 {
		return "", false
	}
	if _, ok := runnerMap[name]; ok {
		return "", false
	}

	keys := make([]string, 0, len(runnerMap))
	for k := range runnerMap {
		keys = append(keys, k)
	}

	// Try both directions so "Alice" finds "Alice Smith" and "AliceSmith_" finds "AliceSmith"
	ranks := fuzzy.RankFindNormalizedFold(name, keys)
	for _, k := range keys {
		if fuzzy.MatchNormalizedFold(k, name) {
			ranks = append(ranks, fuzzy.Rank{Source: k, Target: k, Distance: len(name) - len(k)})
		}
	}
	if len(ranks) == 0 {
		return "", false
	}

	best := ranks[0]
	for _, r := range ranks[1:] {
		if abs(r.Distance) < abs(best.Distance) || (abs(r.Distance) == abs(best.Distance) && r.Target < best.Target) {
			best = r
		}
	}
	return best.Target, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
