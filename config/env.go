/* env.go
 * Contains the environment overrides applied on top of the config file. Secrets are expected to come from the
 * environment (or a .env file) rather than being committed to config.yaml
 */

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-andiamo/splitter"
)

const (
	EnvClientID     = "CHALLONGE_CLIENT_ID"
	EnvClientSecret = "CHALLONGE_CLIENT_SECRET"
	EnvTournament   = "CHALLONGE_TOURNAMENT"
	EnvBotToken     = "DISCORD_BOT_TOKEN"
	EnvChannelID    = "DISCORD_CHANNEL_ID"
	EnvRoleIDs      = "DISCORD_ROLE_IDS"
	EnvArchive      = "DISCORD_THREAD_ARCHIVE_MINUTES"
	EnvRunnerMap    = "RUNNER_MAP"
)

// applyEnv overrides config values with any non-empty environment variable
func (c *Config) applyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		if lookup == nil {
			return "", false
		}
		value, ok := lookup(key)
		value = strings.TrimSpace(value)
		return value, ok && value != ""
	}

	if v, ok := get(EnvClientID); ok {
		c.OAuth2.ClientID = v
	}
	if v, ok := get(EnvClientSecret); ok {
		c.OAuth2.ClientSecret = v
	}
	if v, ok := get(EnvTournament); ok {
		c.Challonge.Tournament = v
	}
	if v, ok := get(EnvBotToken); ok {
		c.Discord.BotToken = v
	}
	if v, ok := get(EnvChannelID); ok {
		c.Discord.ChannelID = ID(v)
	}
	if v, ok := get(EnvRoleIDs); ok {
		c.Discord.RoleIDsToTag = nil
		for _, id := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			c.Discord.RoleIDsToTag = append(c.Discord.RoleIDsToTag, ID(id))
		}
	}
	if v, ok := get(EnvArchive); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a number of minutes: %w", EnvArchive, err)
		}
		c.Discord.ThreadArchiveMinutes = minutes
	}
	if v, ok := get(EnvRunnerMap); ok {
		runners, err := ParseRunnerMap(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRunnerMap, err)
		}
		if c.RunnerMap == nil {
			c.RunnerMap = make(map[string]ID, len(runners))
		}
		for name, id := range runners {
			c.RunnerMap[name] = id
		}
	}
	return nil
}

// ParseRunnerMap reads runner mappings written as space separated name=id pairs. Names containing spaces are quoted,
// e.g. `"Alice Smith"=111 Bob=222`
// Preconditions: Receives the raw mapping string
// Postconditions: Returns the name -> id map, or an error naming the first malformed entry
func ParseRunnerMap(raw string) (map[string]ID, error) {
	spaceSplitter, err := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	if err != nil {
		return nil, err
	}
	parts, err := spaceSplitter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("splitting runner map: %w", err)
	}

	runners := make(map[string]ID, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.LastIndex(part, "=")
		if eq < 0 {
			return nil, fmt.Errorf("entry %q is not in name=id form", part)
		}
		name := strings.TrimSpace(stripQuotes(part[:eq]))
		id := strings.TrimSpace(stripQuotes(part[eq+1:]))
		if name == "" || id == "" {
			return nil, fmt.Errorf("entry %q is missing a name or id", part)
		}
		runners[name] = ID(id)
	}
	return runners, nil
}

func stripQuotes(s string) string {
	return strings.NewReplacer("\"", "", "“", "", "”", "").Replace(s)
}
