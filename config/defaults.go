/* defaults.go
 * Default values used when the config file leaves a setting out
 */

package config

const (
	DefaultConfigPath = "config.yaml"

	DefaultAPIBaseURL = "https://api.challonge.com/v2.1"
	DefaultTokenURL   = "https://api.challonge.com/oauth/token"
	DefaultPathSuffix = ".json"

	DefaultPage              = 1
	DefaultPerPage           = 25
	DefaultMaxPages          = 50
	DefaultRequestsPerMinute = 120

	DefaultThreadNameTemplate = "{round_label}: {p1_name} vs {p2_name}"
	DefaultMessageTemplate    = "Hi {p1_mention} vs {p2_mention}! {role_mentions}\n" +
		"This is your scheduling thread for {round_label}."

	// DefaultThreadArchiveMinutes is 7 days
	DefaultThreadArchiveMinutes = 10080
)

// ArchiveDurations are the auto archive durations Discord accepts, in minutes
var ArchiveDurations = []int{60, 1440, 4320, 10080}

// MatchStates are the accepted values of challonge.state. "all" and "" mean no filter
var MatchStates = []string{"", "all", "open", "pending", "complete"}
