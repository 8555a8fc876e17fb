/* config.go
 * Contains the run configuration: loading it from a YAML file, applying environment overrides and validating it.
 * A Config is built once per run and treated as read only afterwards
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ID is a Discord snowflake. The config file may write it as a number or a string
type ID string

// UnmarshalYAML accepts any scalar
func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a Discord id, got a %s", value.Line, kindName(value.Kind))
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ID(strings.TrimSpace(value.Value))
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	default:
		return "non-scalar value"
	}
}

type OAuth2Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
	Scope        string `yaml:"scope"`
	PathSuffix   string `yaml:"path_suffix"`
}

type ChallongeConfig struct {
	Tournament        string `yaml:"tournament"`
	Subdomain         string `yaml:"subdomain"`
	BaseURL           string `yaml:"base_url"`
	Page              int    `yaml:"page"`
	PerPage           int    `yaml:"per_page"`
	MaxPages          int    `yaml:"max_pages"`
	State             string `yaml:"state"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type DiscordConfig struct {
	BotToken             string `yaml:"bot_token"`
	ChannelID            ID     `yaml:"channel_id"`
	ThreadArchiveMinutes int    `yaml:"thread_archive_minutes"`
	RoleIDsToTag         []ID   `yaml:"role_ids_to_tag"`
	ThreadsPerMinute     int    `yaml:"threads_per_minute"`
}

// Config is everything a run needs
type Config struct {
	OAuth2             OAuth2Config    `yaml:"oauth2"`
	Challonge          ChallongeConfig `yaml:"challonge"`
	Discord            DiscordConfig   `yaml:"discord"`
	RunnerMap          map[string]ID   `yaml:"runner_map"`
	ThreadNameTemplate string          `yaml:"thread_name_template"`
	MessageTemplate    string          `yaml:"message_template"`
	RoundLabelTemplate string          `yaml:"round_label_template"`
}

// LookupFunc reads an environment variable
type LookupFunc func(key string) (string, bool)

// Load reads the config file at path and applies overrides from the process environment. A .env file in the
// working directory is loaded first when present; variables already set in the environment win over it
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return LoadWithLookup(path, os.LookupEnv)
}

// LoadWithLookup reads and decodes the config file, fills in defaults and applies environment overrides.
// Preconditions: Receives the path to a YAML file and a function used to read environment variables
// Postconditions: Returns the config, or an error if the file cannot be read or decoded
func LoadWithLookup(path string, lookup LookupFunc) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML config data and fills in defaults
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.OAuth2.TokenURL == "" {
		c.OAuth2.TokenURL = DefaultTokenURL
	}
	if c.OAuth2.PathSuffix == "" {
		c.OAuth2.PathSuffix = DefaultPathSuffix
	}
	if c.Challonge.BaseURL == "" {
		c.Challonge.BaseURL = DefaultAPIBaseURL
	}
	if c.Challonge.Page == 0 {
		c.Challonge.Page = DefaultPage
	}
	if c.Challonge.PerPage == 0 {
		c.Challonge.PerPage = DefaultPerPage
	}
	if c.Challonge.MaxPages == 0 {
		c.Challonge.MaxPages = DefaultMaxPages
	}
	if c.Challonge.RequestsPerMinute == 0 {
		c.Challonge.RequestsPerMinute = DefaultRequestsPerMinute
	}
	c.Challonge.State = strings.ToLower(strings.TrimSpace(c.Challonge.State))
	if c.Discord.ThreadArchiveMinutes == 0 {
		c.Discord.ThreadArchiveMinutes = DefaultThreadArchiveMinutes
	}
	if strings.TrimSpace(c.ThreadNameTemplate) == "" {
		c.ThreadNameTemplate = DefaultThreadNameTemplate
	}
	if strings.TrimSpace(c.MessageTemplate) == "" {
		c.MessageTemplate = DefaultMessageTemplate
	}
}

// Validate checks the settings needed to read the tournament. Discord settings are checked by ValidateDiscord
func (c *Config) Validate() error {
	var errs []error
	if c.OAuth2.ClientID == "" {
		errs = append(errs, errors.New("missing required oauth2.client_id in config"))
	}
	if c.OAuth2.ClientSecret == "" {
		errs = append(errs, errors.New("missing required oauth2.client_secret in config"))
	}
	if strings.TrimSpace(c.Challonge.Tournament) == "" {
		errs = append(errs, errors.New("missing required challonge.tournament in config"))
	}
	if !slices.Contains(MatchStates, c.Challonge.State) {
		errs = append(errs, fmt.Errorf("challonge.state must be one of open, pending, complete or all, got %q", c.Challonge.State))
	}
	if c.Challonge.Page < 1 {
		errs = append(errs, fmt.Errorf("challonge.page must be at least 1, got %d", c.Challonge.Page))
	}
	if c.Challonge.PerPage < 1 {
		errs = append(errs, fmt.Errorf("challonge.per_page must be at least 1, got %d", c.Challonge.PerPage))
	}
	if c.Challonge.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("challonge.max_pages must be at least 1, got %d", c.Challonge.MaxPages))
	}
	if c.Challonge.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("challonge.requests_per_minute cannot be negative"))
	}
	return errors.Join(errs...)
}

// ValidateDiscord checks the settings needed to create threads. Dry runs skip it
func (c *Config) ValidateDiscord() error {
	var errs []error
	if c.Discord.BotToken == "" {
		errs = append(errs, errors.New("missing required discord.bot_token in config"))
	}
	if c.Discord.ChannelID == "" {
		errs = append(errs, errors.New("missing required discord.channel_id in config"))
	}
	if c.Discord.ThreadsPerMinute < 0 {
		errs = append(errs, errors.New("discord.threads_per_minute cannot be negative"))
	}
	return errors.Join(errs...)
}

// WithTournament returns a copy of the config reading a different tournament. An empty slug returns the config as is
func (c *Config) WithTournament(slug string) *Config {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return c
	}
	copied := *c
	copied.Challonge.Tournament = slug
	return &copied
}

// ArchiveMinutes returns the configured auto archive duration, or the default when Discord would reject it
func (c *Config) ArchiveMinutes() int {
	if slices.Contains(ArchiveDurations, c.Discord.ThreadArchiveMinutes) {
		return c.Discord.ThreadArchiveMinutes
	}
	return DefaultThreadArchiveMinutes
}

// RoleIDs returns the roles to tag in each opening message
func (c *Config) RoleIDs() []string {
	ids := make([]string, 0, len(c.Discord.RoleIDsToTag))
	for _, id := range c.Discord.RoleIDsToTag {
		if id != "" {
			ids = append(ids, string(id))
		}
	}
	return ids
}

// Runners returns a copy of the runner map as participant name -> Discord user id
func (c *Config) Runners() map[string]string {
	runners := make(map[string]string, len(c.RunnerMap))
	for name, id := range c.RunnerMap {
		runners[name] = string(id)
	}
	return runners
}
