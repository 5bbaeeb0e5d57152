package config

import (
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/latoulicious/ideaboard/pkg/classify"
	"github.com/latoulicious/ideaboard/pkg/logging"
)

var (
	ErrDiscordTokenNotSet = errors.New("DISCORD_TOKEN is not set")
	ErrInvalidValue       = errors.New("invalid configuration value")
)

// Config holds everything the bot reads from the environment
type Config struct {
	DiscordToken string

	// Channels lists the monitored channels per server
	Channels classify.Allowlist

	// ThreadsEnabled starts a discussion thread on every idea and question
	ThreadsEnabled bool

	// ReactionRate is the number of reaction calls per second, 0 for no pacing
	ReactionRate  float64
	ReactionBurst int
	// ReactionConcurrency caps in-flight reaction calls per message, 0 for no cap
	ReactionConcurrency int

	Logging logging.Config

	CronEnabled      bool
	PresenceSchedule string
	StatsSchedule    string
}

// Default returns a config with defaults for everything except the token
func Default() *Config {
	return &Config{
		Channels:         classify.Allowlist{},
		ThreadsEnabled:   true,
		ReactionRate:     0,
		ReactionBurst:    1,
		Logging:          logging.DefaultConfig(),
		CronEnabled:      true,
		PresenceSchedule: "0 */5 * * * *",
		StatsSchedule:    "0 0 * * * *",
	}
}

// LoadConfig reads an optional .env file and then the process environment
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()

	cfg.DiscordToken = strings.TrimSpace(getenv("DISCORD_TOKEN"))
	if cfg.DiscordToken == "" {
		return nil, ErrDiscordTokenNotSet
	}

	cfg.Channels = ParseServerChannels(getenv("SERVER_CHANNELS"))

	var problems []string
	parseBool := func(key string, dst *bool) {
		if v := getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s=%q is not a boolean", key, v))
				return
			}
			*dst = b
		}
	}
	parseInt := func(key string, dst *int) {
		if v := getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s=%q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}

	parseBool("THREADS_ENABLED", &cfg.ThreadsEnabled)
	parseBool("CRON_ENABLED", &cfg.CronEnabled)
	parseInt("REACTION_BURST", &cfg.ReactionBurst)
	parseInt("REACTION_CONCURRENCY", &cfg.ReactionConcurrency)

	if v := getenv("REACTION_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("REACTION_RATE=%q is not a number", v))
		} else {
			cfg.ReactionRate = f
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := getenv("LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
	if v := getenv("PRESENCE_SCHEDULE"); v != "" {
		cfg.PresenceSchedule = v
	}
	if v := getenv("STATS_SCHEDULE"); v != "" {
		cfg.StatsSchedule = v
	}

	if len(problems) > 0 {
		return nil, errors.Wrapf(ErrInvalidValue, "%s", strings.Join(problems, "; "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	var problems []string

	if c.DiscordToken == "" {
		return ErrDiscordTokenNotSet
	}
	if c.ReactionRate < 0 {
		problems = append(problems, "REACTION_RATE must be >= 0")
	}
	if c.ReactionBurst < 1 {
		problems = append(problems, "REACTION_BURST must be >= 1")
	}
	if c.ReactionConcurrency < 0 {
		problems = append(problems, "REACTION_CONCURRENCY must be >= 0")
	}
	if err := c.Logging.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.CronEnabled && (c.PresenceSchedule == "" || c.StatsSchedule == "") {
		problems = append(problems, "cron schedules must not be empty when CRON_ENABLED is set")
	}

	if len(problems) > 0 {
		return errors.Wrapf(ErrInvalidValue, "%s", strings.Join(problems, "; "))
	}
	return nil
}

// ParseServerChannels parses "server:chan1,chan2;server2:chan3". Entries
// without a server id or without channels are skipped and whitespace around
// ids is trimmed. A later entry for the same server replaces the earlier one.
func ParseServerChannels(raw string) classify.Allowlist {
	allow := classify.Allowlist{}
	if strings.TrimSpace(raw) == "" {
		return allow
	}

	for _, def := range strings.Split(raw, ";") {
		parts := strings.Split(def, ":")
		if len(parts) < 2 {
			continue
		}
		serverID := strings.TrimSpace(parts[0])
		if serverID == "" || strings.TrimSpace(parts[1]) == "" {
			continue
		}

		var channels []string
		for _, id := range strings.Split(parts[1], ",") {
			if id = strings.TrimSpace(id); id != "" {
				channels = append(channels, id)
			}
		}
		allow[serverID] = channels
	}

	return allow
}
