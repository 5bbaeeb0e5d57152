package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latoulicious/ideaboard/pkg/classify"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseServerChannels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want classify.Allowlist
	}{
		{
			name: "empty",
			raw:  "",
			want: classify.Allowlist{},
		},
		{
			name: "single server",
			raw:  "111:222,333",
			want: classify.Allowlist{"111": {"222", "333"}},
		},
		{
			name: "multiple servers with whitespace",
			raw:  " 111 : 222 , 333 ; 444:555 ",
			want: classify.Allowlist{"111": {"222", "333"}, "444": {"555"}},
		},
		{
			name: "malformed entries are skipped",
			raw:  "111;:222;333:;444:555,,",
			want: classify.Allowlist{"444": {"555"}},
		},
		{
			name: "later entry wins",
			raw:  "1:a;1:b",
			want: classify.Allowlist{"1": {"b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseServerChannels(tt.raw))
		})
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{"DISCORD_TOKEN": "token"}))
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Empty(t, cfg.Channels)
	assert.True(t, cfg.ThreadsEnabled)
	assert.Equal(t, float64(0), cfg.ReactionRate)
	assert.Equal(t, 1, cfg.ReactionBurst)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.CronEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DISCORD_TOKEN":        "token",
		"SERVER_CHANNELS":      "g1:c1,c2",
		"THREADS_ENABLED":      "false",
		"REACTION_RATE":        "4",
		"REACTION_BURST":       "2",
		"REACTION_CONCURRENCY": "3",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "json",
		"CRON_ENABLED":         "0",
		"PRESENCE_SCHEDULE":    "@every 1m",
	}))
	require.NoError(t, err)

	assert.Equal(t, classify.Allowlist{"g1": {"c1", "c2"}}, cfg.Channels)
	assert.False(t, cfg.ThreadsEnabled)
	assert.Equal(t, 4.0, cfg.ReactionRate)
	assert.Equal(t, 2, cfg.ReactionBurst)
	assert.Equal(t, 3, cfg.ReactionConcurrency)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.CronEnabled)
	assert.Equal(t, "@every 1m", cfg.PresenceSchedule)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"missing token", map[string]string{}, ErrDiscordTokenNotSet},
		{"blank token", map[string]string{"DISCORD_TOKEN": "  "}, ErrDiscordTokenNotSet},
		{"bad bool", map[string]string{"DISCORD_TOKEN": "t", "THREADS_ENABLED": "maybe"}, ErrInvalidValue},
		{"bad rate", map[string]string{"DISCORD_TOKEN": "t", "REACTION_RATE": "fast"}, ErrInvalidValue},
		{"negative rate", map[string]string{"DISCORD_TOKEN": "t", "REACTION_RATE": "-1"}, ErrInvalidValue},
		{"zero burst", map[string]string{"DISCORD_TOKEN": "t", "REACTION_BURST": "0"}, ErrInvalidValue},
		{"bad log level", map[string]string{"DISCORD_TOKEN": "t", "LOG_LEVEL": "loud"}, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromEnv(envMap(tt.env))
			assert.Nil(t, cfg)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("DISCORD_TOKEN=from-file\nSERVER_CHANNELS=g:c\n"), 0o600))

	// godotenv does not override variables that are already set
	t.Setenv("DISCORD_TOKEN", "")
	require.NoError(t, os.Unsetenv("DISCORD_TOKEN"))
	t.Setenv("SERVER_CHANNELS", "")
	require.NoError(t, os.Unsetenv("SERVER_CHANNELS"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.DiscordToken)
	assert.Equal(t, classify.Allowlist{"g": {"c"}}, cfg.Channels)
}

func TestLoadConfig_MissingEnvFileIsFine(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "from-env")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DiscordToken)
}
