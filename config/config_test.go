package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "America/Denver", cfg.Daily.Timezone)
	assert.Equal(t, 0, cfg.Daily.ResetHour)
	assert.Equal(t, 7, cfg.Daily.GenerateAheadDays)
	assert.Equal(t, 12, cfg.Streaks.GracePeriodHours)
	assert.Equal(t, 1, cfg.Streaks.InitialFreezes)
	assert.Equal(t, 5, cfg.Streaks.MaxFreezes)
	assert.Equal(t, []int{7, 30, 100, 365}, cfg.Streaks.Milestones)
	assert.Equal(t, 3, cfg.Rewards.InitialHints)
	assert.Equal(t, 0, cfg.Rewards.HintsPerCompletion)
	assert.Equal(t, 2, cfg.Rewards.HintsPerMilestone)
	assert.Equal(t, 100, cfg.Leaderboards.DisplayLimit)
	assert.Equal(t, 300, cfg.Leaderboards.CacheTTLSeconds)
	assert.Len(t, cfg.Games, 3)
	assert.Equal(t, "America/Denver", cfg.Location().String())
}

func TestHintCost(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.HintCost("reveal_letter"))
	assert.Equal(t, 2, cfg.HintCost("reveal_word"))
	assert.Equal(t, 3, cfg.HintCost("skip_puzzle"))
	assert.Equal(t, 1, cfg.HintCost("something_else"))
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TEST_CLAUDE_KEY", "sk-test-123")

	raw := `
daily:
  timezone: UTC
  reset_hour: 4
streaks:
  grace_period_hours: 6
content:
  api_key: ${TEST_CLAUDE_KEY}
games:
  - slug: decode_daily
    name: Decode Daily
    type: cryptogram
    daily_enabled: true
    has_leaderboard: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Daily.Timezone)
	assert.Equal(t, 4, cfg.Daily.ResetHour)
	assert.Equal(t, 6, cfg.Streaks.GracePeriodHours)
	assert.Equal(t, "sk-test-123", cfg.Content.APIKey)
	// Unset sections still get defaults.
	assert.Equal(t, 5, cfg.Streaks.MaxFreezes)
	assert.Equal(t, 300, cfg.Leaderboards.CacheTTLSeconds)
	assert.Len(t, cfg.Games, 1)
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", cfg.Daily.Timezone)
}
