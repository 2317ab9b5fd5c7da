// config/config.go - Platform configuration (YAML file + environment overrides)
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all platform tunables. It is loaded once at startup and
// passed explicitly into every service constructor.
type Config struct {
	Daily        DailyConfig       `yaml:"daily"`
	Streaks      StreakConfig      `yaml:"streaks"`
	Rewards      RewardConfig      `yaml:"rewards"`
	Leaderboards LeaderboardConfig `yaml:"leaderboards"`
	Sessions     SessionConfig     `yaml:"sessions"`
	Content      ContentConfig     `yaml:"content"`
	Analytics    AnalyticsConfig   `yaml:"analytics"`
	Games        []GameConfig      `yaml:"games"`

	loc *time.Location
}

// DailyConfig controls the daily challenge cycle.
type DailyConfig struct {
	Timezone          string `yaml:"timezone"`
	ResetHour         int    `yaml:"reset_hour"`
	GenerateAheadDays int    `yaml:"generate_ahead_days"`
}

// StreakConfig controls streak continuation rules.
type StreakConfig struct {
	GracePeriodHours int   `yaml:"grace_period_hours"`
	InitialFreezes   int   `yaml:"initial_freezes"`
	MaxFreezes       int   `yaml:"max_freezes"`
	Milestones       []int `yaml:"milestones"`
}

// RewardConfig controls the hint economy.
type RewardConfig struct {
	InitialHints       int            `yaml:"initial_hints"`
	HintsPerCompletion int            `yaml:"hints_per_completion"`
	HintsPerMilestone  int            `yaml:"hints_per_milestone"`
	HintCosts          map[string]int `yaml:"hint_costs"`
}

// LeaderboardConfig controls leaderboard display and caching.
type LeaderboardConfig struct {
	DisplayLimit    int `yaml:"display_limit"`
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// SessionConfig controls background session hygiene.
type SessionConfig struct {
	StaleTimeoutMinutes int `yaml:"stale_timeout_minutes"`
	GuestRetentionDays  int `yaml:"guest_retention_days"`
}

// ContentConfig controls LLM puzzle generation.
type ContentConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// AnalyticsConfig controls the optional Kafka event stream.
// Publishing is disabled when no brokers are configured.
type AnalyticsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// GameConfig is one entry of the seeded games catalog.
type GameConfig struct {
	Slug           string `yaml:"slug"`
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Description    string `yaml:"description"`
	Icon           string `yaml:"icon"`
	DailyEnabled   bool   `yaml:"daily_enabled"`
	HasLeaderboard bool   `yaml:"has_leaderboard"`
}

// Load reads a YAML config file, expanding ${ENV_VAR} references, and
// fills in defaults for anything left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.resolveLocation(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault returns defaults when the config file is absent.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default()
	}
	return Load(path)
}

// Default returns a fully-populated default configuration.
func Default() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	if err := cfg.resolveLocation(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Daily.Timezone == "" {
		c.Daily.Timezone = "America/Denver"
	}
	if c.Daily.GenerateAheadDays == 0 {
		c.Daily.GenerateAheadDays = 7
	}

	if c.Streaks.GracePeriodHours == 0 {
		c.Streaks.GracePeriodHours = 12
	}
	if c.Streaks.InitialFreezes == 0 {
		c.Streaks.InitialFreezes = 1
	}
	if c.Streaks.MaxFreezes == 0 {
		c.Streaks.MaxFreezes = 5
	}
	if len(c.Streaks.Milestones) == 0 {
		c.Streaks.Milestones = []int{7, 30, 100, 365}
	}

	if c.Rewards.InitialHints == 0 {
		c.Rewards.InitialHints = 3
	}
	if c.Rewards.HintsPerMilestone == 0 {
		c.Rewards.HintsPerMilestone = 2
	}
	if c.Rewards.HintCosts == nil {
		c.Rewards.HintCosts = map[string]int{
			"reveal_letter": 1,
			"reveal_word":   2,
			"skip_puzzle":   3,
		}
	}

	if c.Leaderboards.DisplayLimit == 0 {
		c.Leaderboards.DisplayLimit = 100
	}
	if c.Leaderboards.CacheTTLSeconds == 0 {
		c.Leaderboards.CacheTTLSeconds = 300
	}

	if c.Sessions.StaleTimeoutMinutes == 0 {
		c.Sessions.StaleTimeoutMinutes = 360
	}
	if c.Sessions.GuestRetentionDays == 0 {
		c.Sessions.GuestRetentionDays = 90
	}

	if c.Content.Model == "" {
		c.Content.Model = "claude-sonnet-4-20250514"
	}
	if c.Content.MaxTokens == 0 {
		c.Content.MaxTokens = 2048
	}
	if c.Content.Temperature == 0 {
		c.Content.Temperature = 0.8
	}
	if c.Content.APIKey == "" {
		c.Content.APIKey = os.Getenv("CLAUDE_API_KEY")
	}

	if c.Analytics.Topic == "" {
		c.Analytics.Topic = "gameplatform.events"
	}

	if len(c.Games) == 0 {
		c.Games = []GameConfig{
			{
				Slug:           "decode_daily",
				Name:           "Decode Daily",
				Type:           "cryptogram",
				Description:    "Crack the cipher to reveal a famous quote",
				Icon:           "🔐",
				DailyEnabled:   true,
				HasLeaderboard: true,
			},
			{
				Slug:           "stack_sort",
				Name:           "Stack & Sort",
				Type:           "sort_puzzle",
				Description:    "Sort the colors into matching stacks",
				Icon:           "🎨",
				DailyEnabled:   true,
				HasLeaderboard: true,
			},
			{
				Slug:           "number_crunch",
				Name:           "Number Crunch",
				Type:           "math_block",
				Description:    "Place blocks to hit the target sums",
				Icon:           "🔢",
				DailyEnabled:   true,
				HasLeaderboard: true,
			},
		}
	}
}

func (c *Config) resolveLocation() error {
	loc, err := time.LoadLocation(c.Daily.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Daily.Timezone, err)
	}
	c.loc = loc
	return nil
}

// Location returns the platform timezone. All day-boundary math
// (daily challenges, streaks, leaderboard periods) uses this location.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		c.loc = time.UTC
	}
	return c.loc
}

// HintCost returns the hint cost for the given hint type, defaulting to 1
// for unknown types.
func (c *Config) HintCost(hintType string) int {
	if cost, ok := c.Rewards.HintCosts[hintType]; ok {
		return cost
	}
	return 1
}

// CacheTTL returns the leaderboard cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Leaderboards.CacheTTLSeconds) * time.Second
}

// StaleTimeout returns how long a session may sit untouched before the
// cleanup worker abandons it.
func (c SessionConfig) StaleTimeout() time.Duration {
	return time.Duration(c.StaleTimeoutMinutes) * time.Minute
}

// GuestRetention returns how long idle guest accounts are kept.
func (c SessionConfig) GuestRetention() time.Duration {
	return time.Duration(c.GuestRetentionDays) * 24 * time.Hour
}
