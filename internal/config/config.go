// Package config loads lift-goat defaults from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/headline-goat/lift-goat/internal/revenue"
	"github.com/headline-goat/lift-goat/internal/stats"
)

// Config holds the scalar assumptions every command starts from.
type Config struct {
	Alpha         float64
	Power         float64
	Tails         stats.Tails
	TargetRevenue float64
	SpendCap      float64
	MonthsPerYear float64
	MaxSampleSize float64
	DBPath        string
	LogLevel      slog.Level
}

// Default returns the built-in assumptions.
func Default() *Config {
	return &Config{
		Alpha:         0.05,
		Power:         0.8,
		Tails:         stats.TwoSided,
		TargetRevenue: 100000,
		SpendCap:      100000,
		MonthsPerYear: revenue.DefaultMonthsPerYear,
		MaxSampleSize: stats.DefaultMaxSampleSize,
		DBPath:        "./hlg.db",
		LogLevel:      slog.LevelInfo,
	}
}

// Load reads an optional .env file (envFile may be empty), then LG_*
// variables over the defaults, and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var err error

	if cfg.Alpha, err = getEnvFloat("LG_ALPHA", cfg.Alpha); err != nil {
		return nil, err
	}
	if cfg.Power, err = getEnvFloat("LG_POWER", cfg.Power); err != nil {
		return nil, err
	}
	if v := os.Getenv("LG_TAILS"); v != "" {
		if cfg.Tails, err = stats.ParseTails(v); err != nil {
			return nil, fmt.Errorf("LG_TAILS: %w", err)
		}
	}
	if cfg.TargetRevenue, err = getEnvFloat("LG_TARGET_REVENUE", cfg.TargetRevenue); err != nil {
		return nil, err
	}
	if cfg.SpendCap, err = getEnvFloat("LG_SPEND_CAP", cfg.SpendCap); err != nil {
		return nil, err
	}
	if cfg.MonthsPerYear, err = getEnvFloat("LG_MONTHS_PER_YEAR", cfg.MonthsPerYear); err != nil {
		return nil, err
	}
	if cfg.MaxSampleSize, err = getEnvFloat("LG_MAX_SAMPLE_SIZE", cfg.MaxSampleSize); err != nil {
		return nil, err
	}
	cfg.DBPath = getEnvOrDefault("LG_DB_PATH", cfg.DBPath)
	if v := os.Getenv("LG_LOG_LEVEL"); v != "" {
		if cfg.LogLevel, err = ParseLevel(v); err != nil {
			return nil, fmt.Errorf("LG_LOG_LEVEL: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-domain assumptions.
func (c *Config) Validate() error {
	if !(c.Alpha > 0 && c.Alpha < 1) {
		return fmt.Errorf("alpha must be in (0,1), got %g", c.Alpha)
	}
	if !(c.Power > 0 && c.Power < 1) {
		return fmt.Errorf("power must be in (0,1), got %g", c.Power)
	}
	if c.Tails != stats.OneSided && c.Tails != stats.TwoSided {
		return fmt.Errorf("tails must be one or two, got %s", c.Tails)
	}
	if c.SpendCap < 0 {
		return fmt.Errorf("spend cap must be >= 0, got %g", c.SpendCap)
	}
	if c.MonthsPerYear <= 0 {
		return fmt.Errorf("months per year must be > 0, got %g", c.MonthsPerYear)
	}
	if c.MaxSampleSize <= 0 || c.MaxSampleSize > stats.SampleSizeLimit {
		return fmt.Errorf("max sample size must be in (0, %d], got %g", int64(stats.SampleSizeLimit), c.MaxSampleSize)
	}
	return nil
}

// ParseLevel maps debug/info/warn/error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, value)
	}
	return f, nil
}
