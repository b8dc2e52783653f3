// Package config holds the settings the eclipse engine and its
// collaborators are built from. A Config is loaded once and not
// modified afterwards.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/echoflaresat/eclipses/eclipse"
)

const dateLayout = "2006-01-02"

type Config struct {
	Radii eclipse.Radii `toml:"radii"`

	// Start and End bound the candidate search, as RFC 3339 timestamps
	// or plain dates. They are taken as Terrestrial Time.
	Start string `toml:"start"`
	End   string `toml:"end"`

	// BracketDays is the half-width of the window searched around each
	// new moon.
	BracketDays float64 `toml:"bracket_days"`

	Workers    int    `toml:"workers"`
	CacheSize  int    `toml:"cache_size"`
	LogLevel   string `toml:"log_level"`
	CrossCheck bool   `toml:"cross_check"`
}

// Default returns the built-in configuration: four years from 2018.
func Default() Config {
	return Config{
		Radii:       eclipse.DefaultRadii(),
		Start:       "2018-01-01",
		End:         "2022-01-01",
		BracketDays: 1,
		CacheSize:   4096,
		LogLevel:    "info",
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the radii, the time range and the numeric settings.
func (c Config) Validate() error {
	if err := c.Radii.Validate(); err != nil {
		return err
	}
	start, end, err := c.Range()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("end %s is not after start %s", c.End, c.Start)
	}
	if c.BracketDays <= 0 || c.BracketDays > 7 {
		return fmt.Errorf("bracket_days %g outside (0, 7]", c.BracketDays)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size %d must be positive", c.CacheSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d must not be negative", c.Workers)
	}
	return nil
}

// Range parses Start and End.
func (c Config) Range() (time.Time, time.Time, error) {
	start, err := ParseTime(c.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err := ParseTime(c.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

// Bracket returns BracketDays as a duration.
func (c Config) Bracket() time.Duration {
	return time.Duration(c.BracketDays * float64(24*time.Hour))
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseTime accepts RFC 3339 timestamps and YYYY-MM-DD dates (UTC midnight).
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
