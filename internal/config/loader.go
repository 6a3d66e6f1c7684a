package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/lifetracker/internal/logging"
)

// Environment variables read by Load.
const (
	EnvConfigPath   = "LIFETRACKER_CONFIG"
	EnvDBPath       = "LIFETRACKER_DB_PATH"
	EnvLogLevel     = "LIFETRACKER_LOG_LEVEL"
	EnvLogFormat    = "LIFETRACKER_LOG_FORMAT"
	EnvTimezone     = "LIFETRACKER_TIMEZONE"
	EnvHistoryLimit = "LIFETRACKER_HISTORY_LIMIT"
)

// DefaultHistoryLimit is the number of commands kept for undo.
const DefaultHistoryLimit = 50

// Config captures the settings of the tracker.
type Config struct {
	DBPath       string `yaml:"db_path"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	Timezone     string `yaml:"timezone"`
	HistoryLimit int    `yaml:"history_limit"`

	// Location is Timezone resolved by Load.
	Location *time.Location `yaml:"-"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DBPath:       "lifetracker.db",
		LogLevel:     "info",
		LogFormat:    "text",
		Timezone:     "Local",
		HistoryLimit: DefaultHistoryLimit,
		Location:     time.Local,
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by LIFETRACKER_CONFIG, and environment variables, in increasing priority.
//
// Invalid values are collected and reported together.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	invalid := make([]string, 0, 2)

	if dbPath := strings.TrimSpace(os.Getenv(EnvDBPath)); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		cfg.LogLevel = level
	}
	if format := strings.TrimSpace(os.Getenv(EnvLogFormat)); format != "" {
		cfg.LogFormat = format
	}
	if tz := strings.TrimSpace(os.Getenv(EnvTimezone)); tz != "" {
		cfg.Timezone = tz
	}
	if limitValue := strings.TrimSpace(os.Getenv(EnvHistoryLimit)); limitValue != "" {
		limit, err := strconv.Atoi(limitValue)
		if err != nil || limit <= 0 {
			invalid = append(invalid, EnvHistoryLimit)
		} else {
			cfg.HistoryLimit = limit
		}
	}

	invalid = append(invalid, cfg.validate()...)
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file on top of the defaults. Keys
// missing from the file keep their default values.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: file %s does not exist", path)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if invalid := cfg.validate(); len(invalid) > 0 {
		return Config{}, fmt.Errorf("config: invalid values in %s: %s", path, strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// validate resolves Location and returns the names of invalid settings.
func (c *Config) validate() []string {
	var invalid []string
	if strings.TrimSpace(c.DBPath) == "" {
		invalid = append(invalid, "db_path")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		invalid = append(invalid, "log_level")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		invalid = append(invalid, "log_format")
	}
	if c.HistoryLimit <= 0 {
		invalid = append(invalid, "history_limit")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		invalid = append(invalid, "timezone")
	} else {
		c.Location = loc
	}
	return invalid
}
