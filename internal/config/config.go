// Package config loads the runtime configuration.
//
// Precedence, lowest first: built-in defaults, the YAML config file, a
// .env file in the working directory, then PLANBAROMETRO_* environment
// variables. Variables already set in the environment win over .env.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/HendryAvila/planbarometro/internal/alerts"
	"github.com/HendryAvila/planbarometro/internal/store"
)

const (
	// UserConfigDir is the directory for user-level config, under $HOME.
	UserConfigDir = ".planbarometro"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PLANBAROMETRO_"
)

// Config is the full runtime configuration.
type Config struct {
	Locale      string        `yaml:"locale"`
	LogLevel    string        `yaml:"log_level"`
	ModelsDir   string        `yaml:"models_dir"`
	WatchModels bool          `yaml:"watch_models"`
	Store       store.Config  `yaml:"store"`
	Discord     DiscordConfig `yaml:"discord"`
	Metrics     MetricsConfig `yaml:"metrics"`
}

// DiscordConfig configures alert notifications. Notifications are off
// unless both Token and ChannelID are set.
type DiscordConfig struct {
	Token       string `yaml:"token"`
	ChannelID   string `yaml:"channel_id"`
	MinSeverity string `yaml:"min_severity"`
}

// Enabled reports whether a Discord notifier should be built.
func (d DiscordConfig) Enabled() bool {
	return d.Token != "" && d.ChannelID != ""
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Locale:    "es",
		LogLevel:  "info",
		ModelsDir: filepath.Join(home, UserConfigDir, "models"),
		Store:     store.DefaultConfig(),
		Discord:   DiscordConfig{MinSeverity: string(alerts.SeverityMedium)},
	}
}

// Validate checks enumerated values and required combinations.
func (c *Config) Validate() error {
	var errs []error

	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Store.Driver {
	case store.DriverSQLite:
		if c.Store.DataDir == "" {
			errs = append(errs, errors.New("store.data_dir is required for sqlite"))
		}
	case store.DriverMySQL:
		if c.Store.Host == "" || c.Store.Database == "" {
			errs = append(errs, errors.New("store.host and store.database are required for mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q: must be sqlite or mysql", c.Store.Driver))
	}

	if c.Discord.MinSeverity != "" {
		if _, err := alerts.ParseSeverity(c.Discord.MinSeverity); err != nil {
			errs = append(errs, fmt.Errorf("discord.min_severity: %w", err))
		}
	}
	if (c.Discord.Token == "") != (c.Discord.ChannelID == "") {
		errs = append(errs, errors.New("discord.token and discord.channel_id must be set together"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel returns the configured log level. Invalid values map to info.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: %w", s, err)
	}
	return lvl, nil
}

// ─── Loading ─────────────────────────────────────────────────────────────────

// Loader resolves a Config from files and the environment.
type Loader struct {
	logger *slog.Logger

	// EnvFiles are passed to godotenv; empty means ".env".
	EnvFiles []string
	// Lookup reads environment variables; nil means os.LookupEnv.
	Lookup func(string) (string, bool)
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load builds the configuration. An explicit path must exist; with an
// empty path the user config file is read if present.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = UserConfigPath()
	}
	if path != "" {
		err := mergeFile(cfg, path)
		switch {
		case err == nil:
			l.logger.Debug("loaded config file", slog.String("path", path))
		case !explicit && errors.Is(err, os.ErrNotExist):
			l.logger.Debug("no config file", slog.String("path", path))
		default:
			return nil, err
		}
	}

	if err := godotenv.Load(l.EnvFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.logger.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UserConfigPath returns ~/.planbarometro/config.yaml, or "" when the
// home directory is unknown.
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// mergeFile decodes a YAML file over cfg. Keys absent from the file keep
// their current values.
func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LOCALE":               &cfg.Locale,
		"LOG_LEVEL":            &cfg.LogLevel,
		"MODELS_DIR":           &cfg.ModelsDir,
		"STORE_DRIVER":         &cfg.Store.Driver,
		"DATA_DIR":             &cfg.Store.DataDir,
		"MYSQL_HOST":           &cfg.Store.Host,
		"MYSQL_PORT":           &cfg.Store.Port,
		"MYSQL_USER":           &cfg.Store.User,
		"MYSQL_PASSWORD":       &cfg.Store.Password,
		"MYSQL_DATABASE":       &cfg.Store.Database,
		"DISCORD_TOKEN":        &cfg.Discord.Token,
		"DISCORD_CHANNEL_ID":   &cfg.Discord.ChannelID,
		"DISCORD_MIN_SEVERITY": &cfg.Discord.MinSeverity,
		"METRICS_ADDR":         &cfg.Metrics.Addr,
	}
	for name, dst := range str {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvPrefix + "WATCH_MODELS"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sWATCH_MODELS: %w", EnvPrefix, err)
		}
		cfg.WatchModels = b
	}
	return nil
}
