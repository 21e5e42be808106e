// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/empire-watcher/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Empire        EmpireConfig             `yaml:"empire"`
	Stream        StreamConfig             `yaml:"stream"`
	Schedule      ScheduleConfig           `yaml:"schedule"`
	Notifications NotificationsConfig      `yaml:"notifications"`
	Server        ServerConfig             `yaml:"server"`
	Logging       LoggingConfig            `yaml:"logging"`
	Skins         []domain.WatchRuleConfig `yaml:"skins"`
}

// EmpireConfig defines marketplace API settings.
type EmpireConfig struct {
	APIKey          string          `yaml:"api_key"`
	BaseURL         string          `yaml:"base_url"`
	SocketURL       string          `yaml:"socket_url"`
	SocketNamespace string          `yaml:"socket_namespace"`
	ItemURL         string          `yaml:"item_url"`
	PageSize        int             `yaml:"page_size"`
	MaxRetries      int             `yaml:"max_retries"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines catalog search pacing.
type RateLimitConfig struct {
	PerSecond   float64       `yaml:"per_second"`
	Burst       int           `yaml:"burst"`
	WindowLimit int64         `yaml:"window_limit"` // 0 disables the window cap
	Window      time.Duration `yaml:"window"`
}

// StreamConfig defines push-stream settings.
type StreamConfig struct {
	Enabled           bool          `yaml:"enabled"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	CredentialTTL     time.Duration `yaml:"credential_ttl"`
	MaxRefreshRetries int           `yaml:"max_refresh_retries"`
}

// ScheduleConfig defines the snapshot cadence.
type ScheduleConfig struct {
	Interval      time.Duration `yaml:"interval"`
	StaggerOffset time.Duration `yaml:"stagger_offset"`
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool          `yaml:"enabled"`
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// defaultYAML is written by Write. Secrets stay as ${VAR} references so the
// file can be committed and the values supplied through the environment or
// a .env file.
const defaultYAML = `empire:
  api_key: "${API_KEY}"

stream:
  enabled: true

schedule:
  interval: 10s

notifications:
  discord:
    enabled: true
    webhook_url: "${DISCORD_WEBHOOK}"
    timeout: 10s

server:
  host: 127.0.0.1
  port: 8080

logging:
  level: info
  format: text

skins:
  - name: Karambit Crimson Web
    search: Karambit Crimson Web
    min_float: 0.15
    max_float: 0.24
    min_price: 1500
`

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg, err := parse([]byte(expanded))
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration Write generates, with defaults applied
// and environment references left unexpanded.
func Default() *Config {
	cfg, err := parse([]byte(defaultYAML))
	if err != nil {
		panic(fmt.Sprintf("default config does not parse: %v", err))
	}
	return cfg
}

// Write creates a default config file at path. It never overwrites an
// existing file.
func Write(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // path from trusted CLI flag
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(defaultYAML); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// LoadEnvFiles loads KEY=VALUE pairs from .env style files into the process
// environment. Missing files are skipped and variables that are already set
// keep their value.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", p, err)
		}
	}
	return nil
}

// Rules returns the processed watch rules.
func (c *Config) Rules() []domain.WatchRule {
	return domain.NewWatchRules(c.Skins)
}

func parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyEmpireDefaults(&cfg.Empire)
	applyStreamDefaults(&cfg.Stream)
	applyScheduleDefaults(&cfg.Schedule)
	applyServerDefaults(&cfg.Server)
	applyNotificationDefaults(&cfg.Notifications)
	applyLoggingDefaults(&cfg.Logging)
}

func applyEmpireDefaults(e *EmpireConfig) {
	if e.BaseURL == "" {
		e.BaseURL = "https://csgoempire.com/api/v2"
	}
	if e.SocketURL == "" {
		e.SocketURL = "wss://trade.csgoempire.com/s/?EIO=4&transport=websocket"
	}
	if e.SocketNamespace == "" {
		e.SocketNamespace = "/trade"
	}
	if e.ItemURL == "" {
		e.ItemURL = "https://csgoempire.com/item/"
	}
	if e.PageSize == 0 {
		e.PageSize = 10
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = 3
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.Window == 0 {
		r.Window = time.Hour
	}
}

func applyStreamDefaults(s *StreamConfig) {
	if s.ReconnectDelay == 0 {
		s.ReconnectDelay = 10 * time.Second
	}
	if s.CredentialTTL == 0 {
		s.CredentialTTL = 15 * time.Second
	}
	if s.MaxRefreshRetries == 0 {
		s.MaxRefreshRetries = 3
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.Interval == 0 {
		s.Interval = 10 * time.Second
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if n.Discord.Timeout == 0 {
		n.Discord.Timeout = 10 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Empire.APIKey == "" {
		errs = append(errs, fmt.Errorf("empire.api_key is required"))
	}
	if cfg.Schedule.Interval < time.Second {
		errs = append(errs, fmt.Errorf("schedule.interval must be at least 1s (got %s)", cfg.Schedule.Interval))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}

	if len(cfg.Skins) == 0 {
		errs = append(errs, fmt.Errorf("skins: at least one watch rule is required"))
	}
	for i := range cfg.Skins {
		errs = append(errs, validateSkin(i, &cfg.Skins[i])...)
	}

	return errors.Join(errs...)
}

func validateSkin(i int, s *domain.WatchRuleConfig) []error {
	var errs []error

	if s.Name == "" {
		errs = append(errs, fmt.Errorf("skins[%d].name is required", i))
	}
	if s.Search == "" {
		errs = append(errs, fmt.Errorf("skins[%d].search is required", i))
	}

	for _, f := range []struct {
		field string
		v     *float64
	}{{"min_float", s.MinFloat}, {"max_float", s.MaxFloat}} {
		if f.v != nil && (*f.v < 0 || *f.v > 1) {
			errs = append(errs, fmt.Errorf("skins[%d].%s must be between 0 and 1 (got %g)", i, f.field, *f.v))
		}
	}
	if s.MinFloat != nil && s.MaxFloat != nil && *s.MinFloat > *s.MaxFloat {
		errs = append(errs, fmt.Errorf("skins[%d].min_float must not exceed max_float", i))
	}

	for _, p := range []struct {
		field string
		v     *float64
	}{{"min_price", s.MinPrice}, {"max_price", s.MaxPrice}} {
		if p.v != nil && *p.v < 0 {
			errs = append(errs, fmt.Errorf("skins[%d].%s must not be negative (got %g)", i, p.field, *p.v))
		}
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		errs = append(errs, fmt.Errorf("skins[%d].min_price must not exceed max_price", i))
	}

	return errs
}
