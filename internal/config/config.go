package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds daemon and CLI configuration loaded from ~/.socialhub/config.yaml.
type Config struct {
	APIAddr     string    `yaml:"api_addr"`
	SocketPath  string    `yaml:"socket_path"`
	HTTPTimeout Duration  `yaml:"http_timeout"`
	LogLevel    string    `yaml:"log_level"`
	LogFormat   string    `yaml:"log_format"`
	AuditLog    string    `yaml:"audit_log"`
	Endpoints   Endpoints `yaml:"endpoints"`
}

// Endpoints overrides platform hosts. Empty fields keep each adapter's
// production default.
type Endpoints struct {
	BlueskyHost    string `yaml:"bluesky_host"`
	BlueskyWeb     string `yaml:"bluesky_web"`
	XAPIBase       string `yaml:"x_api_base"`
	XWeb           string `yaml:"x_web"`
	ThreadsAPIBase string `yaml:"threads_api_base"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Dir returns the socialhub state directory: ~/.socialhub.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".socialhub")
}

// DefaultPath returns the default config file path: ~/.socialhub/config.yaml.
func DefaultPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// DefaultSocketPath returns the default API socket: ~/.socialhub/socialhub.sock.
func DefaultSocketPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "socialhub.sock")
}

// Load reads a YAML config file from path. If the file does not exist,
// it returns an empty Config and no error. An empty or all-comment file
// also returns an empty Config with no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Timeout is the per-request HTTP timeout for platform calls. Zero means
// none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout)
}

// Socket returns the configured socket path or the default.
func (c *Config) Socket() string {
	if c.SocketPath != "" {
		return c.SocketPath
	}
	return DefaultSocketPath()
}

// Level returns the configured slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
