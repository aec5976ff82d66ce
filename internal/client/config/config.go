// Package config loads settings for the terminal client. Sources are
// applied in order, later ones winning: built-in defaults, an optional
// YAML file (--config), then command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// ServerURL is the base URL of the chat API, e.g. http://localhost:8080.
	ServerURL string `yaml:"server"`
	// Timeout bounds each request. Zero disables it.
	Timeout  time.Duration `yaml:"timeout"`
	LogLevel string        `yaml:"log_level"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.Timeout = 30 * time.Second
	c.LogLevel = "warn"
}

// Load builds the configuration from args (without the program name).
// pflag.ErrHelp is returned as is when --help was requested.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	fs := pflag.NewFlagSet("chatty", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	server := fs.String("server", cfg.ServerURL, "chat API base URL")
	timeout := fs.Duration("timeout", cfg.Timeout, "per-request timeout, 0 for none")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, err
		}
	}

	if fs.Changed("server") {
		cfg.ServerURL = *server
	}
	if fs.Changed("timeout") {
		cfg.Timeout = *timeout
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("config: timeout must not be negative, got %s", cfg.Timeout)
	}
	return cfg, nil
}

// loadFile merges a YAML file into c. Keys absent from the file keep their
// current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}
