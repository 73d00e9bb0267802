// Package config loads and persists the dpcli configuration file at
// ~/.dpcli/config.yaml.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".dpcli"
	configFileName = "config.yaml"
)

type Config struct {
	API     APIConfig     `yaml:"api" json:"api"`
	Builder BuilderConfig `yaml:"builder" json:"builder"`
	TUI     TUIConfig     `yaml:"tui" json:"tui"`
}

type APIConfig struct {
	URL             string `yaml:"url" json:"url"`
	Token           string `yaml:"token,omitempty" json:"token,omitempty"`
	Timeout         string `yaml:"timeout" json:"timeout"`
	DownloadTimeout string `yaml:"downloadTimeout" json:"downloadTimeout"`
}

type BuilderConfig struct {
	Namespace    string `yaml:"namespace" json:"namespace"`
	PollInterval string `yaml:"pollInterval" json:"pollInterval"`
	OutputDir    string `yaml:"outputDir" json:"outputDir"`
}

type TUIConfig struct {
	Colors     bool `yaml:"colors" json:"colors"`
	Animations bool `yaml:"animations" json:"animations"`
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:             "http://localhost:8080/api",
			Token:           "",
			Timeout:         "30s",
			DownloadTimeout: "300s",
		},
		Builder: BuilderConfig{
			Namespace:    "devops",
			PollInterval: "2s",
			OutputDir:    ".",
		},
		TUI: TUIConfig{
			Colors:     true,
			Animations: true,
		},
	}
}

func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func Load() (*Config, error) {
	path, err := FilePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return Default(), nil
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.normalize()
	return cfg, nil
}

func Save(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// 0600 — the file may carry an API token.
	return os.WriteFile(path, b, 0o600)
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if strings.TrimSpace(c.API.URL) == "" {
		return fmt.Errorf("api.url cannot be empty")
	}
	if !strings.HasPrefix(c.API.URL, "http://") && !strings.HasPrefix(c.API.URL, "https://") {
		return fmt.Errorf("api.url must start with http:// or https://")
	}
	if _, err := parsePositiveDuration(c.API.Timeout, "api.timeout"); err != nil {
		return err
	}
	if _, err := parsePositiveDuration(c.API.DownloadTimeout, "api.downloadTimeout"); err != nil {
		return err
	}
	if strings.TrimSpace(c.Builder.Namespace) == "" {
		return fmt.Errorf("builder.namespace cannot be empty")
	}
	if _, err := parsePositiveDuration(c.Builder.PollInterval, "builder.pollInterval"); err != nil {
		return err
	}
	return nil
}

// MergeEnvOverrides applies DPCLI_API_URL and DPCLI_TOKEN on top of the
// file config. Flag values are applied later by the CLI, so precedence is
// flag > env > file > default.
func (c *Config) MergeEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("DPCLI_API_URL")); v != "" {
		c.API.URL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("DPCLI_TOKEN")); v != "" {
		c.API.Token = v
	}
}

// APITimeout returns api.timeout as a duration, defaulting to 30s.
func (c *Config) APITimeout() time.Duration {
	return durationOr(c.API.Timeout, 30*time.Second)
}

// APIDownloadTimeout returns api.downloadTimeout, defaulting to 300s.
func (c *Config) APIDownloadTimeout() time.Duration {
	return durationOr(c.API.DownloadTimeout, 300*time.Second)
}

// PollInterval returns builder.pollInterval, defaulting to 2s.
func (c *Config) PollInterval() time.Duration {
	return durationOr(c.Builder.PollInterval, 2*time.Second)
}

func durationOr(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func (c *Config) SetByKey(key, value string) error {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return fmt.Errorf("key cannot be empty")
	}
	v := strings.TrimSpace(value)
	switch k {
	case "api.url":
		c.API.URL = v
	case "api.token":
		c.API.Token = v
	case "api.timeout":
		c.API.Timeout = v
	case "api.downloadtimeout", "api.download_timeout":
		c.API.DownloadTimeout = v
	case "builder.namespace":
		c.Builder.Namespace = v
	case "builder.pollinterval", "builder.poll_interval":
		c.Builder.PollInterval = v
	case "builder.outputdir", "builder.output_dir":
		c.Builder.OutputDir = v
	case "tui.colors":
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("tui.colors must be true or false")
		}
		c.TUI.Colors = b
	case "tui.animations":
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("tui.animations must be true or false")
		}
		c.TUI.Animations = b
	default:
		return fmt.Errorf("unsupported key %q", key)
	}
	c.normalize()
	return c.Validate()
}

func (c *Config) GetByKey(key string) (any, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}
	switch k {
	case "api.url":
		return c.API.URL, nil
	case "api.token":
		return c.API.Token, nil
	case "api.timeout":
		return c.API.Timeout, nil
	case "api.downloadtimeout", "api.download_timeout":
		return c.API.DownloadTimeout, nil
	case "builder.namespace":
		return c.Builder.Namespace, nil
	case "builder.pollinterval", "builder.poll_interval":
		return c.Builder.PollInterval, nil
	case "builder.outputdir", "builder.output_dir":
		return c.Builder.OutputDir, nil
	case "tui.colors":
		return c.TUI.Colors, nil
	case "tui.animations":
		return c.TUI.Animations, nil
	default:
		return nil, fmt.Errorf("unsupported key %q", key)
	}
}

func (c *Config) ToYAML() (string, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Config) ToJSON() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *Config) normalize() {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	c.API.Token = strings.TrimSpace(c.API.Token)
	c.API.Timeout = strings.TrimSpace(c.API.Timeout)
	c.API.DownloadTimeout = strings.TrimSpace(c.API.DownloadTimeout)
	c.Builder.Namespace = strings.TrimSpace(c.Builder.Namespace)
	c.Builder.PollInterval = strings.TrimSpace(c.Builder.PollInterval)
	c.Builder.OutputDir = strings.TrimSpace(c.Builder.OutputDir)
}

func parsePositiveDuration(v, key string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return d, nil
}
