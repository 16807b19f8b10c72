package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvConfigPath is the environment variable for an explicit config path
	EnvConfigPath  = "LANWATCH_CONFIG"
	configFileName = "lanwatch.yaml"
	configDirName  = "lanwatch"

	defaultProbeTimeout  = 1 * time.Second
	defaultInterval      = 2 * time.Second
	defaultNotifyTimeout = 5 * time.Second
	defaultDeviceLog     = "devices_log.txt"
	defaultIgnoreName    = "Home Router"
)

type Config struct {
	Interface     string        `yaml:"interface"`
	IPRange       string        `yaml:"ip_range"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	Interval      time.Duration `yaml:"interval"`
	Passive       bool          `yaml:"passive"`
	MDNS          bool          `yaml:"mdns"`
	DedupeReplies bool          `yaml:"dedupe_replies"`
	DiffPolicy    DiffPolicy    `yaml:"diff_policy"`
	LogLevel      string        `yaml:"log_level"`

	Registry RegistryConfig `yaml:"registry"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
	History  HistoryConfig  `yaml:"history"`
}

type RegistryConfig struct {
	// File is a YAML list of known devices
	File string `yaml:"file"`
	// DB is a SQLite registry store, read after File
	DB string `yaml:"db"`
}

type LogConfig struct {
	Path string `yaml:"path"`
	// EventPath receives one line per unknown-device alert; empty disables it
	EventPath string `yaml:"event_path"`
}

type NotifyConfig struct {
	URL        string        `yaml:"url"`
	Mode       NotifyMode    `yaml:"mode"`
	IgnoreName string        `yaml:"ignore_name"`
	Timeout    time.Duration `yaml:"timeout"`
}

type HistoryConfig struct {
	AllURL    string `yaml:"all_url"`
	FilterURL string `yaml:"filter_url"`
}

// DefaultConfig returns the settings used when no config file is found
func DefaultConfig() *Config {
	return &Config{
		ProbeTimeout: defaultProbeTimeout,
		Interval:     defaultInterval,
		MDNS:         true,
		DiffPolicy:   DiffStructural,
		LogLevel:     "info",
		Log:          LogConfig{Path: defaultDeviceLog},
		Notify: NotifyConfig{
			Mode:       NotifyUnknown,
			IgnoreName: defaultIgnoreName,
			Timeout:    defaultNotifyTimeout,
		},
	}
}

// LoadConfig loads path, or searches the default locations when path is empty.
func LoadConfig(path string) (*Config, string, error) {
	if path == "" {
		path = findConfigPath()
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

func (c *Config) applyDefaults() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = defaultProbeTimeout
	}
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.DiffPolicy == "" {
		c.DiffPolicy = DiffStructural
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Log.Path == "" {
		c.Log.Path = defaultDeviceLog
	}
	if c.Notify.Mode == "" {
		c.Notify.Mode = NotifyUnknown
	}
	if c.Notify.Timeout <= 0 {
		c.Notify.Timeout = defaultNotifyTimeout
	}
}

func (c *Config) validate() error {
	switch c.DiffPolicy {
	case DiffStructural, DiffIdentity:
	default:
		return fmt.Errorf("config: unknown diff_policy %q", c.DiffPolicy)
	}

	switch c.Notify.Mode {
	case NotifyUnknown, NotifyAll:
	default:
		return fmt.Errorf("config: unknown notify.mode %q", c.Notify.Mode)
	}

	return nil
}

// findConfigPath searches for a config file in priority order:
// $LANWATCH_CONFIG, ./lanwatch.yaml, $XDG_CONFIG_HOME/lanwatch/config.yaml,
// ~/.config/lanwatch/config.yaml, /etc/lanwatch/config.yaml.
func findConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" && fileExists(path) {
		return path
	}

	if fileExists(configFileName) {
		return configFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, configDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", configDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", configDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
