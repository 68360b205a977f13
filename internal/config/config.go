// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Journal backends.
const (
	JournalFile = "file"
	JournalNATS = "nats"
)

// DefaultCompetingPackage is the vendor first-run wizard that must be
// disabled once this wizard provisions the device.
const DefaultCompetingPackage = "com.google.android.setupwizard"

// Config holds all configuration values for setupwizard.
type Config struct {
	DataDir          string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel         string `mapstructure:"log_level" yaml:"log_level"`
	LogFile          string `mapstructure:"log_file" yaml:"log_file"`
	Profile          string `mapstructure:"profile" yaml:"profile"`
	Journal          string `mapstructure:"journal" yaml:"journal"`
	FlowID           string `mapstructure:"flow_id" yaml:"flow_id"`
	CompetingPackage string `mapstructure:"competing_package" yaml:"competing_package"`
	WatchProfile     bool   `mapstructure:"watch_profile" yaml:"watch_profile"`
}

// Default returns the configuration written by `setupwizard init`.
func Default() *Config {
	return &Config{
		DataDir:          ".setupwizard",
		LogLevel:         "info",
		Profile:          filepath.Join(".setupwizard", "device.yml"),
		Journal:          JournalFile,
		FlowID:           "first-boot",
		CompetingPackage: DefaultCompetingPackage,
		WatchProfile:     true,
	}
}

var envKeys = []string{
	"data_dir",
	"log_level",
	"log_file",
	"profile",
	"journal",
	"flow_id",
	"competing_package",
	"watch_profile",
}

// Load loads configuration with full precedence:
// ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("setupwizard")

	def := Default()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("profile", def.Profile)
	v.SetDefault("journal", def.Journal)
	v.SetDefault("flow_id", def.FlowID)
	v.SetDefault("competing_package", def.CompetingPackage)
	v.SetDefault("watch_profile", def.WatchProfile)

	v.SetEnvPrefix("SETUPWIZARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit bindings so Unmarshal sees env-only values.
	for _, key := range envKeys {
		if err := v.BindEnv(key, "SETUPWIZARD_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Journal {
	case JournalFile, JournalNATS:
	default:
		return fmt.Errorf("invalid journal %q: want %q or %q", c.Journal, JournalFile, JournalNATS)
	}
	if c.FlowID == "" {
		return fmt.Errorf("flow_id must not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/setupwizard/setupwizard.yml or $XDG_CONFIG_HOME/setupwizard/setupwizard.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "setupwizard", "setupwizard.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "setupwizard", "setupwizard.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "setupwizard.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	return write(GlobalPath(), cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
