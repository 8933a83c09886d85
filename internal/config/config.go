// Package config handles the XDG configuration directory, the optional
// config.yaml inside it, and TODO_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// EnvPrefix prefixes every environment override (TODO_FILE, ...).
	EnvPrefix = "todo"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultDataFile is the task file used when nothing else is configured.
	// Relative to the working directory.
	DefaultDataFile = "tasks.csv"

	// DefaultDueOffset is added to the current time when a task has no due date.
	DefaultDueOffset = 24 * time.Hour
)

// Settings are the user-tunable values. Later sources override earlier
// ones: defaults, config.yaml, environment, command-line flags.
type Settings struct {
	// File is the task file path.
	File string `mapstructure:"file" envconfig:"FILE"`

	// DueOffset is the default distance from now to a new task's due date.
	DueOffset time.Duration `mapstructure:"due_offset" envconfig:"DUE_OFFSET"`

	// RemoteList is the Google Tasks list that push exports to.
	// Empty means the default list.
	RemoteList string `mapstructure:"remote_list" envconfig:"REMOTE_LIST"`
}

// Config holds configuration paths and settings.
type Config struct {
	Settings

	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Log is the debug logger. Use Logger to read it.
	Log *zap.Logger
}

// New creates a Config for the default or specified config directory and
// loads settings from config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{
		Settings: Settings{
			File:      DefaultDataFile,
			DueOffset: DefaultDueOffset,
		},
		Dir: dir,
		Log: zap.NewNop(),
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// loadFile merges config.yaml over the defaults. A missing file is not an error.
func (c *Config) loadFile() error {
	path := c.ConfigPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if err := v.Unmarshal(&c.Settings); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return nil
}

// loadEnv merges TODO_* variables over the current settings.
func (c *Config) loadEnv() error {
	var env Settings
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	if env.File != "" {
		c.File = env.File
	}
	if env.DueOffset != 0 {
		c.DueOffset = env.DueOffset
	}
	if env.RemoteList != "" {
		c.RemoteList = env.RemoteList
	}
	return nil
}

// YAML renders the effective settings in config.yaml form.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(struct {
		File       string `yaml:"file"`
		DueOffset  string `yaml:"due_offset"`
		RemoteList string `yaml:"remote_list,omitempty"`
	}{
		File:       c.File,
		DueOffset:  c.DueOffset.String(),
		RemoteList: c.RemoteList,
	})
}

// Logger returns the debug logger, or a no-op logger if none is set.
func (c *Config) Logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
