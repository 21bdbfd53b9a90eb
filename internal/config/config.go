package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults used when the config file leaves a key unset
const (
	DefaultMainBranch     = "master"
	DefaultOriginRemote   = "origin"
	DefaultUpstreamRemote = "upstream"
	DefaultAPIURL         = "https://api.github.com/"
	DefaultTimeout        = "5s"
	DefaultCommandTimeout = "5m"
)

// Config is the user configuration file
type Config struct {
	Git    GitConfig    `toml:"git"`
	GitHub GitHubConfig `toml:"github"`
	Merge  MergeConfig  `toml:"merge"`
}

// GitConfig names the branches and remotes the workflows operate on
type GitConfig struct {
	MainBranch     string `toml:"main_branch"`
	OriginRemote   string `toml:"origin_remote"`
	UpstreamRemote string `toml:"upstream_remote"`
	// CommandTimeout bounds each git command; "0" disables the bound
	CommandTimeout string `toml:"command_timeout"`
}

// GitHubConfig holds pull-request API settings
type GitHubConfig struct {
	Username    string `toml:"username"`
	AccessToken string `toml:"access_token"`
	APIURL      string `toml:"api_url"`
	Timeout     string `toml:"timeout"`
}

// MergeConfig holds merge commit settings
type MergeConfig struct {
	// Message is a template; {{ours}} and {{theirs}} expand to branch names
	Message string `toml:"message,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Git: GitConfig{
			MainBranch:     DefaultMainBranch,
			OriginRemote:   DefaultOriginRemote,
			UpstreamRemote: DefaultUpstreamRemote,
			CommandTimeout: DefaultCommandTimeout,
		},
		GitHub: GitHubConfig{
			APIURL:  DefaultAPIURL,
			Timeout: DefaultTimeout,
		},
	}
}

// DefaultPath returns the config file location.
// If BRO_CONFIG is set, uses that path.
// Otherwise, uses ~/.config/bro/config.toml
func DefaultPath() string {
	if customPath := os.Getenv("BRO_CONFIG"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "bro.toml"
	}
	return filepath.Join(homeDir, ".config", "bro", "config.toml")
}

// Load reads the config file at path. A missing file is created with the
// defaults. Keys missing from an existing file fall back to the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(cfg, path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.applyDefaults()
	if _, err := cfg.RequestTimeout(); err != nil {
		return nil, err
	}
	if _, err := cfg.GitCommandTimeout(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path, creating the directory if needed
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry an access token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Git.MainBranch == "" {
		c.Git.MainBranch = def.Git.MainBranch
	}
	if c.Git.OriginRemote == "" {
		c.Git.OriginRemote = def.Git.OriginRemote
	}
	if c.Git.UpstreamRemote == "" {
		c.Git.UpstreamRemote = def.Git.UpstreamRemote
	}
	if c.Git.CommandTimeout == "" {
		c.Git.CommandTimeout = def.Git.CommandTimeout
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = def.GitHub.APIURL
	}
	if c.GitHub.Timeout == "" {
		c.GitHub.Timeout = def.GitHub.Timeout
	}
}

// RequestTimeout parses the GitHub request timeout
func (c *Config) RequestTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.GitHub.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid github.timeout %q: %w", c.GitHub.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid github.timeout %q: must be positive", c.GitHub.Timeout)
	}
	return d, nil
}

// GitCommandTimeout parses the git command timeout; zero means unbounded
func (c *Config) GitCommandTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Git.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid git.command_timeout %q: %w", c.Git.CommandTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid git.command_timeout %q: must not be negative", c.Git.CommandTimeout)
	}
	return d, nil
}

// fields maps dotted keys to the settings they address
func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"git.main_branch":     &c.Git.MainBranch,
		"git.origin_remote":   &c.Git.OriginRemote,
		"git.upstream_remote": &c.Git.UpstreamRemote,
		"git.command_timeout": &c.Git.CommandTimeout,
		"github.username":     &c.GitHub.Username,
		"github.access_token": &c.GitHub.AccessToken,
		"github.api_url":      &c.GitHub.APIURL,
		"github.timeout":      &c.GitHub.Timeout,
		"merge.message":       &c.Merge.Message,
	}
}

// Keys returns every settable key, sorted
func (c *Config) Keys() []string {
	fields := c.fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a dotted key such as "git.main_branch"
func (c *Config) Get(key string) (string, error) {
	field, ok := c.fields()[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return *field, nil
}

// Set assigns a dotted key
func (c *Config) Set(key, value string) error {
	field, ok := c.fields()[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	old := *field
	*field = value

	var err error
	switch strings.ToLower(key) {
	case "github.timeout":
		_, err = c.RequestTimeout()
	case "git.command_timeout":
		_, err = c.GitCommandTimeout()
	}
	if err != nil {
		*field = old
		return err
	}
	return nil
}
