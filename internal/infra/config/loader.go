// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the name of the config file in the data directory.
const ConfigFileName = "config.toml"

// Config is the application configuration.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	PR     PRConfig     `toml:"pr"`
	Log    LogConfig    `toml:"log"`
}

// GitHubConfig holds repository coordinates for PR creation from the
// [github] section. The token itself is read from the named environment
// variable, never stored in the file.
type GitHubConfig struct {
	Owner    string `toml:"owner"`
	Repo     string `toml:"repo"`
	TokenEnv string `toml:"token_env"`
}

// Token reads the access token from the configured environment variable.
func (g GitHubConfig) Token() string {
	if g.TokenEnv == "" {
		return ""
	}
	return os.Getenv(g.TokenEnv)
}

// Configured returns true if PR creation is usable.
func (g GitHubConfig) Configured() bool {
	return g.Owner != "" && g.Repo != "" && g.Token() != ""
}

// PRConfig holds pull-request settings from the [pr] section.
type PRConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the bound on the push/PR-create step.
func (p PRConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{TokenEnv: "GITHUB_TOKEN"},
		PR:     PRConfig{TimeoutSeconds: 30},
		Log:    LogConfig{Level: "info"},
	}
}

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the .trackd directory
	globalConfDir string // Path to the global config directory
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config
// directory. This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "trackd")
}

// Load returns the merged configuration (defaults <- global <- repo).
func (l *Loader) Load() (*Config, error) {
	base := NewDefaultConfig()

	global, err := l.loadFile(filepath.Join(l.globalConfDir, ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if global != nil {
		merge(base, global)
	}

	repo, err := l.loadFile(filepath.Join(l.dataDir, ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if repo != nil {
		merge(base, repo)
	}

	return base, nil
}

func (l *Loader) loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// merge overlays non-zero fields of src onto dst.
func merge(dst, src *Config) {
	if src.GitHub.Owner != "" {
		dst.GitHub.Owner = src.GitHub.Owner
	}
	if src.GitHub.Repo != "" {
		dst.GitHub.Repo = src.GitHub.Repo
	}
	if src.GitHub.TokenEnv != "" {
		dst.GitHub.TokenEnv = src.GitHub.TokenEnv
	}
	if src.PR.TimeoutSeconds > 0 {
		dst.PR.TimeoutSeconds = src.PR.TimeoutSeconds
	}
	if src.Log.Level != "" {
		dst.Log.Level = src.Log.Level
	}
}
