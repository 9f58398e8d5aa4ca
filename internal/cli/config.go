package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/ayeeff/marketmap/pkg/dataset"
)

// configFileName is looked up in the working directory and under
// ~/.config/marketmap/.
const configFileName = "marketmap.toml"

// Config holds the persistent CLI configuration. Every field has a working
// default, so a missing config file is not an error. Flags override config.
type Config struct {
	// SourceURL overrides the scraped site. Empty selects the default.
	SourceURL string `toml:"source_url"`

	// Limit caps the countries drawn on the global map.
	Limit int `toml:"limit"`

	// Algorithm selects the layout policy ("slice" or "greedy").
	Algorithm string `toml:"algorithm"`

	Canvas  CanvasConfig  `toml:"canvas"`
	Repo    RepoConfig    `toml:"repo"`
	Cache   CacheConfig   `toml:"cache"`
	Empires []dataset.Empire `toml:"empires"`
}

// CanvasConfig holds pixel-canvas dimensions.
type CanvasConfig struct {
	Width     int `toml:"width"`
	Height    int `toml:"height"`
	TopOffset int `toml:"top_offset"`
}

// RepoConfig identifies the GitHub data repository artifacts are published to.
type RepoConfig struct {
	Owner    string `toml:"owner"`
	Name     string `toml:"name"`
	TokenEnv string `toml:"token_env"`
}

// CacheConfig selects the pipeline cache backend.
type CacheConfig struct {
	// Backend is "file" (default), "redis", or "none".
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Repo: RepoConfig{
			Owner:    "ayeeff",
			Name:     "marketcap",
			TokenEnv: "GITHUB_TOKEN",
		},
		Cache: CacheConfig{Backend: "file"},
	}
}

// LoadConfig reads the first config file found, merged over defaults.
// Load failures fall back to defaults; commands surface config problems
// when the affected value is actually used.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	path := findConfigFile()
	if path == "" {
		return cfg
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return DefaultConfig()
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfigFile reads one specific config file, merged over defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults restores required fields the file may have blanked.
func (c *Config) applyDefaults() {
	if c.Repo.TokenEnv == "" {
		c.Repo.TokenEnv = "GITHUB_TOKEN"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
}

// EmpireDefinitions returns the configured empires, or the built-ins when
// the config does not override them.
func (c *Config) EmpireDefinitions() []dataset.Empire {
	if len(c.Empires) > 0 {
		return c.Empires
	}
	return dataset.DefaultEmpires()
}

// Token resolves the GitHub token from the configured environment variable.
func (c *Config) Token() string {
	return os.Getenv(c.Repo.TokenEnv)
}

// findConfigFile returns the first existing config path, or empty.
func findConfigFile() string {
	candidates := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, "config.toml"))
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
