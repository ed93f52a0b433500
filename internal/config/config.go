package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	CurrentVersion = 1
	DefaultPath    = "~/.edinet-viewer/config.yaml"
	DefaultDBPath  = "data/edinet_data.sqlite3"
)

// Config is the top-level configuration.
type Config struct {
	Version int           `yaml:"version"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Logging LogConfig     `yaml:"logging,omitempty"`
}

// StorageConfig points at the read-only disclosure database.
type StorageConfig struct {
	Type string `yaml:"type"`           // sqlite or postgresql
	Path string `yaml:"path,omitempty"` // sqlite database file
	DSN  string `yaml:"dsn,omitempty"`  // postgresql connection string
}

// ServerConfig defines the API server settings.
type ServerConfig struct {
	Port    int  `yaml:"port,omitempty"`
	DevMode bool `yaml:"dev_mode,omitempty"` // enables CORS for development
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level,omitempty"`     // debug, info, warn, error
	Directory string `yaml:"directory,omitempty"` // default ~/.edinet-viewer/logs/
}

// Load reads and parses the config file from the given path. A missing
// file at the default path yields the default configuration so the
// viewer works with nothing but a database file in place. Environment
// variables (including a local .env) override file values.
func Load(path string) (*Config, error) {
	usingDefault := path == ""
	if usingDefault {
		path = ExpandHome(DefaultPath)
	}

	cfg := &Config{Version: CurrentVersion}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
		if cfg.Version != CurrentVersion {
			return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentVersion)
		}
	case os.IsNotExist(err) && usingDefault:
		// No config file is fine; defaults plus env cover it.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config to the given path.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ExpandHome(DefaultPath)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// applyEnv layers environment overrides on top of file values. A .env
// file in the working directory is honored when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := os.Getenv("EDINET_VIEWER_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("EDINET_VIEWER_DSN"); v != "" {
		c.Storage.DSN = v
		if c.Storage.Type == "" {
			c.Storage.Type = "postgresql"
		}
	}
	if v := os.Getenv("EDINET_VIEWER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Storage.Type == "" {
		c.Storage.Type = "sqlite"
	}
	if c.Storage.Type == "sqlite" && c.Storage.Path == "" {
		c.Storage.Path = DefaultDBPath
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8360
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Directory == "" {
		c.Logging.Directory = ExpandHome("~/.edinet-viewer/logs/")
	}
}

// ExpandHome expands ~ to the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// StoreDialect maps the configured storage type onto the store package's
// dialect names, tolerating common aliases.
func StoreDialect(t string) string {
	switch strings.ToLower(t) {
	case "postgres", "postgresql":
		return "postgresql"
	default:
		return "sqlite"
	}
}
