// Package config loads the application configuration. The core never
// reads ambient globals; everything it needs is decoded here and injected.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Server contains the HTTP API configuration.
type Server struct {
	Bind string `toml:"bind"`
}

// Translation contains the AI provider configuration. The API key itself
// is taken from the named environment variable, never from the file.
type Translation struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
}

// Config is the root configuration.
type Config struct {
	Server      Server      `toml:"server"`
	Translation Translation `toml:"translation"`
	PrefsPath   string      `toml:"prefs_path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		Server: Server{
			Bind: "127.0.0.1:8750",
		},
		Translation: Translation{
			Provider:  "gemini",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		PrefsPath: filepath.Join(home, ".subpad", "prefs.db"),
	}
}

// Load reads a toml config file, falling back to defaults when the path is
// empty or the file is absent. Fields missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Bind == "" {
		return fmt.Errorf("server.bind must not be empty")
	}
	switch c.Translation.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf(
			"translation.provider %q: use gemini, openai, or anthropic",
			c.Translation.Provider,
		)
	}
	return nil
}

// APIKey resolves the provider API key from the configured environment
// variable.
func (c Config) APIKey() string {
	if c.Translation.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Translation.APIKeyEnv)
}
