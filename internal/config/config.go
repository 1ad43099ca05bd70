package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources    Sources    `yaml:"sources"`
	Fetch      Fetch      `yaml:"fetch"`
	Retrieval  Retrieval  `yaml:"retrieval"`
	Generation Generation `yaml:"generation"`
	Compose    Compose    `yaml:"compose"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Sources struct {
	CSV   []string `yaml:"csv"`
	Feeds []Feed   `yaml:"feeds"`
}

// Feed is an RSS or Atom source. Author fills the author and name fields of
// items that carry no author of their own.
type Feed struct {
	URL    string `yaml:"url"`
	Name   string `yaml:"name"`
	Author string `yaml:"author"`
}

type Fetch struct {
	Enabled        bool `yaml:"enabled"`
	TimeoutSeconds int  `yaml:"timeout_seconds"`
	Limit          int  `yaml:"limit"`
}

// Timeout returns the per-request fetch timeout.
func (f Fetch) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Retrieval narrows the collection before a question is resolved.
// TopK 0 resolves against the whole collection.
type Retrieval struct {
	TopK int `yaml:"top_k"`
}

type Generation struct {
	Enabled     bool    `yaml:"enabled"`
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	OllamaURL   string  `yaml:"ollama_url"`
	OpenAIModel string  `yaml:"openai_model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Compose controls post drafting.
type Compose struct {
	Samples  int `yaml:"samples"`
	MaxWords int `yaml:"max_words"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for postqa.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "postqa")
}

// DataDir returns the XDG data directory for postqa.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "postqa")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/postqa/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'postqa init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Fetch: Fetch{
			Enabled:        true,
			TimeoutSeconds: 15,
			Limit:          50,
		},
		Generation: Generation{
			Enabled:     true,
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   400,
			Temperature: 0.7,
		},
		Compose: Compose{
			Samples:  3,
			MaxWords: 150,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// DBPath returns the SQLite database location inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "postqa.db")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" {
		return homeDir()
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
