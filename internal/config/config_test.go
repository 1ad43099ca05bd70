package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}
	if len(cfg.Sources.CSV) == 0 {
		t.Error("expected csv sources to be populated")
	}

	if cfg.Generation.Provider != "ollama" {
		t.Errorf("expected provider 'ollama', got %q", cfg.Generation.Provider)
	}

	if cfg.Retrieval.TopK != 0 {
		t.Errorf("expected top_k 0, got %d", cfg.Retrieval.TopK)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}

	if cfg.Fetch.Timeout() != 15*time.Second {
		t.Errorf("expected 15s fetch timeout, got %v", cfg.Fetch.Timeout())
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
generation:
  provider: openai
  model: gpt-4o
retrieval:
  top_k: 20
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Generation.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Generation.Provider)
	}
	if cfg.Retrieval.TopK != 20 {
		t.Errorf("expected top_k 20, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Generation.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Generation.OllamaURL)
	}
	if !cfg.Generation.Enabled || !cfg.Fetch.Enabled {
		t.Error("expected generation and fetch enabled by default")
	}
	if cfg.Compose.Samples != 3 {
		t.Errorf("expected 3 compose samples, got %d", cfg.Compose.Samples)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected INFO logging, got %q", cfg.Logging.Level)
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := parse([]byte("server: [")); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestResolveConfigPathExplicit(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing explicit path")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ResolveConfigPath(path)
	if err != nil || got != path {
		t.Errorf("ResolveConfigPath = %q, %v", got, err)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
	if cfg.DBPath() != filepath.Join("/custom/path", "postqa.db") {
		t.Errorf("unexpected db path %q", cfg.DBPath())
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/data/posts.csv"); got != filepath.Join(home, "data", "posts.csv") {
		t.Errorf("got %q", got)
	}
	if got := ExpandHome("/abs/posts.csv"); got != "/abs/posts.csv" {
		t.Errorf("absolute path changed: %q", got)
	}
}
