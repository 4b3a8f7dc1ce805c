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

	if len(cfg.Inspiration.Feeds) == 0 {
		t.Error("expected inspiration feeds to be populated")
	}

	if cfg.Text.Provider != "gateway" {
		t.Errorf("expected provider 'gateway', got %q", cfg.Text.Provider)
	}

	if cfg.Text.StrategyMaxTokens != 3000 {
		t.Errorf("expected strategy max tokens 3000, got %d", cfg.Text.StrategyMaxTokens)
	}

	if cfg.Pipeline.StageDelay != 4*time.Second {
		t.Errorf("expected stage delay 4s, got %s", cfg.Pipeline.StageDelay)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
text:
  provider: gemini
  gemini_model: gemini-2.5-pro
store:
  mode: remote
pipeline:
  stage_delay: 0s
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Text.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got %q", cfg.Text.Provider)
	}
	if cfg.Store.Mode != "remote" {
		t.Errorf("expected store mode 'remote', got %q", cfg.Store.Mode)
	}
	if cfg.Pipeline.StageDelay != 0 {
		t.Errorf("expected zero stage delay, got %s", cfg.Pipeline.StageDelay)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Pipeline.ImageDelay != 5*time.Second {
		t.Errorf("expected default image delay, got %s", cfg.Pipeline.ImageDelay)
	}
	if cfg.Text.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Text.OllamaURL)
	}
}

func TestParseRejectsUnknownStoreMode(t *testing.T) {
	if _, err := parse([]byte("store:\n  mode: s3\n")); err == nil {
		t.Error("expected error for unknown store mode")
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
	if len(cfg.Inspiration.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestResolveExplicitMissing(t *testing.T) {
	if _, err := ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
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
	if cfg.DBPath() != filepath.Join("/custom/path", "briefstudio.db") {
		t.Errorf("unexpected db path %q", cfg.DBPath())
	}
}

func TestUserEmailFromEnv(t *testing.T) {
	t.Setenv("TEST_BRIEFSTUDIO_EMAIL", "ana@example.com")
	cfg := &Config{API: API{UserEmailEnv: "TEST_BRIEFSTUDIO_EMAIL"}}
	if cfg.UserEmail() != "ana@example.com" {
		t.Errorf("expected email from env, got %q", cfg.UserEmail())
	}
}
