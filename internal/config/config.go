package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	API         API         `yaml:"api"`
	Text        Text        `yaml:"text"`
	Image       Image       `yaml:"image"`
	Store       Store       `yaml:"store"`
	Pipeline    Pipeline    `yaml:"pipeline"`
	Inspiration Inspiration `yaml:"inspiration"`
	Output      Output      `yaml:"output"`
	Server      Server      `yaml:"server"`
	Logging     Logging     `yaml:"logging"`
}

// API is the backend that fronts the AI providers, result store and image cache.
type API struct {
	BaseURL      string        `yaml:"base_url"`
	UserEmailEnv string        `yaml:"user_email_env"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Text selects the text-generation provider.
type Text struct {
	Provider          string `yaml:"provider"`
	OllamaModel       string `yaml:"ollama_model"`
	OllamaURL         string `yaml:"ollama_url"`
	OpenAIModel       string `yaml:"openai_model"`
	OpenAIKeyEnv      string `yaml:"openai_api_key_env"`
	GeminiModel       string `yaml:"gemini_model"`
	GeminiKeyEnv      string `yaml:"gemini_api_key_env"`
	StrategyMaxTokens int    `yaml:"strategy_max_tokens"`
	ThemeMaxTokens    int    `yaml:"theme_max_tokens"`
	BriefMaxTokens    int    `yaml:"brief_max_tokens"`
	VisualMaxTokens   int    `yaml:"visual_max_tokens"`
}

// Image selects the image-generation provider.
type Image struct {
	Provider         string `yaml:"provider"`
	Purpose          string `yaml:"purpose"`
	OpenRouterURL    string `yaml:"openrouter_url"`
	OpenRouterModel  string `yaml:"openrouter_model"`
	OpenRouterKeyEnv string `yaml:"openrouter_api_key_env"`
}

// Store selects where results and cached images are persisted:
// "local" uses the SQLite database, "remote" uses the backend API.
type Store struct {
	Mode string `yaml:"mode"`
}

// Pipeline holds pacing and retry timings.
type Pipeline struct {
	StageDelay           time.Duration `yaml:"stage_delay"`
	ImageDelay           time.Duration `yaml:"image_delay"`
	PhaseRetryDelay      time.Duration `yaml:"phase_retry_delay"`
	StepRetryDelay       time.Duration `yaml:"step_retry_delay"`
	ValidationRetryDelay time.Duration `yaml:"validation_retry_delay"`
	ImageRetries         int           `yaml:"image_retries"`
}

// Inspiration configures the optional prompt enrichment sources.
type Inspiration struct {
	Feeds        []Feed        `yaml:"feeds"`
	MaxHeadlines int           `yaml:"max_headlines"`
	FetchWebsite bool          `yaml:"fetch_website"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
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

// ConfigDir returns the XDG config directory for briefstudio.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "briefstudio")
}

// DataDir returns the XDG data directory for briefstudio.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "briefstudio")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/briefstudio/config.yaml > ./config.yaml
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
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'briefstudio init' to create a default config",
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
		API: API{
			BaseURL:      "http://localhost:8000/api",
			UserEmailEnv: "BRIEFSTUDIO_USER_EMAIL",
			Timeout:      120 * time.Second,
		},
		Text: Text{
			Provider:          "gateway",
			OllamaModel:       "qwen2.5:7b",
			OllamaURL:         "http://localhost:11434",
			OpenAIModel:       "gpt-4o-mini",
			OpenAIKeyEnv:      "OPENAI_API_KEY",
			GeminiModel:       "gemini-2.0-flash",
			GeminiKeyEnv:      "GEMINI_API_KEY",
			StrategyMaxTokens: 3000,
			ThemeMaxTokens:    1500,
			BriefMaxTokens:    1500,
			VisualMaxTokens:   2000,
		},
		Image: Image{
			Provider:         "gateway",
			Purpose:          "social",
			OpenRouterURL:    "https://openrouter.ai/api/v1",
			OpenRouterModel:  "google/gemini-2.5-flash-image-preview",
			OpenRouterKeyEnv: "OPENROUTER_API_KEY",
		},
		Store: Store{Mode: "local"},
		Pipeline: Pipeline{
			StageDelay:           4 * time.Second,
			ImageDelay:           5 * time.Second,
			PhaseRetryDelay:      8 * time.Second,
			StepRetryDelay:       2 * time.Second,
			ValidationRetryDelay: time.Second,
			ImageRetries:         3,
		},
		Inspiration: Inspiration{
			MaxHeadlines: 8,
			Timeout:      15 * time.Second,
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.Store.Mode {
	case "local", "remote":
	default:
		return nil, fmt.Errorf("parsing config: unknown store mode %q (want local or remote)", cfg.Store.Mode)
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

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "briefstudio.db")
}

// UserEmail returns the user credential from the configured environment variable.
func (c *Config) UserEmail() string {
	return os.Getenv(c.API.UserEmailEnv)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
