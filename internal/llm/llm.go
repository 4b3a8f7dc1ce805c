package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/config"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
)

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UserPrompt wraps a single prompt as a one-message conversation.
func UserPrompt(prompt string) []Message {
	return []Message{{Role: "user", Content: prompt}}
}

// Provider is the interface for text-generation providers.
type Provider interface {
	Generate(ctx context.Context, messages []Message, maxTokens int) (string, error)
	IsConfigured() bool
}

// GatewayProvider calls the backend's /ai/gpt endpoint.
type GatewayProvider struct {
	client *gateway.Client
}

// NewGatewayProvider creates a provider that goes through the backend API.
func NewGatewayProvider(client *gateway.Client) *GatewayProvider {
	return &GatewayProvider{client: client}
}

// IsConfigured checks that a backend URL is set.
func (g *GatewayProvider) IsConfigured() bool {
	return g.client != nil && g.client.BaseURL != ""
}

// Generate sends the messages to the backend and returns the first choice.
func (g *GatewayProvider) Generate(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	body := map[string]any{
		"messages":  messages,
		"maxTokens": maxTokens,
	}

	var result chatCompletion
	if err := g.client.DoJSON(ctx, http.MethodPost, "/ai/gpt", body, &result); err != nil {
		return "", fmt.Errorf("gateway gpt: %w", err)
	}
	return result.first("gateway")
}

// OllamaProvider is a local Ollama LLM provider.
type OllamaProvider struct {
	Model   string
	BaseURL string
	client  *http.Client
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(model, baseURL string) *OllamaProvider {
	return &OllamaProvider{
		Model:   model,
		BaseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if Ollama is running and the model is available.
func (o *OllamaProvider) IsConfigured() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", o.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	modelBase := strings.SplitN(o.Model, ":", 2)[0]
	for _, m := range result.Models {
		if strings.Contains(m.Name, modelBase) {
			return true
		}
	}
	log.Printf("Ollama model %q not found", o.Model)
	return false
}

// Generate sends the conversation to Ollama and returns the response.
func (o *OllamaProvider) Generate(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	body := map[string]any{
		"model":    o.Model,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": 0.7,
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return result.Message.Content, nil
}

// OpenAIProvider is an OpenAI API provider.
type OpenAIProvider struct {
	Model   string
	APIKey  string
	BaseURL string
	client  *http.Client
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(model, apiKeyEnv string) *OpenAIProvider {
	return &OpenAIProvider{
		Model:   model,
		APIKey:  os.Getenv(apiKeyEnv),
		BaseURL: "https://api.openai.com/v1",
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// IsConfigured checks if the API key is set.
func (o *OpenAIProvider) IsConfigured() bool {
	return o.APIKey != ""
}

// Generate sends the conversation to OpenAI and returns the response.
func (o *OpenAIProvider) Generate(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	body := map[string]any{
		"model":       o.Model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": 0.7,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.BaseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatCompletion
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return result.first("OpenAI")
}

// chatCompletion is the OpenAI-shaped response shared by the backend gateway.
type chatCompletion struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c chatCompletion) first(provider string) (string, error) {
	if len(c.Choices) == 0 {
		return "", fmt.Errorf("no choices in %s response", provider)
	}
	return c.Choices[0].Message.Content, nil
}

// CreateProvider creates a text provider based on configuration, falling back
// to any other configured provider when the requested one is unavailable.
func CreateProvider(cfg config.Text, gw *gateway.Client) Provider {
	switch strings.ToLower(cfg.Provider) {
	case "gateway":
		if p := NewGatewayProvider(gw); p.IsConfigured() {
			log.Printf("Using backend gateway at %s", gw.BaseURL)
			return p
		}
		log.Println("Backend gateway not configured, trying fallbacks...")
	case "ollama":
		if p := NewOllamaProvider(cfg.OllamaModel, cfg.OllamaURL); p.IsConfigured() {
			log.Printf("Using Ollama with model: %s", cfg.OllamaModel)
			return p
		}
		log.Println("Ollama not available, trying fallbacks...")
	case "gemini":
		if p := NewGeminiProvider(cfg.GeminiModel, cfg.GeminiKeyEnv); p.IsConfigured() {
			log.Printf("Using Gemini with model: %s", cfg.GeminiModel)
			return p
		}
		log.Println("Gemini API key not set, trying fallbacks...")
	}

	if p := NewOpenAIProvider(cfg.OpenAIModel, cfg.OpenAIKeyEnv); p.IsConfigured() {
		log.Printf("Using OpenAI with model: %s", cfg.OpenAIModel)
		return p
	}
	if p := NewGeminiProvider(cfg.GeminiModel, cfg.GeminiKeyEnv); p.IsConfigured() {
		log.Printf("Using Gemini with model: %s", cfg.GeminiModel)
		return p
	}
	if p := NewGatewayProvider(gw); p.IsConfigured() {
		log.Printf("Using backend gateway at %s", gw.BaseURL)
		return p
	}

	log.Println("No text provider available. Set api.base_url, run Ollama, or set OPENAI_API_KEY / GEMINI_API_KEY.")
	return nil
}
