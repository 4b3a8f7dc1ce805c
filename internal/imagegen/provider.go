package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/config"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
	"github.com/TobiSchelling/BriefStudio/internal/imageprompt"
)

// Request is one image generation call.
type Request struct {
	Prompt         string
	NegativePrompt string
	AspectRatio    string
	// Reference is a base64-encoded image the result should resemble, with
	// Strength its influence.
	Reference string
	Strength  float64
}

// Provider generates an image and returns its URL.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	IsConfigured() bool
}

// StabilityProvider generates through the backend's Stability endpoint.
type StabilityProvider struct {
	client *gateway.Client
}

// NewStabilityProvider creates a provider that goes through the backend API.
func NewStabilityProvider(client *gateway.Client) *StabilityProvider {
	return &StabilityProvider{client: client}
}

// IsConfigured checks that a backend URL is set.
func (s *StabilityProvider) IsConfigured() bool {
	return s.client != nil && s.client.BaseURL != ""
}

// Generate posts the request as a multipart form.
func (s *StabilityProvider) Generate(ctx context.Context, req Request) (string, error) {
	fields := map[string]string{
		"prompt":        imageprompt.Truncate(req.Prompt),
		"aspect_ratio":  req.AspectRatio,
		"output_format": "png",
	}
	if req.NegativePrompt != "" {
		fields["negative_prompt"] = req.NegativePrompt
	}
	if req.Reference != "" {
		fields["image"] = req.Reference
		fields["strength"] = fmt.Sprintf("%.2f", req.Strength)
	}

	var resp struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := s.client.PostForm(ctx, "/ai/stability/generate", fields, &resp); err != nil {
		return "", fmt.Errorf("stability generate: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errors.New("stability generate: response has no image")
	}
	return resp.Data[0].URL, nil
}

// OpenRouterProvider generates through OpenRouter's chat completions with
// image output.
type OpenRouterProvider struct {
	Model   string
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewOpenRouterProvider creates a provider reading its key from keyEnv.
func NewOpenRouterProvider(model, baseURL, keyEnv string) *OpenRouterProvider {
	return &OpenRouterProvider{
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv(keyEnv),
		client:  &http.Client{Timeout: 180 * time.Second},
	}
}

// IsConfigured checks that an API key is set.
func (o *OpenRouterProvider) IsConfigured() bool {
	return o.apiKey != ""
}

type orContentPart struct {
	Type     string      `json:"type"`
	Text     string      `json:"text,omitempty"`
	ImageURL *orImageURL `json:"image_url,omitempty"`
}

type orImageURL struct {
	URL string `json:"url"`
}

type orMessage struct {
	Role    string          `json:"role"`
	Content []orContentPart `json:"content"`
}

type orImageConfig struct {
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type orRequest struct {
	Model       string         `json:"model"`
	Messages    []orMessage    `json:"messages"`
	Modalities  []string       `json:"modalities"`
	Stream      bool           `json:"stream"`
	ImageConfig *orImageConfig `json:"image_config,omitempty"`
}

type orResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Images []struct {
				ImageURL orImageURL `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate returns the first image of the first choice. OpenRouter usually
// answers with a data: URL.
func (o *OpenRouterProvider) Generate(ctx context.Context, req Request) (string, error) {
	prompt := imageprompt.Truncate(req.Prompt)
	if req.NegativePrompt != "" {
		prompt += "\n\nAvoid: " + req.NegativePrompt
	}
	parts := []orContentPart{{Type: "text", Text: prompt}}
	if req.Reference != "" {
		parts = append(parts, orContentPart{
			Type:     "image_url",
			ImageURL: &orImageURL{URL: "data:image/png;base64," + req.Reference},
		})
	}

	body, err := json.Marshal(orRequest{
		Model:       o.Model,
		Messages:    []orMessage{{Role: "user", Content: parts}},
		Modalities:  []string{"image", "text"},
		ImageConfig: &orImageConfig{AspectRatio: req.AspectRatio},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed orResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse response (%d): %s", resp.StatusCode, truncate(string(respBody), 500))
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", fmt.Errorf("openrouter error (%d): %s", resp.StatusCode, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openrouter returned %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}
	if len(parsed.Choices) == 0 || len(parsed.Choices[0].Message.Images) == 0 {
		return "", fmt.Errorf("openrouter returned no image: %s", truncate(string(respBody), 500))
	}

	url := strings.TrimSpace(parsed.Choices[0].Message.Images[0].ImageURL.URL)
	if url == "" {
		return "", errors.New("openrouter image URL is empty")
	}
	return url, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// CreateProvider picks the configured image provider, falling back to the
// backend gateway.
func CreateProvider(cfg config.Image, gw *gateway.Client) Provider {
	if strings.ToLower(cfg.Provider) == "openrouter" {
		if p := NewOpenRouterProvider(cfg.OpenRouterModel, cfg.OpenRouterURL, cfg.OpenRouterKeyEnv); p.IsConfigured() {
			log.Printf("Using OpenRouter image model: %s", cfg.OpenRouterModel)
			return p
		}
		log.Printf("%s not set, falling back to the backend gateway", cfg.OpenRouterKeyEnv)
	}
	if p := NewStabilityProvider(gw); p.IsConfigured() {
		log.Printf("Using Stability through backend gateway at %s", gw.BaseURL)
		return p
	}

	log.Println("No image provider available. Set api.base_url or OPENROUTER_API_KEY.")
	return nil
}
