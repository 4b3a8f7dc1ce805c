package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TobiSchelling/BriefStudio/internal/config"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
)

func TestGatewayProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/gpt" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ana@example.com" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body struct {
			Messages  []Message `json:"messages"`
			MaxTokens int       `json:"maxTokens"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		if body.MaxTokens != 3000 || len(body.Messages) != 1 || body.Messages[0].Role != "user" {
			t.Errorf("unexpected body %+v", body)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Positionnement: leader"}}]}`))
	}))
	defer srv.Close()

	p := NewGatewayProvider(gateway.New(srv.URL+"/api", 0))
	ctx := gateway.WithCredentials(context.Background(), gateway.Credentials{UserEmail: "ana@example.com"})

	text, err := p.Generate(ctx, UserPrompt("analyse"), 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Positionnement: leader" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestGatewayProviderNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewGatewayProvider(gateway.New(srv.URL, 0))
	ctx := gateway.WithCredentials(context.Background(), gateway.Credentials{UserEmail: "ana@example.com"})
	if _, err := p.Generate(ctx, UserPrompt("x"), 10); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing api key header")
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"THEME 1: \"Test\""}}]}`))
	}))
	defer srv.Close()

	p := &OpenAIProvider{Model: "gpt-4o-mini", APIKey: "sk-test", BaseURL: srv.URL, client: srv.Client()}
	text, err := p.Generate(context.Background(), UserPrompt("themes"), 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `THEME 1: "Test"` {
		t.Errorf("unexpected text %q", text)
	}
}

func TestOpenAIProviderWithoutKey(t *testing.T) {
	p := NewOpenAIProvider("gpt-4o-mini", "BRIEFSTUDIO_TEST_MISSING_KEY")
	if p.IsConfigured() {
		t.Fatal("expected provider without key to be unconfigured")
	}
	if _, err := p.Generate(context.Background(), UserPrompt("x"), 10); err == nil {
		t.Error("expected error without API key")
	}
}

func TestToGeminiContents(t *testing.T) {
	contents, system := toGeminiContents([]Message{
		{Role: "system", Content: "Tu es un expert marketing."},
		{Role: "user", Content: "Bonjour"},
		{Role: "assistant", Content: "Bonjour !"},
	})
	if system == nil || len(system.Parts) != 1 || system.Parts[0].Text != "Tu es un expert marketing." {
		t.Errorf("unexpected system instruction %+v", system)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("unexpected roles %q, %q", contents[0].Role, contents[1].Role)
	}
}

func TestCreateProviderPrefersGateway(t *testing.T) {
	gw := gateway.New("http://localhost:8000/api", 0)
	p := CreateProvider(config.Text{Provider: "gateway"}, gw)
	if _, ok := p.(*GatewayProvider); !ok {
		t.Errorf("expected gateway provider, got %T", p)
	}
}

func TestCreateProviderFallsBackToOpenAI(t *testing.T) {
	t.Setenv("BRIEFSTUDIO_TEST_OPENAI", "sk-test")
	p := CreateProvider(config.Text{
		Provider:     "gemini",
		GeminiKeyEnv: "BRIEFSTUDIO_TEST_MISSING_KEY",
		OpenAIModel:  "gpt-4o-mini",
		OpenAIKeyEnv: "BRIEFSTUDIO_TEST_OPENAI",
	}, nil)
	if _, ok := p.(*OpenAIProvider); !ok {
		t.Errorf("expected OpenAI fallback, got %T", p)
	}
}

func TestCreateProviderNoneAvailable(t *testing.T) {
	p := CreateProvider(config.Text{
		Provider:     "gemini",
		GeminiKeyEnv: "BRIEFSTUDIO_TEST_MISSING_KEY",
		OpenAIKeyEnv: "BRIEFSTUDIO_TEST_MISSING_KEY",
	}, nil)
	if p != nil {
		t.Errorf("expected nil provider, got %T", p)
	}
}
