// Package strategy produces the market strategy that opens every run.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
	"github.com/TobiSchelling/BriefStudio/internal/parse"
	"github.com/TobiSchelling/BriefStudio/internal/prompts"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

// Generator asks the text provider for a strategy and parses it.
type Generator struct {
	provider  llm.Provider
	maxTokens int
	policy    retry.Policy
}

// New creates a Generator retrying provider failures every delay, three
// attempts in all.
func New(provider llm.Provider, maxTokens int, delay time.Duration) *Generator {
	return &Generator{
		provider:  provider,
		maxTokens: maxTokens,
		policy:    retry.Step("strategy generation", delay),
	}
}

// Generate returns the strategy for b. website is readable text from the
// brand's site and may be empty. When the provider keeps failing the default
// strategy is returned; sections missing from the response get their
// default values. Only context errors are returned.
func (g *Generator) Generate(ctx context.Context, b *brief.BriefData, website string) (*brief.Strategy, error) {
	messages := llm.UserPrompt(prompts.StrategyPrompt(b, website))

	content, err := retry.Do(ctx, g.policy, func(ctx context.Context) (string, error) {
		return g.provider.Generate(ctx, messages, g.maxTokens)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("Strategy generation failed, using default strategy: %v", err)
		return Default(b), nil
	}

	s, err := parse.ParseStrategy(content)
	if err != nil {
		var pe *parse.ParseError
		if !errors.As(err, &pe) {
			return nil, err
		}
		log.Printf("Strategy incomplete, defaulting %v", pe.Missing)
		fillDefaults(&s, b)
	}
	return &s, nil
}

// Default is the strategy used when none could be generated.
func Default(b *brief.BriefData) *brief.Strategy {
	s := &brief.Strategy{
		Content:  fmt.Sprintf("Stratégie marketing pour %s", b.CompanyName),
		Calendar: map[string]any{},
	}
	fillDefaults(s, b)
	return s
}

// fillDefaults sets every empty field of s to its default.
func fillDefaults(s *brief.Strategy, b *brief.BriefData) {
	if s.Content == "" {
		s.Content = fmt.Sprintf("Stratégie marketing pour %s", b.CompanyName)
	}
	if s.Analysis.Positioning == "" {
		s.Analysis.Positioning = fmt.Sprintf("%s se positionne comme un acteur majeur dans %s", b.CompanyName, b.Sector)
	}
	if len(s.Analysis.Strengths) == 0 {
		s.Analysis.Strengths = []string{"Expertise reconnue", "Innovation continue", "Service client premium"}
	}
	if len(s.Analysis.Opportunities) == 0 {
		s.Analysis.Opportunities = []string{"Développement digital", "Expansion marché", "Nouveaux segments"}
	}
	if s.Recommendations.VisualStyle == "" {
		s.Recommendations.VisualStyle = "Style professionnel et moderne"
	}
	if len(s.Recommendations.ToneOfVoice) == 0 {
		s.Recommendations.ToneOfVoice = map[string]string{"default": "Professionnel et engageant"}
	}
	if len(s.Recommendations.Hashtags) == 0 {
		s.Recommendations.Hashtags = []string{"#business", "#innovation", "#excellence"}
	}
	if len(s.Recommendations.Engagement) == 0 {
		s.Recommendations.Engagement = []string{"Posts réguliers", "Interaction avec la communauté"}
	}
	if s.Calendar == nil {
		s.Calendar = map[string]any{}
	}
}
