// Package briefs writes one creative brief per editorial theme and appends
// each to the stored result as soon as it exists.
package briefs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
	"github.com/TobiSchelling/BriefStudio/internal/parse"
	"github.com/TobiSchelling/BriefStudio/internal/prompts"
	"github.com/TobiSchelling/BriefStudio/internal/results"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

// Generator produces creative briefs.
type Generator struct {
	provider  llm.Provider
	maxTokens int
	policy    retry.Policy
	store     results.Store
}

// New creates a Generator making three attempts per theme, delay apart, and
// saving briefs to store.
func New(provider llm.Provider, maxTokens int, delay time.Duration, store results.Store) *Generator {
	return &Generator{
		provider:  provider,
		maxTokens: maxTokens,
		policy:    retry.Step("brief generation", delay),
		store:     store,
	}
}

// Generate writes a brief for each theme in order, saving each under
// briefID before moving on. onBrief, when set, receives the number of
// briefs written so far. Only context errors are returned.
func (g *Generator) Generate(ctx context.Context, briefID string, b *brief.BriefData, themes []brief.Theme, onBrief func(int)) ([]brief.CreativeBrief, error) {
	out := make([]brief.CreativeBrief, 0, len(themes))
	for i, theme := range themes {
		log.Printf("Brief %d/%d: %s", i+1, len(themes), theme.Name)

		cb, err := g.ForTheme(ctx, b, theme)
		if err != nil {
			return out, err
		}
		g.save(ctx, briefID, cb)

		out = append(out, cb)
		if onBrief != nil {
			onBrief(len(out))
		}
	}
	return out, nil
}

// ForTheme writes the brief for theme. A provider error or a response
// without usable sections counts as a failed attempt; after the last one the
// theme's default brief is returned.
func (g *Generator) ForTheme(ctx context.Context, b *brief.BriefData, theme brief.Theme) (brief.CreativeBrief, error) {
	messages := llm.UserPrompt(prompts.BriefPrompt(b, theme))

	cb, err := retry.Do(ctx, g.policy, func(ctx context.Context) (brief.CreativeBrief, error) {
		content, err := g.provider.Generate(ctx, messages, g.maxTokens)
		if err != nil {
			return brief.CreativeBrief{}, err
		}
		return parse.ParseBrief(content, theme)
	})
	if err != nil {
		if ctx.Err() != nil {
			return brief.CreativeBrief{}, ctx.Err()
		}
		log.Printf("Using default brief for %q after %d attempts: %v", theme.Name, g.policy.MaxAttempts, err)
		return parse.DefaultBrief(theme), nil
	}
	return cb, nil
}

// save appends cb to the stored brief list. Failures are logged: the run
// keeps its in-memory briefs and persists them again after the phase.
func (g *Generator) save(ctx context.Context, briefID string, cb brief.CreativeBrief) {
	if err := g.appendBrief(ctx, briefID, cb); err != nil {
		log.Printf("Warning: could not save brief: %v", err)
	}
}

func (g *Generator) appendBrief(ctx context.Context, briefID string, cb brief.CreativeBrief) error {
	r, err := g.store.Get(ctx, briefID)
	if err != nil {
		return err
	}

	list := &brief.BriefList{}
	if r != nil && r.Briefs != nil {
		list.Briefs = append(list.Briefs, r.Briefs.Briefs...)
	}
	list.Briefs = append(list.Briefs, cb)

	if err := g.store.Update(ctx, briefID, brief.Patch{Briefs: list}); err != nil {
		return fmt.Errorf("appending brief to %s: %w", briefID, err)
	}
	return nil
}
