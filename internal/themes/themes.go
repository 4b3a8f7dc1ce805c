// Package themes fills the fixed quota of editorial themes, asking the text
// provider for small batches and padding any shortfall with defaults.
package themes

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
	"github.com/TobiSchelling/BriefStudio/internal/parse"
	"github.com/TobiSchelling/BriefStudio/internal/prompts"
	"github.com/TobiSchelling/BriefStudio/internal/retry"
)

const (
	BatchSize   = 3
	MaxFailures = 3
)

var defaultNames = []string{
	"Expertise et Innovation",
	"Valeurs et Engagement",
	"Success Stories",
	"Conseils et Astuces",
	"Coulisses et Équipe",
	"Actualités Secteur",
	"Témoignages Clients",
	"Événements",
	"Produits et Services",
	"RSE et Impact",
	"Tendances",
	"Moments de Vie",
}

// Generator produces editorial themes.
type Generator struct {
	provider  llm.Provider
	maxTokens int
	delay     time.Duration
}

// New creates a Generator waiting delay between batches.
func New(provider llm.Provider, maxTokens int, delay time.Duration) *Generator {
	return &Generator{provider: provider, maxTokens: maxTokens, delay: delay}
}

// Generate returns exactly brief.ThemeCount complete themes. Batches of up to
// BatchSize are requested until the quota is met or MaxFailures batches have
// failed; a batch fails on a provider error or when it yields no complete
// new theme. The shortfall is filled with Defaults. headlines are recent
// sector news passed to the prompt. Only context errors are returned.
func (g *Generator) Generate(ctx context.Context, b *brief.BriefData, strategy *brief.Strategy, headlines []string) ([]brief.Theme, error) {
	var themes []brief.Theme
	seen := map[string]bool{}
	failures := 0

	for len(themes) < brief.ThemeCount && failures < MaxFailures {
		count := min(BatchSize, brief.ThemeCount-len(themes))

		batch, err := g.batch(ctx, b, strategy, count, names(themes), headlines)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			failures++
			log.Printf("Theme batch failed (%d/%d): %v", failures, MaxFailures, err)
		} else {
			added := 0
			for _, t := range batch {
				key := strings.ToLower(t.Name)
				if !t.Complete() || seen[key] || added == count {
					continue
				}
				seen[key] = true
				themes = append(themes, t)
				added++
			}
			if added == 0 {
				failures++
				log.Printf("Theme batch yielded no usable theme (%d/%d)", failures, MaxFailures)
			}
			log.Printf("%d/%d themes generated", len(themes), brief.ThemeCount)
		}

		if len(themes) < brief.ThemeCount && failures < MaxFailures {
			if err := retry.Sleep(ctx, g.delay); err != nil {
				return nil, err
			}
		}
	}

	if short := brief.ThemeCount - len(themes); short > 0 {
		log.Printf("Completing with %d default themes", short)
		themes = append(themes, Defaults(b, short)...)
	}
	return themes, nil
}

func (g *Generator) batch(ctx context.Context, b *brief.BriefData, strategy *brief.Strategy, count int, existing, headlines []string) ([]brief.Theme, error) {
	prompt := prompts.ThemePrompt(b, strategy, count, existing, headlines)
	content, err := g.provider.Generate(ctx, llm.UserPrompt(prompt), g.maxTokens)
	if err != nil {
		return nil, err
	}

	return parse.ParseThemes(content)
}

// Defaults returns the first n default themes for b.
func Defaults(b *brief.BriefData, n int) []brief.Theme {
	n = max(0, min(n, len(defaultNames)))
	themes := make([]brief.Theme, 0, n)
	for _, name := range defaultNames[:n] {
		themes = append(themes, brief.Theme{
			Name:      name,
			Objective: fmt.Sprintf("Mettre en avant %s de %s", strings.ToLower(name), b.CompanyName),
			Approach:  "Contenu authentique et engageant",
			Emotions:  "Confiance, Expertise, Innovation",
			Formats:   []string{"Photos", "Vidéos", "Stories"},
			Networks:  b.Networks(),
		})
	}
	return themes
}

func names(themes []brief.Theme) []string {
	out := make([]string, len(themes))
	for i, t := range themes {
		out[i] = t.Name
	}
	return out
}
