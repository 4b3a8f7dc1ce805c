package strategy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/llm"
)

type mockProvider struct {
	responses []string
	errs      []error
	calls     int
	maxTokens int
	prompt    string
}

func (m *mockProvider) IsConfigured() bool { return true }

func (m *mockProvider) Generate(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	i := m.calls
	m.calls++
	m.maxTokens = maxTokens
	m.prompt = messages[0].Content
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", errors.New("no more responses")
}

const full = `Un marché en croissance rapide pour la mode durable.

Positionnement : La référence de la mode lente accessible

Forces :
- Matières certifiées
- Ateliers en France

Opportunités :
- Seconde main

Style visuel : lumière naturelle

Ton de voix :
- Instagram : inspirant

Hashtags : #modeethique, #madeinfrance

Tactiques d'engagement :
- Lives atelier
`

var atelier = &brief.BriefData{CompanyName: "Atelier Nord", Sector: "Mode et Luxe"}

func TestGenerateParsesResponse(t *testing.T) {
	p := &mockProvider{responses: []string{full}}
	g := New(p, 3000, 0)

	s, err := g.Generate(context.Background(), atelier, "Atelier Nord fabrique des vestes en lin.")
	require.NoError(t, err)
	assert.Equal(t, 3000, p.maxTokens)
	assert.Contains(t, p.prompt, "vestes en lin")
	assert.Equal(t, "La référence de la mode lente accessible", s.Analysis.Positioning)
	assert.Equal(t, []string{"Matières certifiées", "Ateliers en France"}, s.Analysis.Strengths)
	assert.Equal(t, map[string]string{"Instagram": "inspirant"}, s.Recommendations.ToneOfVoice)
}

func TestGenerateRetriesProviderErrors(t *testing.T) {
	p := &mockProvider{
		errs:      []error{errors.New("502"), errors.New("timeout")},
		responses: []string{"", "", full},
	}
	s, err := New(p, 3000, 0).Generate(context.Background(), atelier, "")
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, "La référence de la mode lente accessible", s.Analysis.Positioning)
}

func TestGenerateFallsBackToDefault(t *testing.T) {
	p := &mockProvider{}
	s, err := New(p, 3000, 0).Generate(context.Background(), atelier, "")
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, Default(atelier), s)
	assert.Equal(t, "Stratégie marketing pour Atelier Nord", s.Content)
}

func TestGenerateWithoutPositioning(t *testing.T) {
	p := &mockProvider{responses: []string{"Forces :\n- Rapidité\n"}}
	s, err := New(p, 3000, 0).Generate(context.Background(), atelier, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls, "an incomplete response is not retried")
	assert.Equal(t, "Atelier Nord se positionne comme un acteur majeur dans Mode et Luxe", s.Analysis.Positioning)
	assert.Equal(t, []string{"Rapidité"}, s.Analysis.Strengths)
	assert.Equal(t, []string{"#business", "#innovation", "#excellence"}, s.Recommendations.Hashtags)
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &mockProvider{errs: []error{context.Canceled}}
	_, err := New(p, 3000, 0).Generate(ctx, atelier, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefault(t *testing.T) {
	s := Default(atelier)
	assert.Equal(t, []string{"Expertise reconnue", "Innovation continue", "Service client premium"}, s.Analysis.Strengths)
	assert.Equal(t, []string{"Développement digital", "Expansion marché", "Nouveaux segments"}, s.Analysis.Opportunities)
	assert.Equal(t, "Style professionnel et moderne", s.Recommendations.VisualStyle)
	assert.Equal(t, map[string]string{"default": "Professionnel et engageant"}, s.Recommendations.ToneOfVoice)
	assert.Equal(t, []string{"Posts réguliers", "Interaction avec la communauté"}, s.Recommendations.Engagement)
	assert.NotNil(t, s.Calendar)
}
