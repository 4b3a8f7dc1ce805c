package imageprompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

func bankBrief() *brief.BriefData {
	return &brief.BriefData{
		CompanyName:        "Crédit Azur",
		Sector:             "Banque et Finance",
		CommunicationStyle: "Moderne et rassurant",
		ContentTypes:       []string{"Photos"},
		TargetAudience:     brief.TargetAudience{Demographic: []string{"30-50 ans", "cadres"}},
		CompetitiveAnalysis: brief.CompetitiveAnalysis{
			MarketPosition:  "Challenger",
			Differentiators: []string{"100% en ligne"},
		},
	}
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, "1:1", AspectRatio(PurposeSocial))
	assert.Equal(t, "3:4", AspectRatio(PurposeProduct))
	assert.Equal(t, "16:9", AspectRatio(PurposeLifestyle))
	assert.Equal(t, PurposeSocial, ParsePurpose("banner"))
	assert.Equal(t, PurposeLifestyle, ParsePurpose(" Lifestyle "))
}

func TestSuggestPreset(t *testing.T) {
	b := bankBrief()
	assert.Equal(t, PresetCorporate, SuggestPreset(b, PurposeSocial))
	assert.Equal(t, PresetProduct, SuggestPreset(b, PurposeProduct))
	assert.Equal(t, PresetLifestyle, SuggestPreset(b, PurposeLifestyle))
	assert.Equal(t, PresetEditorial, SuggestPreset(b, Purpose("banner")))

	b.CommunicationStyle = "Premium et exclusif"
	assert.Equal(t, PresetPremium, SuggestPreset(b, PurposeProduct))

	other := &brief.BriefData{Sector: "Automobile"}
	assert.Equal(t, PresetSocial, SuggestPreset(other, PurposeSocial))
}

func TestCompositionAndLighting(t *testing.T) {
	b := bankBrief()
	assert.Equal(t, compositionThirds, Composition(b))
	b.ContentTypes = append(b.ContentTypes, "Product")
	assert.Equal(t, compositionFocal, Composition(b))

	assert.Equal(t, lightingNatural, Lighting(b, ""))
	assert.Equal(t, lightingNatural, Lighting(b, "morning"))
	assert.Equal(t, lightingStudio, Lighting(b, "sunset"))
	b.CommunicationStyle = "premium"
	assert.Equal(t, lightingStudio, Lighting(b, ""))
}

func TestSectorPrompt(t *testing.T) {
	p := SectorPrompt(bankBrief(), "base scene")

	assert.True(t, strings.HasPrefix(p, "base scene, corporate photography"))
	assert.Contains(t, p, "Style Requirements:\n- Professional corporate atmosphere")
	assert.Contains(t, p, "- Sector: Banque et Finance")
	assert.Contains(t, p, "- Market: 30-50 ans, cadres")
	assert.Contains(t, p, "- Position: Challenger")
	assert.Contains(t, p, "- Key Features: 100% en ligne")
}

func TestSectorFallback(t *testing.T) {
	cfg := Sector("Élevage de licornes")
	assert.Equal(t, []string{"professional photography", "commercial quality", "studio lighting"}, cfg.Modifiers)
	assert.Empty(t, cfg.Negatives)
}

func TestOptimize(t *testing.T) {
	got := Optimize("  the   cat on a very   sunny table  ")

	assert.True(t, strings.HasPrefix(got, "masterpiece, best quality"))
	assert.True(t, strings.HasSuffix(got, "commercial photography, advertising quality"))
	assert.Contains(t, got, ", cat on sunny table, ")
}

func TestNegative(t *testing.T) {
	n := Negative("Banque et Finance", "Premium moderne")

	assert.Contains(t, n, "blurry")
	assert.Contains(t, n, "messy office")
	assert.Contains(t, n, "cheap looking")
	assert.NotContains(t, n, "outdated style", "only the first matching style applies")
	assert.True(t, strings.HasSuffix(n, "amateur photography"))
	assert.Equal(t, 1, strings.Count(n, "watermark"))
}

func TestTruncate(t *testing.T) {
	short := "a short prompt"
	assert.Equal(t, short, Truncate(short))

	var clauses []string
	for i := 0; i < 300; i++ {
		clauses = append(clauses, "clause number "+strings.Repeat("x", i%7))
	}
	long := strings.Join(clauses, ", ,") + "\n\nStyle Requirements:\n- Clear visual hierarchy"

	got := Truncate(long)
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.True(t, strings.HasSuffix(got, "Style Requirements: - Clear visual hierarchy"))
	assert.Equal(t, 10, strings.Count(strings.Split(got, "Style Requirements:")[0], "clause number"))
	assert.NotContains(t, got, ", ,")
}

func TestTruncateCutsOnRuneBoundary(t *testing.T) {
	got := Truncate(strings.Repeat("é", MaxLength))
	assert.LessOrEqual(t, len(got), MaxLength)
	assert.True(t, strings.HasSuffix(got, "é"))
}

func TestBuild(t *testing.T) {
	p := Build("Une conseillère accueille un client au bureau", bankBrief(), PurposeSocial, "")

	assert.Equal(t, PresetCorporate, p.Preset)
	assert.Equal(t, "1:1", p.AspectRatio)
	assert.Contains(t, p.Positive, "Une conseillère accueille un client au bureau")
	assert.Contains(t, p.Positive, "corporate atmosphere")
	assert.Contains(t, p.Negative, "messy office")
	assert.NotContains(t, p.Positive, "\n")
}

func TestSuggestsProduct(t *testing.T) {
	assert.True(t, SuggestsProduct("Un pique-nique avec un SAC en cuir"))
	assert.True(t, SuggestsProduct("Dîner en soirée"))
	assert.False(t, SuggestsProduct("Portrait en studio"))
}

func TestTimeOfDay(t *testing.T) {
	assert.Equal(t, "sunset", TimeOfDay("Terrasse en soirée"))
	assert.Equal(t, "night", TimeOfDay("Ville de nuit"))
	assert.Equal(t, "morning", TimeOfDay("Café du matin"))
	assert.Equal(t, "", TimeOfDay("Atelier"))
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryPhysical, CategoryOf("Automobile"))
	assert.Equal(t, CategoryHybrid, CategoryOf("Industrie Manufacturière"))
	assert.Equal(t, CategoryServices, CategoryOf("Banque et Finance"))
	assert.Equal(t, CategoryServices, CategoryOf("Inconnu"))
	assert.True(t, strings.HasPrefix(ProductFocus("Automobile"), "A professional product-focused image"))
}
