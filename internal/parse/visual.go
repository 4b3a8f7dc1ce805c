package parse

import "github.com/TobiSchelling/BriefStudio/internal/brief"

// ParseVisualAnalysis extracts the bulleted identity, composition and
// recommendation sections. It is a *ParseError only when every section is
// empty; individual gaps stay as empty lists.
func ParseVisualAnalysis(content string) (brief.VisualAnalysis, error) {
	v := brief.VisualAnalysis{
		Identity: brief.VisualIdentity{
			Colors:      bulletSection(content, "Couleurs"),
			Typography:  bulletSection(content, "Typographie"),
			Iconography: bulletSection(content, "Iconographie"),
		},
		Composition: brief.VisualComposition{
			Layouts:   bulletSection(content, "Layouts"),
			Grids:     bulletSection(content, "Grilles"),
			Hierarchy: bulletSection(content, "Hiérarchie"),
		},
		Recommendations: brief.VisualRecommendations{
			Palette:  bulletSection(content, "Palette"),
			Fonts:    bulletSection(content, "Polices"),
			Elements: bulletSection(content, "Éléments"),
			Filters:  bulletSection(content, "Filtres"),
		},
	}

	sections := [][]string{
		v.Identity.Colors, v.Identity.Typography, v.Identity.Iconography,
		v.Composition.Layouts, v.Composition.Grids, v.Composition.Hierarchy,
		v.Recommendations.Palette, v.Recommendations.Fonts, v.Recommendations.Elements, v.Recommendations.Filters,
	}
	for _, s := range sections {
		if len(s) > 0 {
			return v, nil
		}
	}
	return v, &ParseError{What: "visual analysis", Missing: []string{"Couleurs", "Typographie", "Layouts", "Palette"}}
}
