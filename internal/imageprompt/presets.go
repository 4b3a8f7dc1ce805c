package imageprompt

import (
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// Preset names a style preset.
type Preset string

const (
	PresetPremium     Preset = "premium"
	PresetLifestyle   Preset = "lifestyle"
	PresetCorporate   Preset = "corporate"
	PresetEditorial   Preset = "editorial"
	PresetProduct     Preset = "product"
	PresetSocial      Preset = "social"
	PresetDocumentary Preset = "documentary"
)

// StylePreset is a set of prompt modifiers with the sampler parameters that
// suit them.
type StylePreset struct {
	Name        string
	Description string
	Modifiers   []string
	Params      brief.GenerationParams
}

var StylePresets = map[Preset]StylePreset{
	PresetPremium: {
		Name:        "Premium",
		Description: "Style haut de gamme et luxueux",
		Modifiers: []string{
			"luxury photography", "high-end commercial", "premium quality", "professional lighting",
			"studio quality", "cinematic atmosphere", "elegant composition", "sophisticated mood",
			"pristine quality", "flawless execution",
		},
		Params: brief.GenerationParams{CfgScale: 12, Steps: 60, Samples: 1},
	},
	PresetLifestyle: {
		Name:        "Lifestyle",
		Description: "Style naturel et authentique",
		Modifiers: []string{
			"lifestyle photography", "candid moment", "natural lighting", "authentic atmosphere",
			"real life scene", "genuine emotion", "spontaneous capture", "environmental context",
			"natural composition", "organic feel",
		},
		Params: brief.GenerationParams{CfgScale: 9, Steps: 45, Samples: 2},
	},
	PresetCorporate: {
		Name:        "Corporate",
		Description: "Style professionnel et business",
		Modifiers: []string{
			"corporate photography", "professional environment", "business setting", "executive style",
			"corporate atmosphere", "professional lighting", "clean composition", "formal setting",
			"business context", "professional mood",
		},
		Params: brief.GenerationParams{CfgScale: 10, Steps: 50, Samples: 1},
	},
	PresetEditorial: {
		Name:        "Editorial",
		Description: "Style magazine et éditorial",
		Modifiers: []string{
			"editorial photography", "magazine style", "fashion lighting", "artistic composition",
			"editorial mood", "dramatic atmosphere", "high fashion", "creative lighting",
			"bold composition", "artistic direction",
		},
		Params: brief.GenerationParams{CfgScale: 11, Steps: 55, Samples: 1},
	},
	PresetProduct: {
		Name:        "Product",
		Description: "Style produit commercial",
		Modifiers: []string{
			"product photography", "commercial quality", "studio lighting", "professional product shot",
			"clean background", "perfect exposure", "sharp details", "commercial setting",
			"professional staging", "perfect product placement",
		},
		Params: brief.GenerationParams{CfgScale: 12, Steps: 60, Samples: 1},
	},
	PresetSocial: {
		Name:        "Social",
		Description: "Style réseaux sociaux",
		Modifiers: []string{
			"social media style", "engaging composition", "eye-catching design", "vibrant mood",
			"trendy look", "modern aesthetic", "social appeal", "contemporary style",
			"dynamic composition", "scroll-stopping visual",
		},
		Params: brief.GenerationParams{CfgScale: 9, Steps: 45, Samples: 2},
	},
	PresetDocumentary: {
		Name:        "Documentary",
		Description: "Style documentaire et reportage",
		Modifiers: []string{
			"documentary style", "photojournalistic approach", "natural lighting", "authentic moment",
			"real environment", "storytelling composition", "genuine atmosphere", "truthful capture",
			"unposed scene", "realistic mood",
		},
		Params: brief.GenerationParams{CfgScale: 8, Steps: 40, Samples: 1},
	},
}

// SuggestPreset picks the style preset for a brief and purpose. A premium
// communication style wins over the purpose; banking social posts use the
// corporate preset.
func SuggestPreset(b *brief.BriefData, purpose Purpose) Preset {
	if strings.Contains(strings.ToLower(b.CommunicationStyle), "premium") {
		return PresetPremium
	}
	switch purpose {
	case PurposeProduct:
		return PresetProduct
	case PurposeLifestyle:
		return PresetLifestyle
	case PurposeSocial:
		if strings.Contains(strings.ToLower(b.Sector), "banque") {
			return PresetCorporate
		}
		return PresetSocial
	}
	return PresetEditorial
}
