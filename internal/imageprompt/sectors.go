package imageprompt

import "strings"

// SectorConfig holds the prompt modifiers and style guide for one sector.
type SectorConfig struct {
	Modifiers  []string
	StyleGuide []string
	Negatives  []string
}

var sectorConfigs = map[string]SectorConfig{
	"FMCG (Fast-Moving Consumer Goods)": {
		Modifiers: []string{
			"professional product photography", "lifestyle context", "aspirational setting",
			"studio lighting setup", "vibrant color grading", "high-end commercial photography",
		},
		StyleGuide: []string{
			"Premium product presentation", "Emotional lifestyle integration", "High-energy visual impact",
			"Professional studio quality", "Contemporary commercial aesthetic",
		},
		Negatives: []string{
			"damaged packaging", "dirty product", "incorrect colors", "poor lighting on product",
			"inconsistent branding", "messy background", "unfocused product shot", "wrong product angle",
			"poor product placement",
		},
	},
	"Banque et Finance": {
		Modifiers: []string{
			"corporate photography", "professional business environment", "modern office setting",
			"clean geometric composition", "professional lighting", "corporate documentary style",
		},
		StyleGuide: []string{
			"Professional corporate atmosphere", "Modern business aesthetic", "Clear visual hierarchy",
			"Minimal precise design", "Corporate appropriate imagery",
		},
		Negatives: []string{
			"casual attire", "unprofessional setting", "messy office", "inappropriate gestures",
			"poor corporate image", "informal atmosphere", "cluttered workspace", "inappropriate background",
		},
	},
	"Hôtellerie, Restauration et Loisirs": {
		Modifiers: []string{
			"hospitality photography", "warm ambient lighting", "lifestyle documentary",
			"natural authentic moments", "cinematic atmosphere", "editorial food photography",
		},
		StyleGuide: []string{
			"Inviting atmosphere capture", "Rich color treatment", "Authentic moment focus",
			"Natural lighting emphasis", "Editorial quality finish",
		},
		Negatives: []string{
			"dirty environment", "poor food presentation", "messy tables", "unfocused atmosphere",
			"bad lighting", "unappealing food", "unprofessional service", "cluttered space",
		},
	},
	"Technologie et Innovation": {
		Modifiers: []string{
			"tech product photography", "minimalist composition", "studio lighting setup",
			"clean background", "professional tech photography", "high-end product shot",
		},
		StyleGuide: []string{
			"Premium tech presentation", "Modern minimal aesthetic", "Professional studio quality",
			"Technical detail emphasis", "Innovation-focused imagery",
		},
		Negatives: []string{
			"outdated technology", "messy cables", "poor screen quality", "incorrect device proportions",
			"unrealistic interfaces", "poor lighting on devices", "incorrect tech details",
		},
	},
	"Biens de consommation": {
		Modifiers: []string{
			"lifestyle product photography", "natural lighting setup", "authentic environment",
			"editorial style", "commercial photography", "professional product shot",
		},
		StyleGuide: []string{
			"Natural product integration", "Lifestyle context focus", "Authentic environment capture",
			"Professional studio quality", "Contemporary styling",
		},
		Negatives: []string{
			"poor product finish", "incorrect product colors", "bad product angles", "unrealistic materials",
			"poor lighting on products", "incorrect scale", "messy presentation",
		},
	},
	"Automobile": {
		Modifiers: []string{
			"automotive photography", "professional car photography", "studio lighting setup",
			"dramatic angle", "commercial car shot", "professional automotive shoot",
		},
		StyleGuide: []string{
			"Premium automotive presentation", "Dynamic composition focus", "Professional studio quality",
			"Technical detail accuracy", "Commercial grade finish",
		},
		Negatives: []string{
			"incorrect car proportions", "unrealistic reflections", "poor car details", "incorrect car features",
			"bad car angles", "poor lighting on vehicle", "unrealistic materials", "incorrect scale",
		},
	},
	"Industrie Manufacturière": {
		Modifiers: []string{
			"industrial photography", "professional facility shot", "technical photography",
			"commercial industrial photo", "professional manufacturing photography", "industrial documentary",
		},
		StyleGuide: []string{
			"Professional industrial capture", "Technical detail emphasis", "Safety compliance focus",
			"Quality process highlight", "Clean environment presentation",
		},
		Negatives: []string{
			"unsafe conditions", "messy workplace", "incorrect machinery", "poor industrial setting",
			"unrealistic equipment", "incorrect scale", "poor lighting on machinery",
		},
	},
}

var defaultSector = SectorConfig{
	Modifiers:  []string{"professional photography", "commercial quality", "studio lighting"},
	StyleGuide: []string{"Professional presentation", "Clear communication", "Quality focus"},
}

// Sector returns the configuration for sector, or a generic professional
// configuration for sectors without one.
func Sector(sector string) SectorConfig {
	if cfg, ok := sectorConfigs[sector]; ok {
		return cfg
	}
	return defaultSector
}

// Category groups sectors by what their images should show.
type Category string

const (
	CategoryPhysical Category = "PHYSICAL_PRODUCTS"
	CategoryServices Category = "PURE_SERVICES"
	CategoryHybrid   Category = "HYBRID"
)

var sectorCategories = map[Category][]string{
	CategoryPhysical: {
		"FMCG (Fast-Moving Consumer Goods)", "Biens de consommation", "Automobile",
		"Artisanat et Métiers d'art", "Chimie et Pharmaceutique", "Agriculture et Agroalimentaire",
	},
	CategoryServices: {
		"Banque et Finance", "Éducation et Formation", "Santé et Services sociaux", "Services B2B",
		"Services B2C", "Communication et Médias", "Immobilier",
	},
	CategoryHybrid: {
		"Hôtellerie, Restauration et Loisirs", "Transport et Logistique", "Informatique et Technologies",
		"Bâtiment et Construction", "Industrie Manufacturière",
	},
}

// CategoryOf classifies sector. Unknown sectors are treated as services.
func CategoryOf(sector string) Category {
	for _, c := range []Category{CategoryPhysical, CategoryServices, CategoryHybrid} {
		for _, s := range sectorCategories[c] {
			if s == sector {
				return c
			}
		}
	}
	return CategoryServices
}

// ProductFocus is the scene framing for a sector category, used when a brief
// has no visual prompt of its own.
func ProductFocus(sector string) string {
	switch CategoryOf(sector) {
	case CategoryPhysical:
		return "A professional product-focused image with"
	case CategoryHybrid:
		return "A professional scene that combines both service and product elements showing"
	default:
		return "A professional service-oriented scene showing"
	}
}

var baseNegatives = []string{
	"blurry", "low quality", "low resolution", "jpeg artifacts",
	"compression artifacts", "amateur", "unprofessional",
	"oversaturated", "undersaturated", "distorted proportions",
	"unrealistic anatomy", "deformed", "bad composition",
	"watermark", "text", "writing", "signature", "logo",
	"out of frame", "cropped", "worst quality", "normal quality",
	"username", "artist name", "trademark", "title",
	"multiple views", "extra digit", "fewer digits",
	"poorly drawn face", "poorly drawn hands",
	"error", "missing fingers",
}

// styleNegatives is checked in order; the first key contained in the
// communication style applies.
var styleNegatives = []struct {
	key       string
	negatives []string
}{
	{"premium", []string{"cheap looking", "low budget", "poor quality materials", "amateur lighting", "basic composition", "simple background", "unrefined details"}},
	{"corporate", []string{"casual setting", "unprofessional atmosphere", "inappropriate attire", "messy environment", "poor business context"}},
	{"lifestyle", []string{"posed shots", "unnatural poses", "forced expressions", "artificial setting", "unrealistic lifestyle"}},
	{"modern", []string{"outdated style", "old fashioned", "retro elements", "vintage look", "classical style"}},
}

var qualityNegatives = []string{
	"stock photo", "generic image", "basic photography", "amateur composition", "poor lighting setup",
	"basic camera angle", "unbalanced composition", "poor color grading", "basic post-processing",
	"amateur photography",
}

// Negative builds the negative prompt: base exclusions, then the sector's,
// then those of the first matching style, then generic quality exclusions.
// Terms appear once, in first-seen order.
func Negative(sector, style string) string {
	terms := append([]string(nil), baseNegatives...)
	terms = append(terms, Sector(sector).Negatives...)

	lower := strings.ToLower(style)
	for _, s := range styleNegatives {
		if strings.Contains(lower, s.key) {
			terms = append(terms, s.negatives...)
			break
		}
	}
	terms = append(terms, qualityNegatives...)

	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return strings.Join(out, ", ")
}
