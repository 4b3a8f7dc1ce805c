// Package imageprompt assembles image-generation prompts from a creative
// brief's visual description and the brand brief: composition, lighting,
// color and style modifiers, sector context, negative terms and the final
// length limit.
package imageprompt

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// MaxLength is the longest prompt sent to the image provider.
const MaxLength = 2000

// Purpose is what the generated image is for.
type Purpose string

const (
	PurposeSocial    Purpose = "social"
	PurposeProduct   Purpose = "product"
	PurposeLifestyle Purpose = "lifestyle"
)

// ParsePurpose maps a configured purpose name, defaulting to social.
func ParsePurpose(s string) Purpose {
	switch Purpose(strings.ToLower(strings.TrimSpace(s))) {
	case PurposeProduct:
		return PurposeProduct
	case PurposeLifestyle:
		return PurposeLifestyle
	default:
		return PurposeSocial
	}
}

// AspectRatio returns the provider aspect ratio for purpose.
func AspectRatio(p Purpose) string {
	switch p {
	case PurposeProduct:
		return "3:4"
	case PurposeLifestyle:
		return "16:9"
	default:
		return "1:1"
	}
}

const (
	compositionThirds = "composition following rule of thirds, balanced layout, dynamic positioning, professional composition"
	compositionFocal  = "strong focal point, eye-catching main subject, clear visual hierarchy, professional product placement"

	lightingStudio  = "premium studio lighting, professional photography setup, perfect exposure, cinematic lighting, dramatic shadows"
	lightingNatural = "soft natural lighting, gentle shadows, airy atmosphere, golden hour lighting, perfect exposure"

	colorPremium = "modern premium color palette, sophisticated tones, contemporary color scheme, professional color grading"
)

var lightingByTime = map[string]string{
	"studio":  lightingStudio,
	"morning": lightingNatural,
}

// Composition uses a focal point for product content, the rule of thirds
// otherwise.
func Composition(b *brief.BriefData) string {
	for _, t := range b.ContentTypes {
		if t == "Product" {
			return compositionFocal
		}
	}
	return compositionThirds
}

// Lighting picks the setup for timeOfDay. Without one, premium brands get
// studio light and others natural light; unknown times fall back to studio.
func Lighting(b *brief.BriefData, timeOfDay string) string {
	if timeOfDay != "" {
		if l, ok := lightingByTime[timeOfDay]; ok {
			return l
		}
		return lightingStudio
	}
	if strings.Contains(strings.ToLower(b.CommunicationStyle), "premium") {
		return lightingStudio
	}
	return lightingNatural
}

// Color returns the color scheme modifiers.
func Color() string {
	return colorPremium
}

// Prompt is a fully assembled image request.
type Prompt struct {
	// Positive is the optimized prompt. It is also the cache key text, so it
	// is kept untruncated; Truncate is applied when sending.
	Positive    string
	Negative    string
	Preset      Preset
	AspectRatio string
}

// Build assembles the prompt for description.
func Build(description string, b *brief.BriefData, purpose Purpose, timeOfDay string) Prompt {
	preset := SuggestPreset(b, purpose)
	base := strings.Join([]string{
		description,
		Composition(b),
		Lighting(b, timeOfDay),
		Color(),
		strings.Join(StylePresets[preset].Modifiers, ", "),
	}, ", ")

	return Prompt{
		Positive:    Optimize(SectorPrompt(b, base)),
		Negative:    Negative(b.Sector, b.CommunicationStyle),
		Preset:      preset,
		AspectRatio: AspectRatio(purpose),
	}
}

// SectorPrompt appends the sector modifiers, style requirements and industry
// context to base.
func SectorPrompt(b *brief.BriefData, base string) string {
	cfg := Sector(b.Sector)

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString(", ")
	sb.WriteString(strings.Join(cfg.Modifiers, ", "))
	sb.WriteString(", professional photography, high-end commercial quality, detailed, sharp focus\n\nStyle Requirements:\n")
	for _, g := range cfg.StyleGuide {
		sb.WriteString("- " + g + "\n")
	}
	sb.WriteString("\nIndustry Context:\n")
	sb.WriteString("- Sector: " + b.Sector + "\n")
	sb.WriteString("- Market: " + strings.Join(b.TargetAudience.Demographic, ", ") + "\n")
	sb.WriteString("- Position: " + b.CompetitiveAnalysis.MarketPosition + "\n")
	sb.WriteString("- Key Features: " + strings.Join(b.CompetitiveAnalysis.Differentiators, ", "))
	return sb.String()
}

var (
	qualityModifiers = []string{
		"masterpiece", "best quality", "highly detailed", "sharp focus", "professional photography",
		"8k uhd", "award winning", "stunning", "perfect composition", "cinematic lighting",
	}
	technicalModifiers = []string{
		"raw photo", "high resolution", "detailed", "sharp", "professional",
		"commercial photography", "advertising quality",
	}

	whitespace  = regexp.MustCompile(`\s+`)
	articles    = regexp.MustCompile(`(?:^|\s)(?:a|an|the)\s+`)
	intensifier = regexp.MustCompile(`\b(?:very|really|extremely)\s+`)
)

// Optimize normalizes whitespace, drops English articles and intensifiers,
// and wraps the prompt in quality and technical modifiers.
func Optimize(prompt string) string {
	p := strings.TrimSpace(whitespace.ReplaceAllString(prompt, " "))
	p = articles.ReplaceAllString(p, " ")
	p = intensifier.ReplaceAllString(p, "")
	p = strings.TrimSpace(whitespace.ReplaceAllString(p, " "))

	return strings.Join(qualityModifiers, ", ") + ", " + p + ", " + strings.Join(technicalModifiers, ", ")
}

var (
	emptyClause = regexp.MustCompile(`,\s*,`)
	colonComma  = regexp.MustCompile(`:\s*,`)
)

// Truncate shortens prompts over MaxLength: it keeps the first ten
// comma-separated clauses before "Style Requirements:", then the
// requirements, and cuts the result at MaxLength.
func Truncate(prompt string) string {
	if len(prompt) <= MaxLength {
		return prompt
	}

	clean := emptyClause.ReplaceAllString(prompt, ",")
	clean = colonComma.ReplaceAllString(clean, ":")
	clean = strings.TrimSpace(whitespace.ReplaceAllString(clean, " "))

	main, requirements, _ := strings.Cut(clean, "Style Requirements:")

	var kept []string
	for _, part := range strings.Split(main, ",") {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
		if len(kept) == 10 {
			break
		}
	}

	out := strings.Join(kept, ", ")
	if requirements != "" {
		out += ", Style Requirements:" + requirements
	}
	return cutUTF8(out, MaxLength)
}

// cutUTF8 cuts s to at most n bytes without splitting a rune.
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

var productKeywords = []string{"table", "picnic", "bureau", "sac", "voyage", "soirée"}

// SuggestsProduct reports whether a scene description leaves room for the
// brand's product, which enables reference-image generation.
func SuggestsProduct(description string) bool {
	lower := strings.ToLower(description)
	for _, k := range productKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// TimeOfDay infers the lighting time from French scene wording.
func TimeOfDay(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "soir"):
		return "sunset"
	case strings.Contains(lower, "nuit"):
		return "night"
	case strings.Contains(lower, "matin"):
		return "morning"
	}
	return ""
}
