package parse

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// Defaults substituted for creative brief fields the response omits.
const (
	DefaultCTA        = "En savoir plus"
	DefaultQuestion   = "Qu'en pensez-vous ?"
	DefaultFormat     = "carré"
	DefaultDimensions = "1080x1080px"
)

// DefaultHashtags replace a hashtag list shorter than three tags.
var DefaultHashtags = []string{"#business", "#professional", "#innovation"}

var (
	specFormat     = regexp.MustCompile(`(?i)Format\s*:\s*([^\n]+)`)
	specDimensions = regexp.MustCompile(`(?i)Dimensions\s*:\s*([^\n]+)`)
	specAltText    = regexp.MustCompile(`(?i)Alt[ -]?text\s*:\s*([^\n]+)`)
)

// ParseBrief reads a "### VISUEL ### / ### MARKETING ### / ### SPECS ###"
// response for theme. Missing marketing and spec fields are filled from the
// theme. A response without a usable visual section is a *ParseError: the
// caller retries or falls back to DefaultBrief.
func ParseBrief(content string, theme brief.Theme) (brief.CreativeBrief, error) {
	sections := briefSections(content)

	var missing []string
	visual := visualPrompt(sections["VISUEL"])
	if visual == "" {
		missing = append(missing, "VISUEL")
	}
	marketing, ok := sections["MARKETING"]
	if !ok {
		missing = append(missing, "MARKETING")
	}
	specs := sections["SPECS"]

	b := brief.CreativeBrief{
		VisualPrompt: theme.Name + ": " + visual,
		Content: brief.BriefContent{
			Main:     or(between(marketing, "Message principal", "Tagline"), theme.Objective),
			Tagline:  or(between(marketing, "Tagline", "Hashtags"), theme.Name),
			Hashtags: briefHashtags(between(marketing, "Hashtags", "Call-to-action")),
			CTA:      or(between(marketing, "Call-to-action", "Question"), DefaultCTA),
			Question: or(between(marketing, "Question engagement", "###"), DefaultQuestion),
		},
		Specs: brief.Specs{
			Format:     or(firstGroup(specFormat, specs), DefaultFormat),
			Dimensions: or(firstGroup(specDimensions, specs), DefaultDimensions),
			AltText:    or(firstGroup(specAltText, specs), "Image pour "+theme.Name),
		},
	}
	return b, errorFor("brief", missing)
}

// DefaultBrief is the deterministic brief used when generation for theme
// keeps failing. Its visual prompt names the theme.
func DefaultBrief(theme brief.Theme) brief.CreativeBrief {
	return brief.CreativeBrief{
		VisualPrompt: theme.Name + ": Une image professionnelle illustrant " + theme.Objective,
		Content: brief.BriefContent{
			Main:     theme.Objective,
			Tagline:  theme.Name,
			Hashtags: append([]string(nil), DefaultHashtags...),
			CTA:      DefaultCTA,
			Question: DefaultQuestion,
		},
		Specs: brief.Specs{
			Format:     DefaultFormat,
			Dimensions: DefaultDimensions,
			AltText:    "Image pour " + theme.Name,
		},
	}
}

// briefSections maps each "###"-delimited header keyword to its body. A
// header may stand alone between markers ("### VISUEL ###") or open the
// body on its first line.
func briefSections(content string) map[string]string {
	parts := strings.Split(content, "###")
	sections := make(map[string]string)
	for i := 0; i < len(parts); i++ {
		head, body, _ := strings.Cut(strings.TrimLeft(parts[i], " \t"), "\n")
		key := sectionKey(head)
		if key == "" {
			continue
		}
		if strings.TrimSpace(body) == "" && i+1 < len(parts) {
			body = parts[i+1]
			i++
		}
		if _, seen := sections[key]; !seen {
			sections[key] = strings.TrimSpace(body)
		}
	}
	return sections
}

func sectionKey(head string) string {
	upper := strings.ToUpper(head)
	for _, key := range []string{"VISUEL", "MARKETING", "SPECS"} {
		if strings.Contains(upper, key) {
			return key
		}
	}
	return ""
}

// visualPrompt joins the dash-bulleted lines of the visual section.
func visualPrompt(section string) string {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "-") {
			continue
		}
		if item := cleanValue(strings.TrimLeft(line, "- ")); item != "" {
			lines = append(lines, item)
		}
	}
	return strings.Join(lines, " ")
}

func briefHashtags(text string) []string {
	tags := hashtags(text)
	if len(tags) < 3 {
		return append([]string(nil), DefaultHashtags...)
	}
	return tags
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanValue(m[1])
}

func or(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
