package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// Strategy section labels, as written by prompts.StrategyPrompt.
const (
	LabelPositioning   = "Positionnement"
	LabelStrengths     = "Forces"
	LabelOpportunities = "Opportunités"
	LabelVisualStyle   = "Style visuel"
	LabelToneOfVoice   = "Ton de voix"
	LabelHashtags      = "Hashtags"
	LabelEngagement    = "Tactiques d'engagement"
)

var toneLine = regexp.MustCompile(`^([^:]{1,40})\s*:\s*(.+)$`)

// ParseStrategy extracts the labeled strategy sections. The returned strategy
// holds every field that was found; a *ParseError lists the rest.
func ParseStrategy(content string) (brief.Strategy, error) {
	content = strings.TrimSpace(content)
	s := brief.Strategy{
		Content:  narrative(content),
		Calendar: map[string]any{},
	}

	var missing []string

	if lines := bulletSection(content, LabelPositioning); len(lines) > 0 {
		s.Analysis.Positioning = lines[0]
	} else {
		missing = append(missing, LabelPositioning)
	}

	s.Analysis.Strengths = bulletSection(content, LabelStrengths)
	if len(s.Analysis.Strengths) == 0 {
		missing = append(missing, LabelStrengths)
	}

	s.Analysis.Opportunities = bulletSection(content, LabelOpportunities)
	if len(s.Analysis.Opportunities) == 0 {
		missing = append(missing, LabelOpportunities)
	}

	if style := bulletSection(content, LabelVisualStyle); len(style) > 0 {
		s.Recommendations.VisualStyle = strings.Join(style, " ")
	} else {
		missing = append(missing, LabelVisualStyle)
	}

	if tones := toneOfVoice(bulletSection(content, LabelToneOfVoice)); len(tones) > 0 {
		s.Recommendations.ToneOfVoice = tones
	} else {
		missing = append(missing, LabelToneOfVoice)
	}

	if body, ok := sectionBody(content, LabelHashtags); ok {
		s.Recommendations.Hashtags = hashtags(strings.Join(bullets(body), " "))
	}
	if len(s.Recommendations.Hashtags) == 0 {
		missing = append(missing, LabelHashtags)
	}

	s.Recommendations.Engagement = bulletSection(content, LabelEngagement)
	if len(s.Recommendations.Engagement) == 0 {
		missing = append(missing, LabelEngagement)
	}

	return s, errorFor("strategy", missing)
}

// narrative returns the market analysis written before the first labeled
// section, or the whole text when there is no such preamble.
func narrative(content string) string {
	loc := labelPattern(LabelPositioning).FindStringIndex(content)
	if loc != nil {
		if pre := strings.TrimSpace(content[:loc[0]]); len(pre) >= 10 {
			return pre
		}
	}
	return content
}

// toneOfVoice maps "Network : tone" lines by network and numbers the others.
func toneOfVoice(lines []string) map[string]string {
	if len(lines) == 0 {
		return nil
	}
	tones := make(map[string]string, len(lines))
	for i, line := range lines {
		if m := toneLine.FindStringSubmatch(line); m != nil {
			tones[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
			continue
		}
		tones[fmt.Sprintf("tone%d", i+1)] = line
	}
	return tones
}
