package parse

import (
	"regexp"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

var (
	themeSplit = regexp.MustCompile(`(?i)TH[EÈÉ]ME\s*\d+\s*:`)
	quotedName = regexp.MustCompile(`["“”«»]\s*([^"“”«»\n]+?)\s*["“”«»]`)

	objectiveField = fieldPattern("Objectif")
	approachField  = fieldPattern("Angle")
	emotionsField  = fieldPattern("Émotions", "Emotions")
	formatsField   = fieldPattern("Formats")
	networksField  = fieldPattern("Réseaux", "Reseaux")
)

// ParseThemes splits a "THEME n:" response into themes. A block is kept when
// it has a quoted name and an objective; completeness of the remaining
// fields is left to the caller. A response yielding no theme is a *ParseError.
func ParseThemes(content string) ([]brief.Theme, error) {
	var themes []brief.Theme
	for _, block := range themeSplit.Split(content, -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		loc := quotedName.FindStringSubmatchIndex(block)
		if loc == nil {
			continue
		}
		name := strings.TrimSpace(block[loc[2]:loc[3]])
		rest := block[loc[1]:]

		t := brief.Theme{
			Name:      name,
			Objective: fieldValue(rest, objectiveField),
			Approach:  fieldValue(rest, approachField),
			Emotions:  fieldValue(rest, emotionsField),
			Formats:   splitList(fieldValue(rest, formatsField)),
			Networks:  splitList(fieldValue(rest, networksField)),
		}
		if t.Name != "" && t.Objective != "" {
			themes = append(themes, t)
		}
	}

	if len(themes) == 0 {
		return nil, &ParseError{What: "themes", Missing: []string{"THEME"}}
	}
	return themes, nil
}

// fieldPattern matches a line that starts with one of labels, after any
// list marker, and captures what follows the colon. A label mentioned inside
// another field's value does not match.
func fieldPattern(labels ...string) *regexp.Regexp {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return regexp.MustCompile(`(?im)^[ \t\-•*#]*(?:` + strings.Join(quoted, "|") + `)[^:\n]*:[ \t]*(.*)$`)
}

func fieldValue(text string, field *regexp.Regexp) string {
	m := field.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return cleanValue(m[1])
}
