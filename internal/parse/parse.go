// Package parse extracts structured fields from the free-form text returned
// by the text-generation provider. Parsers never panic on malformed input:
// they return whatever they could extract together with a *ParseError naming
// the sections that were missing, and callers decide which defaults apply.
package parse

import (
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports the labeled sections a parser could not find.
type ParseError struct {
	What    string
	Missing []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: missing %s", e.What, strings.Join(e.Missing, ", "))
}

// errorFor returns nil when nothing is missing.
func errorFor(what string, missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return &ParseError{What: what, Missing: missing}
}

var (
	bulletPrefix = regexp.MustCompile(`^(?:[-•*]|\d+[.)])\s*`)
	headingLine  = regexp.MustCompile(`^\p{Lu}[^:\n]*:`)
)

// labelPattern matches a section heading at the start of a line, tolerating
// bullets and markdown emphasis before the label and any qualifier before
// the colon ("Forces (3) :", "**Hashtags** :").
func labelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[\s\-•*#]*` + regexp.QuoteMeta(label) + `[^:\n]*:`)
}

// sectionBody returns the text after the heading for label, up to the next
// blank line or the next capitalized heading line.
func sectionBody(text, label string) (string, bool) {
	loc := labelPattern(label).FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := strings.TrimLeft(text[loc[1]:], " \t")
	rest = strings.TrimPrefix(rest, "\r")
	rest = strings.TrimPrefix(rest, "\n")

	lines := strings.Split(rest, "\n")
	var kept []string
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			break
		}
		if i > 0 && headingLine.MatchString(trimmed) {
			break
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n"), true
}

// bullets splits a section body into items, stripping list markers.
func bullets(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		item := cleanValue(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// bulletSection is sectionBody followed by bullets.
func bulletSection(text, label string) []string {
	body, ok := sectionBody(text, label)
	if !ok {
		return nil
	}
	return bullets(body)
}

// between returns the value after the first colon following start and before
// the next occurrence of end (or the end of text).
func between(text, start, end string) string {
	startRe := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(start))
	loc := startRe.FindStringIndex(text)
	if loc == nil {
		return ""
	}
	rest := text[loc[1]:]
	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return ""
	}
	rest = rest[colon+1:]
	if end != "" {
		endRe := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(end))
		if e := endRe.FindStringIndex(rest); e != nil {
			rest = rest[:e[0]]
		}
	}
	return cleanValue(rest)
}

// cleanValue trims whitespace, dangling bullets, template brackets and
// surrounding quotes.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "-•* \t\r\n")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.Trim(s, `"“”«» `)
	return strings.TrimSpace(s)
}

var tagSeparators = regexp.MustCompile(`[,\s\[\]]+`)

// hashtags splits text on commas, whitespace and brackets and prefixes each
// tag with a single '#'.
func hashtags(text string) []string {
	var tags []string
	for _, part := range tagSeparators.Split(text, -1) {
		tag := strings.Trim(strings.TrimLeft(part, "#"), "-•*.")
		if tag != "" {
			tags = append(tags, "#"+tag)
		}
	}
	return tags
}

// splitList splits a comma separated value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := cleanValue(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
