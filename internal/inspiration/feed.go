package inspiration

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/mmcdole/gofeed"
)

const (
	maxPerFeed = 20
	daysBack   = 14
)

// Headline is a recent feed entry.
type Headline struct {
	Title     string
	Source    string
	Published time.Time
	Summary   string
}

func (h Headline) String() string {
	return fmt.Sprintf("%s (%s)", h.Title, h.Source)
}

// Headlines returns up to the configured number of recent headlines,
// entries mentioning the sector first, then newest first.
func (s *Source) Headlines(ctx context.Context, sector string) []string {
	if len(s.feeds) == 0 || s.maxHeadlines <= 0 {
		return nil
	}

	cutoff := s.now().AddDate(0, 0, -daysBack)
	parser := gofeed.NewParser()
	parser.Client = s.client

	var all []Headline
	for _, fc := range s.feeds {
		name := fc.Name
		if name == "" {
			name = sourceName(fc.URL)
		}

		entries, err := parseFeed(ctx, parser, fc.URL, name, cutoff)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, entries...)
		log.Printf("Parsed %d headlines from %s", len(entries), name)
	}

	words := keywords(sector)
	sort.SliceStable(all, func(i, j int) bool {
		ri, rj := relevant(all[i], words), relevant(all[j], words)
		if ri != rj {
			return ri
		}
		return all[i].Published.After(all[j].Published)
	})

	var out []string
	seen := map[string]bool{}
	for _, h := range all {
		key := strings.ToLower(h.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h.String())
		if len(out) == s.maxHeadlines {
			break
		}
	}
	return out
}

func parseFeed(ctx context.Context, parser *gofeed.Parser, feedURL, source string, cutoff time.Time) ([]Headline, error) {
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var entries []Headline
	for _, item := range feed.Items {
		if len(entries) >= maxPerFeed {
			break
		}
		h, ok := parseItem(item, source)
		if !ok {
			continue
		}
		if h.Published.IsZero() || !h.Published.Before(cutoff) {
			entries = append(entries, h)
		}
	}
	return entries, nil
}

func parseItem(item *gofeed.Item, source string) (Headline, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return Headline{}, false
	}

	h := Headline{Title: title, Source: source}
	if item.PublishedParsed != nil {
		h.Published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		h.Published = *item.UpdatedParsed
	}
	if item.Description != "" {
		h.Summary = stripHTML(item.Description)
	}
	return h, true
}

// keywords splits a sector name into lowercase words worth matching.
func keywords(sector string) []string {
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(sector), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len([]rune(w)) > 3 {
			words = append(words, w)
		}
	}
	return words
}

func relevant(h Headline, words []string) bool {
	text := strings.ToLower(h.Title + " " + h.Summary)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func stripHTML(text string) string {
	var result strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			result.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	s := strings.NewReplacer(
		"&nbsp;", " ", "&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&#39;", "'",
	).Replace(result.String())
	return strings.Join(strings.Fields(s), " ")
}

func sourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "blog.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	name := host
	if len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
