package inspiration

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

const (
	minWebsiteText = 100
	maxWebsiteText = 3000
)

// Website returns the readable text of the brand's site, cut to a prompt
// friendly length. Empty when disabled, unreachable or too thin.
func (s *Source) Website(ctx context.Context, site string) string {
	if !s.fetchWebsite || strings.TrimSpace(site) == "" {
		return ""
	}

	text, err := s.fetchText(ctx, site)
	if err != nil {
		log.Printf("Could not read website %s: %v", site, err)
		return ""
	}
	if len(text) < minWebsiteText {
		log.Printf("No extractable content from: %s", site)
		return ""
	}
	return cut(text, maxWebsiteText)
}

func (s *Source) fetchText(ctx context.Context, site string) (string, error) {
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	parsed, err := url.Parse(site)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "BriefStudio/1.0 (brand research)")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%s returned %d", site, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(article.TextContent), " "), nil
}

// cut shortens text to at most n bytes at a word boundary.
func cut(text string, n int) string {
	if len(text) <= n {
		return text
	}
	if i := strings.LastIndex(text[:n], " "); i > 0 {
		return text[:i]
	}
	return strings.ToValidUTF8(text[:n], "")
}
