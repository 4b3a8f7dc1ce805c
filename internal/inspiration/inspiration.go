// Package inspiration gathers optional prompt context: recent headlines from
// configured feeds and the readable text of the brand's website. Every
// failure degrades to empty context.
package inspiration

import (
	"net/http"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/config"
)

// Source fetches inspiration context.
type Source struct {
	feeds        []config.Feed
	maxHeadlines int
	fetchWebsite bool
	client       *http.Client
	now          func() time.Time
}

// New creates a Source from the inspiration config.
func New(cfg config.Inspiration) *Source {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Source{
		feeds:        cfg.Feeds,
		maxHeadlines: cfg.MaxHeadlines,
		fetchWebsite: cfg.FetchWebsite,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		now: time.Now,
	}
}
