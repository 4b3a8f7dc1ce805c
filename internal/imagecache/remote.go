package imagecache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
)

// Remote uses the backend's /image-cache endpoints.
type Remote struct {
	client *gateway.Client
}

// NewRemote creates a Cache backed by client.
func NewRemote(client *gateway.Client) *Remote {
	return &Remote{client: client}
}

func (c *Remote) Add(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	fields := map[string]string{
		"imageUrl":  e.ImageURL,
		"imageData": string(data),
	}
	if err := c.client.PostForm(ctx, "/image-cache", fields, nil); err != nil {
		return fmt.Errorf("caching image: %w", err)
	}
	return nil
}

type findResponse struct {
	Found bool `json:"found"`
	Hit
}

func (c *Remote) Find(ctx context.Context, prompt string, params brief.GenerationParams, meta Metadata) (*Hit, error) {
	p, _ := json.Marshal(params)
	m, _ := json.Marshal(meta)
	q := url.Values{}
	q.Set("prompt", prompt)
	q.Set("params", string(p))
	q.Set("metadata", string(m))

	var resp findResponse
	if err := c.client.DoJSON(ctx, http.MethodGet, "/image-cache?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("looking up cached image: %w", err)
	}
	if !resp.Found {
		return nil, nil
	}
	return &resp.Hit, nil
}

func (c *Remote) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	if err := c.client.DoJSON(ctx, http.MethodGet, "/image-cache/stats", nil, &s); err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return s, nil
}

func (c *Remote) Clear(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 0 {
		return 0, ErrInvalidAge
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	body := map[string]int{"olderThanDays": olderThanDays}
	if err := c.client.DoJSON(ctx, http.MethodPost, "/image-cache/cleanup", body, &resp); err != nil {
		return 0, fmt.Errorf("clearing image cache: %w", err)
	}
	return resp.Deleted, nil
}
