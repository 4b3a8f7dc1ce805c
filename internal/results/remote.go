package results

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/gateway"
)

// Remote stores results through the backend's /results endpoints.
type Remote struct {
	client *gateway.Client
}

// NewRemote creates a Store backed by client.
func NewRemote(client *gateway.Client) *Remote {
	return &Remote{client: client}
}

func (s *Remote) Save(ctx context.Context, r *brief.Result) error {
	if err := s.client.DoJSON(ctx, http.MethodPost, "/results", r, nil); err != nil {
		return fmt.Errorf("saving result %s: %w", r.BriefID, err)
	}
	return nil
}

func (s *Remote) Update(ctx context.Context, briefID string, p brief.Patch) error {
	if err := s.client.DoJSON(ctx, http.MethodPatch, resultPath(briefID), p, nil); err != nil {
		return fmt.Errorf("updating result %s: %w", briefID, err)
	}
	return nil
}

func (s *Remote) Get(ctx context.Context, briefID string) (*brief.Result, error) {
	var r brief.Result
	err := s.client.DoJSON(ctx, http.MethodGet, resultPath(briefID), nil, &r)
	if err != nil {
		var se *gateway.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("reading result %s: %w", briefID, err)
	}
	return &r, nil
}

func (s *Remote) List(ctx context.Context, limit int) ([]Summary, error) {
	path := "/results"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var summaries []Summary
	if err := s.client.DoJSON(ctx, http.MethodGet, path, nil, &summaries); err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	return summaries, nil
}

func resultPath(briefID string) string {
	return "/results/" + url.PathEscape(briefID)
}
