// Package results persists run Results keyed by briefId, either in the local
// SQLite database or through the backend's /results endpoints.
package results

import (
	"context"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// Summary is a listing entry for a stored run.
type Summary struct {
	BriefID     string    `json:"briefId"`
	CompanyName string    `json:"companyName"`
	Sector      string    `json:"sector,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Store is the result persistence collaborator. All writes are upserts keyed
// by briefId.
type Store interface {
	// Save writes r whole, creating or replacing the stored Result.
	Save(ctx context.Context, r *brief.Result) error
	// Update merges p into the stored Result, creating it when absent.
	Update(ctx context.Context, briefID string, p brief.Patch) error
	// Get returns the stored Result, or nil when there is none.
	Get(ctx context.Context, briefID string) (*brief.Result, error)
	// List returns stored runs, most recently updated first.
	List(ctx context.Context, limit int) ([]Summary, error)
}
