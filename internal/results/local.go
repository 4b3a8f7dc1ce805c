package results

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/database"
)

// Local stores results in the SQLite database.
type Local struct {
	db  *database.DB
	now func() time.Time

	// mu serializes read-modify-write updates.
	mu sync.Mutex
}

// NewLocal creates a Store over db.
func NewLocal(db *database.DB) *Local {
	return &Local{db: db, now: time.Now}
}

func (s *Local) Save(ctx context.Context, r *brief.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(r)
}

func (s *Local) Update(ctx context.Context, briefID string, p brief.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.get(briefID)
	if err != nil {
		return err
	}
	if r == nil {
		r = &brief.Result{BriefID: briefID}
	}
	r.Apply(p)
	return s.save(r)
}

func (s *Local) Get(ctx context.Context, briefID string) (*brief.Result, error) {
	return s.get(briefID)
}

func (s *Local) List(ctx context.Context, limit int) ([]Summary, error) {
	rows, err := s.db.ListResults(limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}

	summaries := make([]Summary, 0, len(rows))
	for _, row := range rows {
		created, _ := database.ParseTimestamp(row.CreatedAt)
		updated, _ := database.ParseTimestamp(row.UpdatedAt)
		summaries = append(summaries, Summary{
			BriefID:     row.BriefID,
			CompanyName: row.CompanyName,
			Sector:      row.Sector,
			CreatedAt:   created,
			UpdatedAt:   updated,
		})
	}
	return summaries, nil
}

func (s *Local) get(briefID string) (*brief.Result, error) {
	row, err := s.db.GetResult(briefID)
	if err != nil {
		return nil, fmt.Errorf("reading result %s: %w", briefID, err)
	}
	if row == nil {
		return nil, nil
	}

	var r brief.Result
	if err := json.Unmarshal([]byte(row.Data), &r); err != nil {
		return nil, fmt.Errorf("decoding result %s: %w", briefID, err)
	}
	return &r, nil
}

// save stamps r and upserts it. The stored creation time wins over r's.
func (s *Local) save(r *brief.Result) error {
	if r.BriefID == "" {
		return fmt.Errorf("saving result: empty brief id")
	}

	now := s.now().UTC()
	existing, err := s.db.GetResult(r.BriefID)
	if err != nil {
		return fmt.Errorf("reading result %s: %w", r.BriefID, err)
	}
	switch {
	case existing != nil:
		if created, err := database.ParseTimestamp(existing.CreatedAt); err == nil {
			r.CreatedAt = created
		}
	case r.CreatedAt.IsZero():
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", r.BriefID, err)
	}

	row := database.ResultRow{
		BriefID:   r.BriefID,
		Data:      string(data),
		CreatedAt: database.Timestamp(r.CreatedAt),
		UpdatedAt: database.Timestamp(r.UpdatedAt),
	}
	if r.BriefData != nil {
		row.CompanyName = r.BriefData.CompanyName
		row.Sector = r.BriefData.Sector
	}
	if err := s.db.UpsertResult(row); err != nil {
		return fmt.Errorf("writing result %s: %w", r.BriefID, err)
	}
	return nil
}
