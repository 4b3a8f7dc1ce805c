package imagecache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
	"github.com/TobiSchelling/BriefStudio/internal/database"
)

// Local keeps the cache in the SQLite database.
type Local struct {
	db  *database.DB
	now func() time.Time
}

// NewLocal creates a Cache over db.
func NewLocal(db *database.DB) *Local {
	return &Local{db: db, now: time.Now}
}

func (c *Local) Add(ctx context.Context, e Entry) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	row := database.CacheEntry{
		CacheKey:  Key(e.Prompt, e.Params, e.Metadata),
		Prompt:    e.Prompt,
		Params:    string(params),
		Metadata:  string(meta),
		ImageURL:  e.ImageURL,
		Score:     e.Score,
		CreatedAt: database.Timestamp(c.now()),
	}
	if e.BriefID != "" {
		row.BriefID = &e.BriefID
	}
	if e.Validation != nil {
		v, err := json.Marshal(e.Validation)
		if err != nil {
			return fmt.Errorf("encoding validation: %w", err)
		}
		s := string(v)
		row.Validation = &s
	}

	id, err := c.db.InsertCacheEntry(row)
	if err != nil {
		return fmt.Errorf("caching image: %w", err)
	}
	if id == 0 {
		log.Printf("Image already cached under %s", row.CacheKey[:12])
	}
	return nil
}

func (c *Local) Find(ctx context.Context, prompt string, params brief.GenerationParams, meta Metadata) (*Hit, error) {
	row, err := c.db.FindCacheEntry(Key(prompt, params, meta))
	if err != nil {
		return nil, fmt.Errorf("looking up cached image: %w", err)
	}
	if row == nil {
		return nil, nil
	}

	hit := &Hit{ImageURL: row.ImageURL, Score: row.Score}
	if row.Validation != nil {
		var v brief.Validation
		if err := json.Unmarshal([]byte(*row.Validation), &v); err != nil {
			log.Printf("Warning: unreadable validation for cached image %d: %v", row.ID, err)
		} else {
			hit.Validation = &v
		}
	}
	return hit, nil
}

func (c *Local) Stats(ctx context.Context) (Stats, error) {
	s, err := c.db.GetCacheStats()
	if err != nil {
		return Stats{}, fmt.Errorf("reading cache stats: %w", err)
	}
	return Stats{TotalImages: s.TotalImages, AverageScore: s.AverageScore}, nil
}

func (c *Local) Clear(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 0 {
		return 0, ErrInvalidAge
	}
	cutoff := c.now().AddDate(0, 0, -olderThanDays)
	n, err := c.db.DeleteCacheOlderThan(database.Timestamp(cutoff))
	if err != nil {
		return 0, fmt.Errorf("clearing image cache: %w", err)
	}
	return n, nil
}
