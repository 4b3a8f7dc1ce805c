// Package imagecache stores validated images under an exact key built from
// the normalized prompt, the generation parameters and the request metadata.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/TobiSchelling/BriefStudio/internal/brief"
)

// ErrInvalidAge is returned by Clear for a negative age.
var ErrInvalidAge = errors.New("imagecache: age must not be negative")

// Metadata is the request context that takes part in the key.
type Metadata struct {
	Purpose   string `json:"purpose"`
	TimeOfDay string `json:"timeOfDay"`
	Sector    string `json:"sector"`
	Style     string `json:"style"`
}

// Entry is an image to cache.
type Entry struct {
	Prompt     string                 `json:"prompt"`
	BriefID    string                 `json:"briefId,omitempty"`
	Params     brief.GenerationParams `json:"params"`
	Metadata   Metadata               `json:"metadata"`
	ImageURL   string                 `json:"imageUrl"`
	Score      int                    `json:"score"`
	Validation *brief.Validation      `json:"validation,omitempty"`
}

// Hit is a successful lookup.
type Hit struct {
	ImageURL   string            `json:"imageUrl"`
	Score      int               `json:"score"`
	Validation *brief.Validation `json:"validationDetails,omitempty"`
}

// Stats aggregates the cache. TotalSize is only known to remote caches.
type Stats struct {
	TotalImages  int     `json:"totalImages"`
	TotalSize    int64   `json:"totalSize"`
	AverageScore float64 `json:"averageScore"`
}

// Cache is the image cache collaborator.
type Cache interface {
	// Add stores e. Adding an existing key keeps the first entry.
	Add(ctx context.Context, e Entry) error
	// Find returns the entry under the key, or nil when there is none.
	Find(ctx context.Context, prompt string, params brief.GenerationParams, meta Metadata) (*Hit, error)
	Stats(ctx context.Context) (Stats, error)
	// Clear deletes entries older than the given number of days and returns
	// how many were removed.
	Clear(ctx context.Context, olderThanDays int) (int64, error)
}

// NormalizePrompt lowercases prompt and collapses its whitespace.
func NormalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(strings.ToLower(prompt)), " ")
}

// Key returns the hex SHA-256 of the normalized prompt, params and metadata.
func Key(prompt string, params brief.GenerationParams, meta Metadata) string {
	data, _ := json.Marshal(struct {
		Prompt   string                 `json:"prompt"`
		Params   brief.GenerationParams `json:"params"`
		Metadata Metadata               `json:"metadata"`
	}{NormalizePrompt(prompt), params, meta})

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
