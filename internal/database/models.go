package database

// ResultRow is a stored run result. Data holds the JSON document; the other
// columns are copied out of it for listing.
type ResultRow struct {
	BriefID     string
	CompanyName string
	Sector      string
	Data        string
	CreatedAt   string
	UpdatedAt   string
}

// ResultSummary is a listing entry for a stored result.
type ResultSummary struct {
	BriefID     string
	CompanyName string
	Sector      string
	CreatedAt   string
	UpdatedAt   string
}

// CacheEntry is a cached image keyed by its prompt, params and metadata.
// Params, Metadata and Validation are JSON documents.
type CacheEntry struct {
	ID         int64
	CacheKey   string
	Prompt     string
	BriefID    *string
	Params     string
	Metadata   string
	ImageURL   string
	Score      int
	Validation *string
	CreatedAt  string
}

// CacheStats aggregates the image cache.
type CacheStats struct {
	TotalImages  int
	AverageScore float64
	Oldest       *string
	Newest       *string
}
