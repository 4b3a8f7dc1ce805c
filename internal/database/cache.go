package database

import (
	"database/sql"
)

// InsertCacheEntry stores an image under its cache key. Returns 0 when the
// key is already cached.
func (db *DB) InsertCacheEntry(e CacheEntry) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT OR IGNORE INTO image_cache
		(cache_key, prompt, brief_id, params, metadata, image_url, score, validation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CacheKey, e.Prompt, e.BriefID, e.Params, e.Metadata, e.ImageURL, e.Score, e.Validation, e.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return 0, nil
	}
	return result.LastInsertId()
}

// FindCacheEntry returns the entry stored under key.
func (db *DB) FindCacheEntry(key string) (*CacheEntry, error) {
	row := db.conn.QueryRow(
		`SELECT id, cache_key, prompt, brief_id, params, metadata, image_url, score, validation, created_at
		FROM image_cache WHERE cache_key = ?`, key,
	)

	var e CacheEntry
	var params, metadata sql.NullString
	if err := row.Scan(&e.ID, &e.CacheKey, &e.Prompt, &e.BriefID, &params, &metadata,
		&e.ImageURL, &e.Score, &e.Validation, &e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	e.Params = params.String
	e.Metadata = metadata.String
	return &e, nil
}

// GetCacheStats aggregates the cache table.
func (db *DB) GetCacheStats() (*CacheStats, error) {
	var s CacheStats
	var avg sql.NullFloat64
	err := db.conn.QueryRow(
		"SELECT COUNT(*), AVG(score), MIN(created_at), MAX(created_at) FROM image_cache",
	).Scan(&s.TotalImages, &avg, &s.Oldest, &s.Newest)
	if err != nil {
		return nil, err
	}
	s.AverageScore = avg.Float64
	return &s, nil
}

// DeleteCacheOlderThan removes entries created before cutoff and returns how
// many were deleted.
func (db *DB) DeleteCacheOlderThan(cutoff string) (int64, error) {
	result, err := db.conn.Exec("DELETE FROM image_cache WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
