package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "results store",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS results (
    brief_id TEXT PRIMARY KEY,
    company_name TEXT NOT NULL DEFAULT '',
    sector TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_updated ON results(updated_at);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "image cache",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS image_cache (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    cache_key TEXT UNIQUE NOT NULL,
    prompt TEXT NOT NULL,
    brief_id TEXT,
    params TEXT,
    metadata TEXT,
    image_url TEXT NOT NULL,
    score INTEGER NOT NULL DEFAULT 0,
    validation TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_image_cache_created ON image_cache(created_at);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
