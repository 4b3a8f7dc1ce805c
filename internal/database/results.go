package database

import (
	"database/sql"
	"time"
)

// TimeLayout is the fixed-width UTC layout of stored timestamps, so that
// they compare correctly as text.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// Timestamp formats t the way rows store it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTimestamp parses a stored timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}

// UpsertResult inserts a result or replaces the stored document of an
// existing one, keeping its created_at.
func (db *DB) UpsertResult(r ResultRow) error {
	_, err := db.conn.Exec(
		`INSERT INTO results (brief_id, company_name, sector, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(brief_id) DO UPDATE SET
			company_name = excluded.company_name,
			sector = excluded.sector,
			data = excluded.data,
			updated_at = excluded.updated_at`,
		r.BriefID, r.CompanyName, r.Sector, r.Data, r.CreatedAt, r.UpdatedAt,
	)
	return err
}

// GetResult returns the result stored under briefID.
func (db *DB) GetResult(briefID string) (*ResultRow, error) {
	row := db.conn.QueryRow(
		`SELECT brief_id, company_name, sector, data, created_at, updated_at
		FROM results WHERE brief_id = ?`, briefID,
	)

	var r ResultRow
	if err := row.Scan(&r.BriefID, &r.CompanyName, &r.Sector, &r.Data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// ListResults returns stored runs newest first. Rows without a company name
// (image sessions saved under a generation ID) are skipped.
func (db *DB) ListResults(limit int) ([]ResultSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(
		`SELECT brief_id, company_name, sector, created_at, updated_at
		FROM results WHERE company_name != ''
		ORDER BY updated_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ResultSummary
	for rows.Next() {
		var s ResultSummary
		if err := rows.Scan(&s.BriefID, &s.CompanyName, &s.Sector, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, rows.Err()
}

// DeleteResult removes a stored result.
func (db *DB) DeleteResult(briefID string) error {
	_, err := db.conn.Exec("DELETE FROM results WHERE brief_id = ?", briefID)
	return err
}
