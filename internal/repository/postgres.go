package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/beacon/internal/models"
)

// EnsureSchema creates the search log table if it does not exist yet.
// Called once at startup.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS searches (
			id BIGSERIAL PRIMARY KEY,
			query TEXT NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	_, err := r.db.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create searches table: %w", err)
	}

	return nil
}

// LogSearch records one search request. Callers treat this as
// best-effort: a failed insert is logged and never fails the search
// itself.
func (r *Repository) LogSearch(ctx context.Context, query string, lat, lon float64) error {
	stmt := `
		INSERT INTO searches (query, lat, lon)
		VALUES ($1, $2, $3);
	`

	_, err := r.db.Exec(ctx, stmt, query, lat, lon)
	if err != nil {
		return fmt.Errorf("failed to insert search record: %w", err)
	}

	r.log.DebugContext(ctx, "Search logged", "query", query, "lat", lat, "lon", lon)
	return nil
}

// RecentSearches returns the newest log entries, newest first, limited
// to the specified count.
func (r *Repository) RecentSearches(ctx context.Context, limit int) ([]models.SearchRecord, error) {
	query := `
		SELECT id, query, lat, lon, created_at
		FROM searches
		ORDER BY created_at DESC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent searches: %w", err)
	}
	defer rows.Close()

	var records []models.SearchRecord
	for rows.Next() {
		var rec models.SearchRecord
		if errScan := rows.Scan(&rec.ID, &rec.Query, &rec.Lat, &rec.Lon, &rec.CreatedAt); errScan != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", errScan)
		}
		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}
