// Package archive stores photo search results in a PostGIS table so they
// can be queried spatially after the API has moved on.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/1F47E/geo-photo-search/pkg/models"
	_ "github.com/lib/pq"
)

const (
	defaultTable = "photos"
	batchSize    = 1000
)

// Archive is a PostGIS backed photo store
type Archive struct {
	db    *sql.DB
	table string
}

// Open connects to the database behind dsn and checks the connection
func Open(ctx context.Context, dsn string) (*Archive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return New(db), nil
}

// New wraps an existing connection pool
func New(db *sql.DB) *Archive {
	return &Archive{db: db, table: defaultTable}
}

func schemaQueries(table string) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			file_url TEXT NOT NULL DEFAULT '',
			location GEOMETRY(POINT, 4326),
			raw JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_location ON %s USING GIST(location);`, table, table),
	}
}

// InitSchema creates the table and its spatial index when missing
func (a *Archive) InitSchema(ctx context.Context) error {
	for _, query := range schemaQueries(a.table) {
		if _, err := a.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

func upsertQuery(table string) string {
	return fmt.Sprintf(`
		INSERT INTO %s (id, title, photo_url, file_url, location, raw, fetched_at)
		VALUES ($1, $2, $3, $4,
			CASE WHEN $5::float8 IS NULL THEN NULL ELSE ST_SetSRID(ST_MakePoint($5, $6), 4326) END,
			$7, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			photo_url = EXCLUDED.photo_url,
			file_url = EXCLUDED.file_url,
			location = EXCLUDED.location,
			raw = EXCLUDED.raw,
			fetched_at = EXCLUDED.fetched_at
	`, table)
}

// row holds the column values written for one photo
type row struct {
	id, title, photoURL, fileURL string
	lon, lat                     sql.NullFloat64
	raw                          []byte
}

func toRow(p *models.Photo) (row, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return row{}, fmt.Errorf("failed to encode photo %s: %w", p.Key(), err)
	}
	r := row{
		id:       p.Key(),
		title:    p.Title,
		photoURL: p.PhotoURL,
		fileURL:  p.FileURL,
		raw:      raw,
	}
	if p.Location != nil {
		r.lon = sql.NullFloat64{Float64: p.Location.Lon, Valid: true}
		r.lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
	}
	return r, nil
}

// SavePhotos upserts photos by key in batched transactions and returns the
// number written. Photos without a key are skipped.
func (a *Archive) SavePhotos(ctx context.Context, photos []*models.Photo) (int, error) {
	written := 0
	for start := 0; start < len(photos); start += batchSize {
		end := min(start+batchSize, len(photos))
		n, err := a.saveBatch(ctx, photos[start:end])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (a *Archive) saveBatch(ctx context.Context, photos []*models.Photo) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertQuery(a.table))
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, p := range photos {
		if p == nil || p.Key() == "" {
			continue
		}
		r, err := toRow(p)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if _, err := stmt.ExecContext(ctx, r.id, r.title, r.photoURL, r.fileURL, r.lon, r.lat, r.raw); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to upsert photo %s: %w", r.id, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return written, nil
}

// QueryBox returns archived photos inside box, decoded from their raw JSON
func (a *Archive) QueryBox(ctx context.Context, box models.BoundingBox) ([]*models.Photo, error) {
	query := fmt.Sprintf(`
		SELECT raw
		FROM %s
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)
		ORDER BY id
	`, a.table)

	rows, err := a.db.QueryContext(ctx, query,
		box.MinLon(), box.MinLat(),
		box.MaxLon(), box.MaxLat())
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []*models.Photo
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var p models.Photo
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("failed to decode archived photo: %w", err)
		}
		results = append(results, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

// Count returns the number of archived photos
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", a.table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (a *Archive) Close() error {
	return a.db.Close()
}
