// Package store persists extracted metadata in a local sqlite database
// with a freshness TTL. The extraction engine never touches it; callers
// use it cache-aside around Extract.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/tubemeta/tubemeta/engine/extract"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	fetched_at INTEGER NOT NULL
);
`

// Store is a TTL cache of VideoMetadata keyed by video id.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger
	now func() time.Time
}

// Open opens (and if needed creates) the database at path. Records older
// than ttl count as misses.
func Open(path string, ttl time.Duration, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &Store{db: db, ttl: ttl, log: log, now: time.Now}, nil
}

// Get returns the cached record for id, reporting a miss when absent or
// stale.
func (s *Store) Get(ctx context.Context, id string) (extract.VideoMetadata, bool, error) {
	var meta extract.VideoMetadata
	var payload string
	var fetchedAt int64

	err := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM videos WHERE id = ?`, id,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, fmt.Errorf("read cache row: %w", err)
	}

	if s.now().Sub(time.Unix(fetchedAt, 0)) > s.ttl {
		return meta, false, nil
	}
	if err := json.Unmarshal([]byte(payload), &meta); err != nil {
		// Corrupt row; treat as a miss so it gets rewritten.
		s.log.Warn().Str("video_id", id).Err(err).Msg("discarding corrupt cache row")
		return extract.VideoMetadata{}, false, nil
	}
	return meta, true, nil
}

// Put upserts the record for its id.
func (s *Store) Put(ctx context.Context, meta extract.VideoMetadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encode cache row: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO videos (id, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		meta.ID, string(payload), s.now().Unix())
	if err != nil {
		return fmt.Errorf("write cache row: %w", err)
	}
	return nil
}

// Purge deletes every stale row and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.ttl).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
