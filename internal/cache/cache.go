// Package cache persists the latest snapshot per feed to a local sqlite
// file so a restarted console can render stale data immediately while
// the realtime layer reconnects.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no snapshot is stored for a feed.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one persisted feed snapshot.
type Snapshot struct {
	Feed              string
	Payload           []byte
	UpdatedUnixMillis int64
}

// Store is a feed-keyed snapshot store backed by sqlite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot store at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			feed TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			updated_unix_millis INTEGER NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Put stores the latest snapshot for a feed, replacing any previous one.
func (s *Store) Put(ctx context.Context, feed string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (feed, payload, updated_unix_millis)
		 VALUES (?, ?, ?)
		 ON CONFLICT(feed) DO UPDATE SET
		 	payload = excluded.payload,
		 	updated_unix_millis = excluded.updated_unix_millis`,
		feed, payload, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put snapshot for %s: %w", feed, err)
	}
	return nil
}

// Get returns the stored snapshot for a feed, or ErrNotFound.
func (s *Store) Get(ctx context.Context, feed string) (*Snapshot, error) {
	snap := &Snapshot{Feed: feed}
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, updated_unix_millis FROM snapshots WHERE feed = ?",
		feed,
	).Scan(&snap.Payload, &snap.UpdatedUnixMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot for %s: %w", feed, err)
	}
	return snap, nil
}

// Delete removes a stored snapshot. Deleting a missing feed is not an
// error.
func (s *Store) Delete(ctx context.Context, feed string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE feed = ?", feed); err != nil {
		return fmt.Errorf("delete snapshot for %s: %w", feed, err)
	}
	return nil
}

// Feeds lists the feeds with stored snapshots.
func (s *Store) Feeds(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT feed FROM snapshots ORDER BY feed")
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []string
	for rows.Next() {
		var feed string
		if err := rows.Scan(&feed); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
