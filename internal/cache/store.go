package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ghtrend/internal/trending"

	_ "modernc.org/sqlite"
)

// Store is the persistent snapshot tier. It survives restarts so a fresh
// launch can paint the dashboard before any network round trip.
type Store struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	s := &Store{readDB: readDB, writeDB: writeDB}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots(fetched_at);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		errs = append(errs, s.readDB.Close())
	}
	if s.writeDB != nil {
		errs = append(errs, s.writeDB.Close())
	}
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// PutSnapshot replaces the stored listing for a key, stamping fetched_at now.
func (s *Store) PutSnapshot(key string, repos []trending.Repository) error {
	payload, err := json.Marshal(repos)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", key, err)
	}
	_, err = s.writeDB.Exec(`
		INSERT INTO snapshots (key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, key, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upserting snapshot %s: %w", key, err)
	}
	return nil
}

// GetSnapshot returns a stored listing no older than maxAge. A stale or
// missing snapshot reports ok=false without error.
func (s *Store) GetSnapshot(key string, maxAge time.Duration) ([]trending.Repository, bool, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := s.readDB.QueryRow(
		"SELECT payload, fetched_at FROM snapshots WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying snapshot %s: %w", key, err)
	}
	if maxAge > 0 && time.Since(fetchedAt) >= maxAge {
		return nil, false, nil
	}

	var repos []trending.Repository
	if err := json.Unmarshal([]byte(payload), &repos); err != nil {
		return nil, false, fmt.Errorf("decoding snapshot %s: %w", key, err)
	}
	return repos, true, nil
}

// Prune deletes snapshots fetched longer ago than the retention period and
// returns how many were removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := s.writeDB.Exec("DELETE FROM snapshots WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports the snapshot count and on-disk size of the database file.
func (s *Store) Stats(dbPath string) (int64, int64, error) {
	var count int64
	if err := s.readDB.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting snapshots: %w", err)
	}
	info, err := os.Stat(dbPath)
	if err != nil {
		return 0, 0, fmt.Errorf("stat db file: %w", err)
	}
	return count, info.Size(), nil
}

func (s *Store) NeedsRefresh(interval time.Duration) bool {
	value, err := s.getMeta("last_refresh")
	if err != nil {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return true
	}
	return time.Since(t) > interval
}

func (s *Store) SetLastRefresh() error {
	return s.setMeta("last_refresh", time.Now().Format(time.RFC3339))
}

func (s *Store) setMeta(key, value string) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (s *Store) getMeta(key string) (string, error) {
	var value string
	err := s.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	return value, err
}
