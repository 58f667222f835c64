package stats

import (
	"database/sql"
	"fmt"
	"time"
)

func NewStatsStore(db *sql.DB) (*Store, error) {
	ss := &Store{db: db}
	if err := ss.initialize(); err != nil {
		return nil, err
	}
	return ss, nil
}

func (ss *Store) initialize() error {
	_, err := ss.db.Exec(`
		CREATE TABLE IF NOT EXISTS file_stats (
			path TEXT PRIMARY KEY,
			hits INTEGER NOT NULL DEFAULT 0,
			bytes_served INTEGER NOT NULL DEFAULT 0,
			last_accessed TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS file_stats_last_accessed ON file_stats (last_accessed);
	`)
	return err
}

// Record adds one served response for path.
func (ss *Store) Record(path string, bytes int64, at time.Time) error {
	_, err := ss.db.Exec(`
		INSERT INTO file_stats (path, hits, bytes_served, last_accessed)
		VALUES (?, 1, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hits = hits + 1,
			bytes_served = bytes_served + excluded.bytes_served,
			last_accessed = excluded.last_accessed
	`, path, bytes, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to record access to %s: %v", path, err)
	}
	return nil
}

func (ss *Store) Get(path string) (*FileStat, error) {
	var stat FileStat
	err := ss.db.QueryRow(`
		SELECT path, hits, bytes_served, last_accessed
		FROM file_stats
		WHERE path = ?
	`, path).Scan(&stat.Path, &stat.Hits, &stat.BytesServed, &stat.LastAccessed)
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// List returns up to limit entries, most recently accessed first.
func (ss *Store) List(limit int) ([]FileStat, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	rows, err := ss.db.Query(`
		SELECT path, hits, bytes_served, last_accessed
		FROM file_stats
		ORDER BY last_accessed DESC, path
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file stats: %v", err)
	}
	defer rows.Close()
	stats := make([]FileStat, 0)
	for rows.Next() {
		var stat FileStat
		if err := rows.Scan(&stat.Path, &stat.Hits, &stat.BytesServed, &stat.LastAccessed); err != nil {
			return nil, fmt.Errorf("failed to scan file stat: %v", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over file stats: %v", err)
	}
	return stats, nil
}
