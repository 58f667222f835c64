package stats

import (
	"database/sql"
	"time"
)

type Store struct {
	db *sql.DB
}

// FileStat aggregates every response served for one data file.
type FileStat struct {
	Path         string    `json:"path"`
	Hits         int64     `json:"hits"`
	BytesServed  int64     `json:"bytesServed"`
	LastAccessed time.Time `json:"lastAccessed"`
}
