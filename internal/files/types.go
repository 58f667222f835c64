package files

import (
	"errors"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrNotDirectory        = errors.New("not a directory")
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
)

type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
)

type Config struct {
	DataDir           string
	AllowedExtensions []string
}

type FileService struct {
	root   string
	filter *ExtensionFilter
}

// FileEntry is one element of a listing. Path is relative to the data root
// and always slash separated.
type FileEntry struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Type     EntryType  `json:"type"`
	Size     int64      `json:"size"`
	Modified *time.Time `json:"modified,omitempty"`
}

type BrowseItem struct {
	FileEntry
	Allowed bool `json:"allowed"`
}

type Genome struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Path        string `json:"path"`
	HasIndex    bool   `json:"hasIndex"`
}

// ByteRange is an end-inclusive byte range within a file.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}
