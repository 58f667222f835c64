package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

func NewFileService(config *Config) (*FileService, error) {
	if config == nil || config.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	root, err := filepath.Abs(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %v", err)
	}
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("error creating data directory: %v", err)
	}
	return &FileService{
		root:   root,
		filter: NewExtensionFilter(config.AllowedExtensions),
	}, nil
}

func (u *FileService) Root() string {
	return u.root
}

func (u *FileService) Filter() *ExtensionFilter {
	return u.filter
}

// Resolve maps a slash separated path relative to the data root onto the
// filesystem. Anything that cleans to a location outside the root is
// rejected with ErrForbidden.
func (u *FileService) Resolve(rel string) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("invalid path %q: %w", rel, ErrForbidden)
	}
	full := filepath.Join(u.root, filepath.FromSlash(rel))
	r, err := filepath.Rel(u.root, full)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", rel, ErrForbidden)
	}
	if r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) || filepath.IsAbs(r) {
		return "", fmt.Errorf("path %q escapes data directory: %w", rel, ErrForbidden)
	}
	return full, nil
}

// ListFiles walks the data root depth first and returns every directory and
// every allowed file as a flat list.
func (u *FileService) ListFiles() ([]FileEntry, error) {
	if _, err := os.ReadDir(u.root); err != nil {
		return nil, fmt.Errorf("failed to read data directory: %v", err)
	}
	return u.walk(u.root), nil
}

func (u *FileService) walk(dir string) []FileEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("Failed to read directory", "dir", dir, "error", err)
		return nil
	}

	results := make([]FileEntry, 0, len(entries))
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		info, descend, err := u.stat(full, entry)
		if err != nil {
			slog.Warn("Failed to stat entry", "path", full, "error", err)
			continue
		}
		if info.IsDir() {
			results = append(results, u.entry(full, info))
			// Symlinked directories are listed but never followed
			if descend {
				results = append(results, u.walk(full)...)
			}
			continue
		}
		if info.Mode().IsRegular() && u.filter.IsAllowed(entry.Name()) {
			results = append(results, u.entry(full, info))
		}
	}
	return results
}

// stat follows symlinks. descend is false for anything reached through one.
func (u *FileService) stat(full string, entry fs.DirEntry) (fs.FileInfo, bool, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(full)
		return info, false, err
	}
	info, err := entry.Info()
	return info, true, err
}

// Relative returns the slash separated path of full below the data root.
func (u *FileService) Relative(full string) string {
	rel, err := filepath.Rel(u.root, full)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func (u *FileService) entry(full string, info fs.FileInfo) FileEntry {
	e := FileEntry{
		Name: info.Name(),
		Path: u.Relative(full),
	}
	if info.IsDir() {
		e.Type = TypeDirectory
		return e
	}
	mod := info.ModTime()
	e.Type = TypeFile
	e.Size = info.Size()
	e.Modified = &mod
	return e
}

// Browse lists a single directory level below the data root. Only
// directories and allowed files are returned.
func (u *FileService) Browse(rel string) ([]BrowseItem, error) {
	dirPath, err := u.Resolve(rel)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dirPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("directory %q: %w", rel, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %s: %v", dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", rel, ErrNotDirectory)
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %v", dirPath, err)
	}
	items := make([]BrowseItem, 0, len(entries))
	for _, entry := range entries {
		full := filepath.Join(dirPath, entry.Name())
		info, _, err := u.stat(full, entry)
		if err != nil {
			slog.Warn("Failed to stat entry", "path", full, "error", err)
			continue
		}
		item := BrowseItem{
			FileEntry: u.entry(full, info),
			Allowed:   info.IsDir() || (info.Mode().IsRegular() && u.filter.IsAllowed(entry.Name())),
		}
		if item.Allowed {
			items = append(items, item)
		}
	}
	return items, nil
}

// Stat resolves rel and checks that it names an allowed regular file.
func (u *FileService) Stat(rel string) (string, fs.FileInfo, error) {
	filePath, err := u.Resolve(rel)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("file %q: %w", rel, ErrNotFound)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat file %s: %v", filePath, err)
	}
	if !info.Mode().IsRegular() {
		return "", nil, fmt.Errorf("%q is not a regular file: %w", rel, ErrNotFound)
	}
	if !u.filter.IsAllowed(info.Name()) {
		return "", nil, fmt.Errorf("file type of %q: %w", rel, ErrForbidden)
	}
	return filePath, info, nil
}

// OpenFile opens an allowed file for reading. The caller closes it.
func (u *FileService) OpenFile(rel string) (*os.File, fs.FileInfo, error) {
	filePath, info, err := u.Stat(rel)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file %s: %v", filePath, err)
	}
	return f, info, nil
}

// Exists reports whether rel names a servable file.
func (u *FileService) Exists(rel string) bool {
	_, _, err := u.Stat(rel)
	return err == nil
}

var fastaSuffixes = []string{".fasta", ".fa"}

// ListGenomes returns the FASTA files found below the data root, each noting
// whether a .fai index sits next to it.
func (u *FileService) ListGenomes() ([]Genome, error) {
	entries, err := u.ListFiles()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Type == TypeFile {
			present[e.Path] = true
		}
	}

	genomes := make([]Genome, 0)
	for _, e := range entries {
		if e.Type != TypeFile {
			continue
		}
		suffix, ok := fastaSuffix(e.Name)
		if !ok {
			continue
		}
		genomes = append(genomes, Genome{
			Name:        e.Name,
			DisplayName: e.Name[:len(e.Name)-len(suffix)],
			Path:        e.Path,
			HasIndex:    present[e.Path+".fai"],
		})
	}
	return genomes, nil
}

func fastaSuffix(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, s := range fastaSuffixes {
		if strings.HasSuffix(lower, s) && len(name) > len(s) {
			return s, true
		}
	}
	return "", false
}

