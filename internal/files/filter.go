package files

import (
	"sort"
	"strings"
)

// ExtensionFilter decides which files may be listed and served.
type ExtensionFilter struct {
	suffixes []string
}

func NewExtensionFilter(suffixes []string) *ExtensionFilter {
	seen := make(map[string]bool, len(suffixes))
	normalized := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == "." {
			continue
		}
		if !strings.HasPrefix(s, ".") {
			s = "." + s
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		normalized = append(normalized, s)
	}
	// Longest first so Match returns .vcf.gz before .gz
	sort.SliceStable(normalized, func(i, j int) bool {
		return len(normalized[i]) > len(normalized[j])
	})
	return &ExtensionFilter{suffixes: normalized}
}

func (f *ExtensionFilter) IsAllowed(filename string) bool {
	_, ok := f.Match(filename)
	return ok
}

// Match returns the longest allow-listed suffix of filename.
func (f *ExtensionFilter) Match(filename string) (string, bool) {
	name := strings.ToLower(filename)
	for _, s := range f.suffixes {
		if strings.HasSuffix(name, s) {
			return s, true
		}
	}
	return "", false
}

func (f *ExtensionFilter) Suffixes() []string {
	out := make([]string, len(f.suffixes))
	copy(out, f.suffixes)
	return out
}
