package files

import (
	"fmt"
	"strconv"
	"strings"
)

const defaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".bam":   "application/octet-stream",
	".bai":   "application/octet-stream",
	".cram":  "application/octet-stream",
	".crai":  "application/octet-stream",
	".vcf":   "text/plain",
	".bed":   "text/plain",
	".gff":   "text/plain",
	".gff3":  "text/plain",
	".gtf":   "text/plain",
	".fa":    "text/plain",
	".fasta": "text/plain",
	".json":  "application/json",
	".xml":   "application/xml",
}

// ContentType looks up the MIME type for the longest allow-listed suffix of
// filename.
func (f *ExtensionFilter) ContentType(filename string) string {
	suffix, ok := f.Match(filename)
	if !ok {
		return defaultContentType
	}
	if ct, ok := contentTypes[suffix]; ok {
		return ct
	}
	return defaultContentType
}

// ParseRange parses a Range header against a file of the given size. Only the
// first range of a multi-range header is used. An end past EOF is clamped to
// the last byte; anything else that cannot be served yields
// ErrRangeNotSatisfiable.
func ParseRange(header string, size int64) (ByteRange, error) {
	const prefix = "bytes="
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, fmt.Errorf("unsupported range unit in %q: %w", header, ErrRangeNotSatisfiable)
	}
	first, _, _ := strings.Cut(header[len(prefix):], ",")
	first = strings.TrimSpace(first)
	startStr, endStr, ok := strings.Cut(first, "-")
	if !ok {
		return ByteRange{}, fmt.Errorf("malformed range %q: %w", header, ErrRangeNotSatisfiable)
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	var r ByteRange
	switch {
	case startStr == "" && endStr == "":
		return ByteRange{}, fmt.Errorf("malformed range %q: %w", header, ErrRangeNotSatisfiable)
	case startStr == "":
		// bytes=-N is the final N bytes
		n, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || n <= 0 {
			return ByteRange{}, fmt.Errorf("malformed suffix range %q: %w", header, ErrRangeNotSatisfiable)
		}
		if n > size {
			n = size
		}
		r = ByteRange{Start: size - n, End: size - 1}
	default:
		start, err := strconv.ParseInt(startStr, 10, 64)
		if err != nil || start < 0 {
			return ByteRange{}, fmt.Errorf("malformed range start %q: %w", header, ErrRangeNotSatisfiable)
		}
		end := size - 1
		if endStr != "" {
			end, err = strconv.ParseInt(endStr, 10, 64)
			if err != nil || end < 0 {
				return ByteRange{}, fmt.Errorf("malformed range end %q: %w", header, ErrRangeNotSatisfiable)
			}
			if end > size-1 {
				end = size - 1
			}
		}
		r = ByteRange{Start: start, End: end}
	}

	if r.Start >= size || r.Start > r.End {
		return ByteRange{}, fmt.Errorf("range %q outside file of %d bytes: %w", header, size, ErrRangeNotSatisfiable)
	}
	return r, nil
}
