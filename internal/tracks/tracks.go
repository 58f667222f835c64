package tracks

import (
	"net/url"
	"path"
	"strings"
)

// Ordered so that compound suffixes are tried before their tails.
var formats = []struct {
	suffix string
	format Format
}{
	{".vcf.gz", Format{Kind: KindVariant, Name: "vcf", IndexSuffix: ".tbi"}},
	{".bed.gz", Format{Kind: KindAnnotation, Name: "bed", IndexSuffix: ".tbi"}},
	{".bam", Format{Kind: KindAlignment, Name: "bam", IndexSuffix: ".bai"}},
	{".cram", Format{Kind: KindAlignment, Name: "cram", IndexSuffix: ".crai"}},
	{".vcf", Format{Kind: KindVariant, Name: "vcf"}},
	{".bed", Format{Kind: KindAnnotation, Name: "bed"}},
	{".gff3", Format{Kind: KindAnnotation, Name: "gff3"}},
	{".gff", Format{Kind: KindAnnotation, Name: "gff3"}},
	{".gtf", Format{Kind: KindAnnotation, Name: "gtf"}},
	{".bigwig", Format{Kind: KindWig, Name: "bigwig"}},
	{".bw", Format{Kind: KindWig, Name: "bigwig"}},
	{".wig", Format{Kind: KindWig, Name: "wig"}},
	{".bedgraph", Format{Kind: KindWig, Name: "bedgraph"}},
}

// For maps a filename to its track format. Names that match no known
// suffix get KindUnknown with the final extension as the format name.
func For(name string) Format {
	lower := strings.ToLower(name)
	for _, f := range formats {
		if strings.HasSuffix(lower, f.suffix) {
			return f.format
		}
	}
	return Format{Kind: KindUnknown, Name: strings.TrimPrefix(path.Ext(lower), ".")}
}

// Build produces the igv.js configuration for the file at rel. exists is
// asked whether the conventional index file is present.
func Build(name, rel, baseURL string, exists func(rel string) bool) Config {
	f := For(name)
	cfg := Config{
		Name:   name,
		URL:    DataURL(baseURL, rel),
		Type:   f.Kind,
		Format: f.Name,
	}
	if f.IndexSuffix != "" && exists != nil && exists(rel+f.IndexSuffix) {
		cfg.IndexURL = DataURL(baseURL, rel+f.IndexSuffix)
	}
	return cfg
}

// DataURL is the address the data endpoint serves rel from.
func DataURL(baseURL, rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(baseURL, "/") + "/data/" + strings.Join(segments, "/")
}
