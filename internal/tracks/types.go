package tracks

type Kind string

const (
	KindAlignment  Kind = "alignment"
	KindVariant    Kind = "variant"
	KindAnnotation Kind = "annotation"
	KindWig        Kind = "wig"
	KindUnknown    Kind = "unknown"
)

// Format describes how igv.js should read a file and where to look for its
// index, if it has one.
type Format struct {
	Kind        Kind
	Name        string
	IndexSuffix string
}

// Config is the track object handed to igv.js loadTrack.
type Config struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Type     Kind   `json:"type"`
	Format   string `json:"format"`
	IndexURL string `json:"indexURL,omitempty"`
}
