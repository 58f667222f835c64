package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/frodejac/genoserve/internal/files"
	"github.com/frodejac/genoserve/internal/tracks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestFilesHandler_ListFiles(t *testing.T) {
	svc, root := newTestFiles(t)
	writeTestFile(t, root, "sub1/a.bam", sampleBytes(10))
	writeTestFile(t, root, "sub1/notes.txt", sampleBytes(1))
	h := NewFilesHandler(svc, "http://localhost:8080")

	rec := httptest.NewRecorder()
	h.HandleListFiles(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	data := decode[FilesData](t, rec)
	assert.Equal(t, svc.Root(), data.DataDir)
	require.Len(t, data.Files, 2)
	assert.Equal(t, "sub1", data.Files[0].Path)
	assert.Equal(t, files.TypeDirectory, data.Files[0].Type)
	assert.Equal(t, "sub1/a.bam", data.Files[1].Path)
	assert.Equal(t, int64(10), data.Files[1].Size)
}

func TestFilesHandler_ListFilesEntryShape(t *testing.T) {
	svc, root := newTestFiles(t)
	writeTestFile(t, root, "dir/a.bam", sampleBytes(3))
	h := NewFilesHandler(svc, "")

	rec := httptest.NewRecorder()
	h.HandleListFiles(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	var raw struct {
		Files []map[string]any `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw.Files, 2)
	assert.Equal(t, map[string]any{"name": "dir", "path": "dir", "type": "directory", "size": float64(0)}, raw.Files[0])
	assert.Equal(t, "file", raw.Files[1]["type"])
	assert.Contains(t, raw.Files[1], "modified")
}

func TestFilesHandler_Browse(t *testing.T) {
	svc, root := newTestFiles(t)
	writeTestFile(t, root, "sub1/a.bam", sampleBytes(10))
	writeTestFile(t, root, "sub1/a.bam.bai", sampleBytes(1))
	writeTestFile(t, root, "sub1/notes.txt", sampleBytes(1))
	writeTestFile(t, root, "file.bam", sampleBytes(1))
	h := NewFilesHandler(svc, "")

	tests := []struct {
		name  string
		query string
		want  int
		items int
		error string
	}{
		{name: "sub directory", query: "?path=sub1", want: http.StatusOK, items: 2},
		{name: "root", query: "", want: http.StatusOK, items: 2},
		{name: "missing", query: "?path=nope", want: http.StatusNotFound, error: "Directory not found"},
		{name: "file", query: "?path=file.bam", want: http.StatusBadRequest, error: "Not a directory"},
		{name: "escape", query: "?path=../..", want: http.StatusForbidden, error: "Access denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleBrowse(rec, httptest.NewRequest(http.MethodGet, "/api/browse"+tt.query, nil))

			require.Equal(t, tt.want, rec.Code)
			if tt.error != "" {
				assert.Equal(t, tt.error, decode[errorResponse](t, rec).Error)
				return
			}
			data := decode[BrowseData](t, rec)
			assert.Len(t, data.Items, tt.items)
			for _, item := range data.Items {
				assert.True(t, item.Allowed)
			}
		})
	}
}

func TestFilesHandler_ListGenomes(t *testing.T) {
	svc, root := newTestFiles(t)
	writeTestFile(t, root, "ref/hg38.fa", []byte(">chr1\nACGT\n"))
	writeTestFile(t, root, "ref/hg38.fa.fai", []byte("chr1\t4\t6\t4\t5\n"))
	writeTestFile(t, root, "toy.fa", []byte(">t\nA\n"))
	h := NewFilesHandler(svc, "http://igv.local")

	rec := httptest.NewRecorder()
	h.HandleListGenomes(rec, httptest.NewRequest(http.MethodGet, "/api/genomes", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode[GenomesData](t, rec)
	require.Len(t, data.Genomes, 2)

	byName := make(map[string]GenomeData)
	for _, g := range data.Genomes {
		byName[g.DisplayName] = g
	}
	hg38 := byName["hg38"]
	assert.True(t, hg38.HasIndex)
	assert.Equal(t, "http://igv.local/data/ref/hg38.fa", hg38.FastaURL)
	assert.Equal(t, "http://igv.local/data/ref/hg38.fa.fai", hg38.IndexURL)

	toy := byName["toy"]
	assert.False(t, toy.HasIndex)
	assert.Empty(t, toy.IndexURL)
}

func TestFilesHandler_GetTrack(t *testing.T) {
	svc, root := newTestFiles(t)
	writeTestFile(t, root, "run/sample.bam", sampleBytes(10))
	writeTestFile(t, root, "run/sample.bam.bai", sampleBytes(1))
	writeTestFile(t, root, "calls.vcf.gz", sampleBytes(10))
	writeTestFile(t, root, "notes.txt", sampleBytes(1))
	h := NewFilesHandler(svc, "http://igv.local")

	get := func(query string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.HandleGetTrack(rec, httptest.NewRequest(http.MethodGet, "/api/tracks"+query, nil))
		return rec
	}

	rec := get("?path=run/sample.bam")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tracks.Config{
		Name:     "sample.bam",
		URL:      "http://igv.local/data/run/sample.bam",
		Type:     tracks.KindAlignment,
		Format:   "bam",
		IndexURL: "http://igv.local/data/run/sample.bam.bai",
	}, decode[tracks.Config](t, rec))

	rec = get("?path=calls.vcf.gz")
	require.Equal(t, http.StatusOK, rec.Code)
	cfg := decode[tracks.Config](t, rec)
	assert.Equal(t, tracks.KindVariant, cfg.Type)
	assert.Empty(t, cfg.IndexURL)

	rec = get("?path=run/sample.bam.bai")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tracks.KindUnknown, decode[tracks.Config](t, rec).Type)

	assert.Equal(t, http.StatusBadRequest, get("").Code)
	assert.Equal(t, http.StatusNotFound, get("?path=missing.bam").Code)
	assert.Equal(t, http.StatusForbidden, get("?path=notes.txt").Code)
	assert.Equal(t, http.StatusForbidden, get("?path="+filepath.ToSlash("../../etc/passwd")).Code)
}

func TestHealthHandler(t *testing.T) {
	svc, _ := newTestFiles(t)
	h := NewHealthHandler(svc, "1.0.0")

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode[HealthData](t, rec)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, svc.Root(), data.DataDir)
	assert.Equal(t, "1.0.0", data.Version)
	assert.Contains(t, data.AllowedExtensions, ".vcf.gz")
}
