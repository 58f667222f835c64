package handlers

import (
	"errors"
	"github.com/frodejac/genoserve/internal/files"
	"github.com/frodejac/genoserve/internal/tracks"
	"log/slog"
	"net/http"
)

type FilesHandler struct {
	BaseHandler
}

func NewFilesHandler(files *files.FileService, baseUrl string) *FilesHandler {
	return &FilesHandler{
		BaseHandler: BaseHandler{
			files:   files,
			baseUrl: baseUrl,
		},
	}
}

type FilesData struct {
	DataDir string            `json:"dataDir"`
	Files   []files.FileEntry `json:"files"`
}

type BrowseData struct {
	CurrentPath string             `json:"currentPath"`
	Items       []files.BrowseItem `json:"items"`
}

type GenomeData struct {
	files.Genome
	FastaURL string `json:"fastaURL"`
	IndexURL string `json:"indexURL,omitempty"`
}

type GenomesData struct {
	Genomes []GenomeData `json:"genomes"`
}

func (h *FilesHandler) HandleListFiles(w http.ResponseWriter, r *http.Request) {
	entries, err := h.files.ListFiles()
	if err != nil {
		slog.Error("Error listing files", "error", err)
		h.renderError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}
	h.renderJSON(w, http.StatusOK, FilesData{DataDir: h.files.Root(), Files: entries})
}

func (h *FilesHandler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	subPath := r.URL.Query().Get("path")
	items, err := h.files.Browse(subPath)
	switch {
	case errors.Is(err, files.ErrForbidden):
		h.renderError(w, http.StatusForbidden, "Access denied")
		return
	case errors.Is(err, files.ErrNotFound):
		h.renderError(w, http.StatusNotFound, "Directory not found")
		return
	case errors.Is(err, files.ErrNotDirectory):
		h.renderError(w, http.StatusBadRequest, "Not a directory")
		return
	case err != nil:
		slog.Error("Error browsing directory", "path", subPath, "error", err)
		h.renderError(w, http.StatusInternalServerError, "Failed to browse directory")
		return
	}
	h.renderJSON(w, http.StatusOK, BrowseData{CurrentPath: subPath, Items: items})
}

func (h *FilesHandler) HandleListGenomes(w http.ResponseWriter, r *http.Request) {
	genomes, err := h.files.ListGenomes()
	if err != nil {
		slog.Error("Error listing genomes", "error", err)
		h.renderError(w, http.StatusInternalServerError, "Failed to list genomes")
		return
	}
	data := GenomesData{Genomes: make([]GenomeData, 0, len(genomes))}
	for _, g := range genomes {
		gd := GenomeData{
			Genome:   g,
			FastaURL: tracks.DataURL(h.baseUrl, g.Path),
		}
		if g.HasIndex {
			gd.IndexURL = gd.FastaURL + ".fai"
		}
		data.Genomes = append(data.Genomes, gd)
	}
	h.renderJSON(w, http.StatusOK, data)
}

// HandleGetTrack returns the igv.js track configuration for one file.
func (h *FilesHandler) HandleGetTrack(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		h.renderError(w, http.StatusBadRequest, "Missing path")
		return
	}
	filePath, info, err := h.files.Stat(rel)
	switch {
	case errors.Is(err, files.ErrForbidden):
		h.renderError(w, http.StatusForbidden, "Access denied")
		return
	case errors.Is(err, files.ErrNotFound):
		h.renderError(w, http.StatusNotFound, "File not found")
		return
	case err != nil:
		slog.Error("Error reading file", "path", rel, "error", err)
		h.renderError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	cfg := tracks.Build(info.Name(), h.files.Relative(filePath), h.baseUrl, h.files.Exists)
	h.renderJSON(w, http.StatusOK, cfg)
}
