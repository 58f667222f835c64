package handlers

import (
	"github.com/frodejac/genoserve/internal/files"
	"net/http"
)

type HealthHandler struct {
	BaseHandler
	version string
}

type HealthData struct {
	Status            string   `json:"status"`
	DataDir           string   `json:"dataDir"`
	Version           string   `json:"version"`
	AllowedExtensions []string `json:"allowedExtensions"`
}

func NewHealthHandler(files *files.FileService, version string) *HealthHandler {
	return &HealthHandler{
		BaseHandler: BaseHandler{
			files: files,
		},
		version: version,
	}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.renderJSON(w, http.StatusOK, HealthData{
		Status:            "ok",
		DataDir:           h.files.Root(),
		Version:           h.version,
		AllowedExtensions: h.files.Filter().Suffixes(),
	})
}
