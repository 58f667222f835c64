package handlers

import (
	"encoding/json"
	"github.com/frodejac/genoserve/internal/files"
	"log/slog"
	"net/http"
)

type BaseHandler struct {
	files   *files.FileService
	baseUrl string
}

type errorResponse struct {
	Error string `json:"error"`
}

func (b *BaseHandler) renderJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (b *BaseHandler) renderError(w http.ResponseWriter, status int, message string) {
	b.renderJSON(w, status, errorResponse{Error: message})
}
