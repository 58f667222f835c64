package handlers

import (
	"github.com/frodejac/genoserve/internal/database/stats"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultStatsLimit = 50
	maxStatsLimit     = 1000
)

type StatsHandler struct {
	BaseHandler
	store *stats.Store
}

type StatsData struct {
	Files []stats.FileStat `json:"files"`
}

func NewStatsHandler(store *stats.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

func (h *StatsHandler) HandleListStats(w http.ResponseWriter, r *http.Request) {
	limit := defaultStatsLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			h.renderError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, maxStatsLimit)
	}
	fileStats, err := h.store.List(limit)
	if err != nil {
		slog.Error("Failed to fetch file stats", "error", err)
		h.renderError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	h.renderJSON(w, http.StatusOK, StatsData{Files: fileStats})
}
