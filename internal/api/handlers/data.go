package handlers

import (
	"errors"
	"fmt"
	"github.com/frodejac/genoserve/internal/files"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// AccessRecorder is told about every data response that was fully written.
type AccessRecorder interface {
	Record(path string, bytes int64, at time.Time) error
}

type DataHandler struct {
	BaseHandler
	recorder AccessRecorder
}

func NewDataHandler(files *files.FileService, recorder AccessRecorder) *DataHandler {
	return &DataHandler{
		BaseHandler: BaseHandler{
			files: files,
		},
		recorder: recorder,
	}
}

// HandleGetData serves a file below the data root, whole or as the single
// byte range named by the Range header.
func (h *DataHandler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	rel := r.PathValue("path")
	if _, err := h.files.Resolve(rel); err != nil {
		slog.Warn("Rejected path outside data directory", "path", rel, "remote_addr", r.RemoteAddr)
		http.Error(w, "Access denied", http.StatusForbidden)
		return
	}

	file, info, err := h.files.OpenFile(rel)
	switch {
	case errors.Is(err, files.ErrNotFound):
		http.Error(w, "File not found", http.StatusNotFound)
		return
	case errors.Is(err, files.ErrForbidden):
		http.Error(w, "File type not allowed", http.StatusForbidden)
		return
	case err != nil:
		slog.Error("Failed to open file", "path", rel, "error", err)
		http.Error(w, "Error reading file", http.StatusInternalServerError)
		return
	}
	defer file.Close()

	size := info.Size()
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", h.files.Filter().ContentType(info.Name()))
	w.Header().Set("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))

	status := http.StatusOK
	length := size
	if header := r.Header.Get("Range"); header != "" {
		br, err := files.ParseRange(header, size)
		if err != nil {
			slog.Warn("Unsatisfiable range", "path", rel, "range", header, "size", size)
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		if _, err := file.Seek(br.Start, io.SeekStart); err != nil {
			slog.Error("Failed to seek file", "path", rel, "error", err)
			http.Error(w, "Error reading file", http.StatusInternalServerError)
			return
		}
		status = http.StatusPartialContent
		length = br.Length()
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", br.Start, br.End, size))
	}

	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}

	n, err := io.CopyN(w, file, length)
	if err != nil {
		// Headers are already sent, abort the connection
		slog.Error("Failed to stream file",
			"path", rel,
			"written", n,
			"expected", length,
			"error", err,
		)
		panic(http.ErrAbortHandler)
	}

	if h.recorder != nil {
		if err := h.recorder.Record(h.files.Relative(file.Name()), n, time.Now()); err != nil {
			slog.Warn("Failed to record file access", "path", rel, "error", err)
		}
	}
}
