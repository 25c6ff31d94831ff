package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"video-library/internal/database"
	"video-library/internal/filesystem"
	"video-library/internal/logging"
	"video-library/internal/mediatypes"
	"video-library/internal/streaming"
)

// GetVideo returns the asset record for an id.
func (h *Handlers) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSONError(w, "Invalid video id", http.StatusBadRequest)
		return
	}

	asset, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeJSONError(w, "Video not found", http.StatusNotFound)
			return
		}
		logging.Error("GetVideo %d: %v", id, err)
		writeJSONError(w, "Failed to load video", http.StatusInternalServerError)
		return
	}

	writeJSONStatus(w, http.StatusOK, asset)
}

// ServeVideo serves a stored video by its file name.
func (h *Handlers) ServeVideo(w http.ResponseWriter, r *http.Request) {
	h.serveStored(w, r, h.layout.VideoDir)
}

// ServePreview serves a stored preview animation by its file name.
func (h *Handlers) ServePreview(w http.ResponseWriter, r *http.Request) {
	h.serveStored(w, r, h.layout.PreviewDir)
}

// serveStored serves a bare file name from dir with range support. Names
// with path separators or dot segments are rejected.
func (h *Handlers) serveStored(w http.ResponseWriter, r *http.Request, dir string) {
	name := mux.Vars(r)["filename"]
	if !filesystem.SafeName(name) || name[0] == '.' {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	f, err := filesystem.OpenWithRetry(filepath.Join(dir, name), filesystem.DefaultRetryConfig())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		logging.Error("Failed to open %s: %v", name, err)
		http.Error(w, "Failed to access file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", mediatypes.GetMimeType(mediatypes.Extension(name)))
	// stored names are content addressed, so their bytes never change
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	sw := streaming.NewWriter(r.Context(), w, streaming.DefaultConfig())
	http.ServeContent(sw, r, name, info.ModTime(), f)
	if err := sw.Close(); err != nil {
		logging.Debug("Failed to clear write deadline for %s: %v", name, err)
	}
	if err := sw.Err(); err != nil {
		written, took := sw.Stats()
		logging.Warn("Serving %s stopped after %d bytes in %v: %v", name, written, took.Round(time.Millisecond), err)
	}
}
