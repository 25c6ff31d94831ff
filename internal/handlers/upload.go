package handlers

import (
	"errors"
	"net/http"
	"strings"

	"video-library/internal/filesystem"
	"video-library/internal/ingest"
	"video-library/internal/logging"
	"video-library/internal/mediatypes"
)

// multipartMemory is how much of a multipart upload is held in memory
// before the rest spills to a temporary file.
const multipartMemory = 32 << 20

const duplicateMessage = "This video already exists in the library"

// UploadResponse is returned for a created asset.
type UploadResponse struct {
	Success           bool     `json:"success"`
	ID                int64    `json:"id"`
	Hash              string   `json:"hash"`
	FileName          string   `json:"fileName"`
	ThumbnailFileName *string  `json:"thumbnailFileName"`
	DurationSeconds   *float64 `json:"durationSeconds"`
}

// Upload accepts a multipart video upload and runs it through the
// ingestion pipeline. The request context is handed to the pipeline, so a
// client that disconnects cancels its ingestion.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("Failed to remove multipart temp files: %v", err)
		}
	}()

	file, header, err := r.FormFile("video")
	if err != nil {
		writeJSONError(w, "No video file provided", http.StatusBadRequest)
		return
	}
	defer file.Close()

	req := ingest.Request{
		Body:         file,
		OriginalName: header.Filename,
		Title:        strings.TrimSpace(r.FormValue("title")),
		Artist:       strings.TrimSpace(r.FormValue("artist")),
		Genre:        strings.TrimSpace(r.FormValue("genre")),
		Description:  strings.TrimSpace(r.FormValue("description")),
	}

	if req.Title == "" || req.Artist == "" || req.Genre == "" {
		writeJSONError(w, "Title, artist, and genre are required", http.StatusBadRequest)
		return
	}
	if header.Filename == "" {
		writeJSONError(w, "No selected file", http.StatusBadRequest)
		return
	}
	if !mediatypes.IsAllowedVideo(header.Filename) {
		writeJSONError(w, "Invalid file type", http.StatusBadRequest)
		return
	}

	res, err := h.pipeline.Ingest(r.Context(), req)
	switch res.Outcome {
	case ingest.Created:
		writeJSONStatus(w, http.StatusCreated, UploadResponse{
			Success:           true,
			ID:                res.AssetID,
			Hash:              res.ContentHash,
			FileName:          res.StoredFileName,
			ThumbnailFileName: res.PreviewFileName,
			DurationSeconds:   res.DurationSeconds,
		})
	case ingest.DuplicateRejected:
		writeJSONError(w, duplicateMessage, http.StatusConflict)
	default:
		if isTooLarge(err) {
			writeJSONError(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		if ingest.KindOf(err) == ingest.KindCanceled {
			// the client is gone; the status is only seen by the logs
			logging.Info("Upload of %q canceled by client", header.Filename)
		}
		writeJSONError(w, "Failed to store video", http.StatusInternalServerError)
	}
}

func isTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr) || errors.Is(err, filesystem.ErrTooLarge)
}
