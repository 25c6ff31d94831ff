package ingest

import (
	"fmt"
	"io"
)

// Outcome is the terminal state of an ingestion.
type Outcome int

const (
	// Failed means nothing created by the attempt remains on disk.
	Failed Outcome = iota
	// Created means a new asset was stored and recorded.
	Created
	// DuplicateRejected means the content was already in the library and
	// no new files were kept.
	DuplicateRejected
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case DuplicateRejected:
		return "duplicate_rejected"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome as its label.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Request is one upload handed to the pipeline. Title, Artist and Genre are
// validated by the caller.
type Request struct {
	Body         io.Reader
	OriginalName string
	Title        string
	Artist       string
	Genre        string
	Description  string
}

// Result describes what an ingestion produced.
type Result struct {
	Outcome     Outcome `json:"outcome"`
	AssetID     int64   `json:"id,omitempty"`
	ContentHash string  `json:"hash,omitempty"`
	// StoredFileName is the committed video for Created, or the existing
	// copy for DuplicateRejected.
	StoredFileName  string   `json:"fileName,omitempty"`
	PreviewFileName *string  `json:"thumbnailFileName"`
	DurationSeconds *float64 `json:"durationSeconds"`
}
