package ingest

import (
	"errors"
	"fmt"
)

// Kind classifies a failed ingestion.
type Kind string

const (
	// KindIO covers unreadable or unwritable files, including a staging
	// area on a different filesystem than the video root.
	KindIO Kind = "io"
	// KindStore means the store could not answer the duplicate check.
	KindStore Kind = "store"
	// KindMetadataConflict means the store rejected the asset after the
	// video was committed.
	KindMetadataConflict Kind = "metadata_conflict"
	// KindInconsistentState means a record exists without its video file.
	KindInconsistentState Kind = "inconsistent_state"
	// KindCanceled means the caller went away mid-flight.
	KindCanceled Kind = "canceled"
)

// ErrInconsistentState is wrapped by failures of kind KindInconsistentState.
var ErrInconsistentState = errors.New("asset record exists but its video file is missing")

// Error is returned with every Failed result.
type Error struct {
	Kind Kind
	// Op is the pipeline step that failed.
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of an ingestion error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
