package senfile

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Save, SaveAll, AddMetadata and a second Close once
// the writer transitioned to closed. The transition happens exactly once and
// cannot be undone, so a second Close is an invalid state, not a no-op.
var ErrClosed = errors.New("writer is closed")

// OutOfRangeError reports a stream index outside the configured streams. The
// check runs before any mutation; a failed call leaves every stream's pending
// state untouched.
type OutOfRangeError struct {
	Index   uint32
	Streams int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("stream index %d out of range (%d streams)", e.Index, e.Streams)
}

// BatchLengthError reports a SaveAll call whose reading count does not match
// the stream count.
type BatchLengthError struct {
	Got  int
	Want int
}

func (e *BatchLengthError) Error() string {
	return fmt.Sprintf("batch save with %d readings for %d streams", e.Got, e.Want)
}

// BatchError reports which index of a SaveAll call failed.
//
// Chunks flushed by earlier indices of the same call stay on disk; flushes
// are not rolled back. The per-index cause is available via errors.Unwrap.
type BatchError struct {
	Index int
	cause error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch save failed at index %d: %v", e.Index, e.cause)
}

func (e *BatchError) Unwrap() error { return e.cause }
