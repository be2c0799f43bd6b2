package meta

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownType is returned when no decode function is registered for a tag.
//
// It typically means the file was written by a build carrying kinds this
// build does not compile in. The entry stays readable as a Ref.
var ErrUnknownType = errors.New("unregistered metadata type")

// FormatError indicates that a registered kind failed to decode its buffer
// (corrupt or truncated bytes).
//
// The decode cause is available via errors.Unwrap.
type FormatError struct {
	Tag   string
	cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed %s buffer: %v", e.Tag, e.cause)
}

func (e *FormatError) Unwrap() error { return e.cause }

// DecodeFunc reconstructs a materialized entry from its byte representation.
type DecodeFunc func(buf []byte) (Entry, error)

// The process-wide registry. Populated by kind init functions before any
// decode runs; read-only afterwards.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]DecodeFunc)
)

// Register adds the decode function for a kind's tag.
//
// It must be called from an init function, once per compiled-in kind. A
// duplicate tag means two live kinds claim the same wire schema — an
// ambiguous file format — so Register panics instead of returning an error;
// there is no legitimate way to continue.
func Register(tag string, fn DecodeFunc) {
	if err := register(tag, fn); err != nil {
		panic(err)
	}
}

func register(tag string, fn DecodeFunc) error {
	if tag == "" {
		return errors.New("meta: register with empty type tag")
	}
	if fn == nil {
		return fmt.Errorf("meta: register %s with nil decode func", tag)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[tag]; exists {
		return fmt.Errorf("meta: duplicate metadata type %q", tag)
	}
	registry[tag] = fn

	return nil
}

// Registered reports whether a decode function exists for tag.
func Registered(tag string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[tag]
	return ok
}

// Decode reconstructs a materialized entry of the given tag from buf.
//
// Returns ErrUnknownType when no kind is registered for tag, or a
// *FormatError when the registered kind rejects the bytes.
func Decode(tag string, buf []byte) (Entry, error) {
	registryMu.RLock()
	fn, ok := registry[tag]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, tag)
	}

	e, err := fn(buf)
	if err != nil {
		return nil, &FormatError{Tag: tag, cause: err}
	}
	return e, nil
}
