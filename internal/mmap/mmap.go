// Package mmap provides read-only memory mapping for container files.
//
// The reader works off one flat byte view of the file; mapping it keeps
// selective decode cheap — touching a chunk faults in only its pages instead
// of reading the whole file. On platforms without mmap support the package
// falls back to reading the file into memory, trading that property for
// portability.
package mmap

import (
	"fmt"
	"os"
)

// Mapping is a read-only view over a whole file.
type Mapping struct {
	data   []byte
	mapped bool
}

// Open maps the file at path read-only. An empty file yields an empty,
// valid mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-provided by design
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if st.Size() == 0 {
		return &Mapping{}, nil
	}

	return openMapping(f, int(st.Size()))
}

// Bytes returns the mapped view. It stays valid until Close.
func (m *Mapping) Bytes() []byte { return m.data }

// Close releases the mapping. The view returned by Bytes must not be used
// afterwards.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil

	if m.mapped {
		return unmap(data)
	}
	return nil
}
