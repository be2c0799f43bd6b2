package persistence

import (
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Integrity is CRC32 (IEEE): fast, hardware-accelerated, good at catching
// storage corruption. It is not cryptographic; it detects accidents, not
// tampering.

// Checksum computes the CRC32 checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumWriter wraps an io.Writer and keeps a running CRC32 of everything
// written through it.
type ChecksumWriter struct {
	w    io.Writer
	hash hash.Hash32
}

// NewChecksumWriter creates a checksumming writer.
func NewChecksumWriter(w io.Writer) *ChecksumWriter {
	return &ChecksumWriter{w: w, hash: crc32.NewIEEE()}
}

// Write implements io.Writer.
func (cw *ChecksumWriter) Write(p []byte) (int, error) {
	if _, err := cw.hash.Write(p); err != nil {
		return 0, err
	}
	return cw.w.Write(p)
}

// Sum returns the checksum of the bytes written so far.
func (cw *ChecksumWriter) Sum() uint32 { return cw.hash.Sum32() }

// Reset restarts the running checksum.
func (cw *ChecksumWriter) Reset() { cw.hash.Reset() }

// ChecksumMismatchError is returned when a stored checksum does not match the
// recomputed one.
type ChecksumMismatchError struct {
	Section  string
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s checksum mismatch: expected 0x%08x, got 0x%08x",
		e.Section, e.Expected, e.Actual)
}

func verifyChecksum(section string, body []byte, expected uint32) error {
	if actual := crc32.ChecksumIEEE(body); actual != expected {
		return &ChecksumMismatchError{Section: section, Expected: expected, Actual: actual}
	}
	return nil
}
