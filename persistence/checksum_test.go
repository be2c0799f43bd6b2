package persistence

import (
	"bytes"
	"errors"
	"testing"
)

func TestChecksumWriter(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChecksumWriter(&buf)

	if _, err := cw.Write([]byte("hello ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := cw.Write([]byte("world")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if got, want := cw.Sum(), Checksum([]byte("hello world")); got != want {
		t.Fatalf("running sum = 0x%08x, want 0x%08x", got, want)
	}
	if buf.String() != "hello world" {
		t.Fatalf("passthrough = %q", buf.String())
	}

	cw.Reset()
	if _, err := cw.Write([]byte("world")); err != nil {
		t.Fatalf("write after reset: %v", err)
	}
	if got, want := cw.Sum(), Checksum([]byte("world")); got != want {
		t.Fatalf("sum after reset = 0x%08x, want 0x%08x", got, want)
	}
}

func TestVerifyChecksum(t *testing.T) {
	body := []byte("section body")

	if err := verifyChecksum("catalog", body, Checksum(body)); err != nil {
		t.Fatalf("matching checksum: %v", err)
	}

	err := verifyChecksum("catalog", body, Checksum(body)+1)
	var cme *ChecksumMismatchError
	if !errors.As(err, &cme) {
		t.Fatalf("err = %v, want *ChecksumMismatchError", err)
	}
	if cme.Section != "catalog" {
		t.Fatalf("section = %q, want catalog", cme.Section)
	}
}
