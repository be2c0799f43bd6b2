package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

// Backend is the low-level emitter for one container file. It owns the file
// handle, appends sections, and finalizes the file with the catalog and the
// trailing index.
//
// Backend performs synchronous writes: WriteChunk and Finish return only
// after the bytes were handed to the file. It is not safe for concurrent use;
// the Writer above it serializes access.
type Backend struct {
	f    *os.File
	w    *bufio.Writer
	path string
	off  uint64

	chunks   []ChunkInfo
	finished bool
}

// Create creates (or truncates) the container file at path and writes the
// file header.
func Create(path string) (*Backend, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // G304: path is caller-provided by design
	if err != nil {
		return nil, fmt.Errorf("failed to create container file: %w", err)
	}

	b := &Backend{
		f:    f,
		w:    bufio.NewWriter(f),
		path: path,
	}

	if err := b.writeHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return b, nil
}

func (b *Backend) writeHeader() error {
	var hdr [headerLen]byte
	copy(hdr[0:4], fileMagic[:])
	binary.LittleEndian.PutUint32(hdr[4:8], Version)
	// hdr[8:10] flags, hdr[10:16] reserved

	if _, err := b.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("failed to write container header: %w", err)
	}
	if err := b.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush container header: %w", err)
	}
	b.off = headerLen

	return nil
}

// Path returns the output file path.
func (b *Backend) Path() string { return b.path }

// Chunks returns the infos of all chunks written so far, in file order. The
// returned slice is shared; callers must not mutate it.
func (b *Backend) Chunks() []ChunkInfo { return b.chunks }

// Finished reports whether Finish has run.
func (b *Backend) Finished() bool { return b.finished }

// WriteChunk appends one chunk frame as a section and returns its info.
// streams and the timestamp bounds describe the frame's coverage; they end up
// in the trailing index, not in the chunk itself.
func (b *Backend) WriteChunk(frame []byte, streams []uint32, firstTS, lastTS uint64) (ChunkInfo, error) {
	if b.finished {
		return ChunkInfo{}, ErrFinished
	}

	if err := b.writeSection(frame); err != nil {
		return ChunkInfo{}, fmt.Errorf("failed to write chunk: %w", err)
	}

	info := ChunkInfo{
		Offset:  b.off - uint64(len(frame)),
		Length:  uint32(len(frame)),
		FirstTS: firstTS,
		LastTS:  lastTS,
		Streams: append([]uint32(nil), streams...),
	}
	b.chunks = append(b.chunks, info)

	return info, nil
}

// writeSection emits [len u32][payload] and hands it to the file.
func (b *Backend) writeSection(payload []byte) error {
	var prefix [sectionPrefixLen]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))

	if _, err := b.w.Write(prefix[:]); err != nil {
		return err
	}
	if _, err := b.w.Write(payload); err != nil {
		return err
	}
	if err := b.w.Flush(); err != nil {
		return err
	}
	b.off += uint64(sectionPrefixLen + len(payload))

	return nil
}

// Abort closes the file without finalizing it. Chunks already written stay
// recoverable by a forward scan; the catalog and trailing index are never
// emitted.
func (b *Backend) Abort() error {
	if b.finished {
		return ErrFinished
	}
	b.finished = true

	if err := b.w.Flush(); err != nil {
		_ = b.f.Close()
		return fmt.Errorf("failed to flush container: %w", err)
	}
	return b.f.Close()
}

// Finish writes the metadata catalog and the trailing index, syncs and closes
// the file. The backend accepts no writes afterwards; a second Finish returns
// ErrFinished.
func (b *Backend) Finish(catalog []CatalogRecord) error {
	if b.finished {
		return ErrFinished
	}

	payload := encodeCatalog(catalog)
	catalogOff := b.off + sectionPrefixLen

	if err := b.writeSection(payload); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}

	if err := b.writeTrailer(catalogOff, uint32(len(payload))); err != nil {
		return fmt.Errorf("failed to write trailing index: %w", err)
	}

	if err := b.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush container: %w", err)
	}
	if err := b.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync container: %w", err)
	}

	b.finished = true

	if err := b.f.Close(); err != nil {
		return fmt.Errorf("failed to close container file: %w", err)
	}
	return nil
}

// encodeCatalog serializes the id-ordered catalog records:
//
//	[magic "SNMD"][count u32] then per record
//	[id u32][type len u16][type][buffer len u32][buffer], then [crc32 u32]
func encodeCatalog(records []CatalogRecord) []byte {
	out := append([]byte(nil), catalogMagic[:]...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(records)))

	for _, rec := range records {
		out = binary.LittleEndian.AppendUint32(out, rec.ID)
		out = binary.LittleEndian.AppendUint16(out, uint16(len(rec.Type)))
		out = append(out, rec.Type...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(rec.Buffer)))
		out = append(out, rec.Buffer...)
	}

	return binary.LittleEndian.AppendUint32(out, Checksum(out))
}

// writeTrailer emits the trailing index:
//
//	[chunk count u32]
//	per chunk [offset u64][length u32][first ts u64][last ts u64]
//	          [stream count u16][stream ids u32...]
//	[catalog offset u64][catalog len u32]
//	[crc32 u32][trailer len u32][magic "SNIX"]
//
// The final 8 bytes let a reader find the trailer from EOF; trailer len
// counts everything before them, CRC included.
func (b *Backend) writeTrailer(catalogOff uint64, catalogLen uint32) error {
	body := binary.LittleEndian.AppendUint32(nil, uint32(len(b.chunks)))
	for _, c := range b.chunks {
		body = binary.LittleEndian.AppendUint64(body, c.Offset)
		body = binary.LittleEndian.AppendUint32(body, c.Length)
		body = binary.LittleEndian.AppendUint64(body, c.FirstTS)
		body = binary.LittleEndian.AppendUint64(body, c.LastTS)
		body = binary.LittleEndian.AppendUint16(body, uint16(len(c.Streams)))
		for _, id := range c.Streams {
			body = binary.LittleEndian.AppendUint32(body, id)
		}
	}
	body = binary.LittleEndian.AppendUint64(body, catalogOff)
	body = binary.LittleEndian.AppendUint32(body, catalogLen)

	out := binary.LittleEndian.AppendUint32(body, Checksum(body))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(out)))
	out = append(out, indexMagic[:]...)

	if _, err := b.w.Write(out); err != nil {
		return err
	}
	b.off += uint64(len(out))

	return nil
}
