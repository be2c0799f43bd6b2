// Package chunk implements the unit of batching and crash recovery in a
// senfile container.
//
// A chunk is an ordered batch of encoded readings (messages) framed with a
// magic, a count and a trailing CRC32, so that any fully written chunk is
// independently decodable even when the file was never closed and its catalog
// never written. An in-memory pending chunk is lost on abrupt termination;
// that boundary is deliberate.
package chunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"sort"
)

// Magic starts every chunk frame (ASCII "SNCH").
var Magic = [4]byte{'S', 'N', 'C', 'H'}

// Overhead is the framing cost of a chunk beyond its message bytes:
// magic (4) + message count (4) + trailing CRC32 (4).
const Overhead = 12

// msgHeaderLen is the fixed message header:
// stream metadata id (4) + timestamp (8) + payload length (4).
const msgHeaderLen = 16

// Message is one encoded reading inside a chunk, addressed by the metadata id
// of its stream's schema entry and stamped with the reading's timestamp in
// unix nanoseconds.
type Message struct {
	StreamMetaID uint32
	Timestamp    uint64
	Payload      []byte
}

// Builder accumulates messages for one pending chunk.
//
// The builder tracks its encoded size so the writer can flush on a byte
// threshold, and the stream ids and time range seen so the trailing index can
// be built without re-decoding.
type Builder struct {
	buf     bytes.Buffer
	count   uint32
	streams map[uint32]struct{}
	firstTS uint64
	lastTS  uint64
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{streams: make(map[uint32]struct{})}
}

// Append adds one message. The payload bytes are copied; the caller keeps
// ownership of its buffer.
func (b *Builder) Append(streamMetaID uint32, ts uint64, payload []byte) {
	var hdr [msgHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[0:4], streamMetaID)
	binary.LittleEndian.PutUint64(hdr[4:12], ts)
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(len(payload)))

	b.buf.Write(hdr[:])
	b.buf.Write(payload)

	if b.count == 0 || ts < b.firstTS {
		b.firstTS = ts
	}
	if ts > b.lastTS {
		b.lastTS = ts
	}
	b.count++
	b.streams[streamMetaID] = struct{}{}
}

// Len returns the pending size in bytes, framing included.
func (b *Builder) Len() int {
	if b.count == 0 {
		return 0
	}
	return b.buf.Len() + Overhead
}

// Count returns the number of pending messages.
func (b *Builder) Count() int { return int(b.count) }

// Empty reports whether no messages are pending.
func (b *Builder) Empty() bool { return b.count == 0 }

// StreamIDs returns the stream metadata ids seen since the last reset, in
// ascending order.
func (b *Builder) StreamIDs() []uint32 {
	out := make([]uint32, 0, len(b.streams))
	for id := range b.streams {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TimeRange returns the lowest and highest message timestamps since the last
// reset. Zero values when empty.
func (b *Builder) TimeRange() (first, last uint64) {
	return b.firstTS, b.lastTS
}

// Frame serializes the pending chunk as a self-contained frame:
//
//	[magic "SNCH"][count u32][messages][crc32 u32]
//
// The CRC covers magic, count and messages. Frame does not reset the builder.
func (b *Builder) Frame() []byte {
	msgs := b.buf.Bytes()
	out := make([]byte, 0, len(msgs)+Overhead)

	out = append(out, Magic[:]...)
	out = binary.LittleEndian.AppendUint32(out, b.count)
	out = append(out, msgs...)
	out = binary.LittleEndian.AppendUint32(out, crc32.ChecksumIEEE(out))

	return out
}

// Reset discards all pending state.
func (b *Builder) Reset() {
	b.buf.Reset()
	b.count = 0
	b.firstTS, b.lastTS = 0, 0
	clear(b.streams)
}
