package senfile

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/senfile/chunk"
	"github.com/hupe1980/senfile/internal/mmap"
	"github.com/hupe1980/senfile/meta"
	"github.com/hupe1980/senfile/persistence"
)

// Reader opens a container file for indexed, selective decoding.
//
// Open prefers the trailing index; when it is missing — the writer crashed or
// never closed — the reader falls back to a forward scan and exposes every
// fully written chunk, which is exactly the recoverability the chunk framing
// pays for. Catalog entries decode through the registry where a kind is
// compiled in and stay available as meta.Ref otherwise.
//
// The file is memory-mapped: chunk payloads and reference buffers alias the
// mapping and are valid only until Close.
type Reader struct {
	m        *mmap.Mapping
	path     string
	info     *persistence.FileInfo
	store    *meta.Store
	byStream map[uint32]*roaring.Bitmap
}

// Open opens the container at path.
func Open(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("senfile: open %s: %w", path, err)
	}

	info, err := persistence.ReadFile(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("senfile: open %s: %w", path, err)
	}

	r := &Reader{
		m:        m,
		path:     path,
		info:     info,
		store:    meta.NewStore(),
		byStream: make(map[uint32]*roaring.Bitmap),
	}

	if err := r.loadCatalog(); err != nil {
		_ = m.Close()
		return nil, err
	}
	r.buildStreamIndex()

	return r, nil
}

// loadCatalog rebuilds the metadata store from the catalog records,
// materializing registered kinds and keeping the rest as references.
func (r *Reader) loadCatalog() error {
	for _, rec := range r.info.Catalog {
		var (
			e   meta.Entry
			err error
		)
		if meta.Registered(rec.Type) {
			e, err = meta.Decode(rec.Type, rec.Buffer)
			if err != nil {
				return fmt.Errorf("senfile: catalog entry %d: %w", rec.ID, err)
			}
		} else {
			e = meta.NewRef(rec.Type, rec.Buffer)
		}
		e.SetID(rec.ID)

		if _, err := r.store.Add(e); err != nil {
			return fmt.Errorf("senfile: catalog entry %d: %w", rec.ID, err)
		}
	}
	return nil
}

// buildStreamIndex maps each stream metadata id to the bitmap of chunk
// positions containing its messages. Long recordings hold thousands of
// chunks per stream; the compressed bitmaps keep per-stream selection cheap.
func (r *Reader) buildStreamIndex() {
	for pos, c := range r.info.Chunks {
		for _, id := range c.Streams {
			bm, ok := r.byStream[id]
			if !ok {
				bm = roaring.New()
				r.byStream[id] = bm
			}
			bm.Add(uint32(pos))
		}
	}
}

// Meta returns the metadata store rebuilt from the file's catalog. It is
// empty for a file whose catalog was never written.
func (r *Reader) Meta() *meta.Store { return r.store }

// Complete reports whether the trailing index was present and verified;
// false means the file was recovered by scanning.
func (r *Reader) Complete() bool { return r.info.Complete }

// Path returns the file path.
func (r *Reader) Path() string { return r.path }

// ChunkCount returns the number of decodable chunks.
func (r *Reader) ChunkCount() int { return len(r.info.Chunks) }

// ChunkInfo returns the index record of chunk i.
func (r *Reader) ChunkInfo(i int) (persistence.ChunkInfo, bool) {
	if i < 0 || i >= len(r.info.Chunks) {
		return persistence.ChunkInfo{}, false
	}
	return r.info.Chunks[i], true
}

// Chunk decodes chunk i and returns its messages in write order.
func (r *Reader) Chunk(i int) ([]chunk.Message, error) {
	if i < 0 || i >= len(r.info.Chunks) {
		return nil, fmt.Errorf("senfile: chunk %d out of range (%d chunks)", i, len(r.info.Chunks))
	}

	c := r.info.Chunks[i]
	data := r.m.Bytes()
	frame := data[c.Offset : uint64(c.Offset)+uint64(c.Length)]

	msgs, err := chunk.DecodeFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("senfile: chunk %d: %w", i, err)
	}
	return msgs, nil
}

// Messages walks every message of every chunk in file order. Iteration stops
// at the first error returned by fn.
func (r *Reader) Messages(fn func(chunk.Message) error) error {
	for i := range r.info.Chunks {
		msgs, err := r.Chunk(i)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if err := fn(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Streams returns the stream metadata ids with at least one message,
// ascending.
func (r *Reader) Streams() []uint32 {
	out := make([]uint32, 0, len(r.byStream))
	for id := range r.byStream {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ChunksFor returns the positions of the chunks holding messages of the
// given stream, in file order. Decoding only these is what makes single
// stream extraction independent of file size.
func (r *Reader) ChunksFor(streamMetaID uint32) []int {
	bm, ok := r.byStream[streamMetaID]
	if !ok {
		return nil
	}

	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// MessagesFor walks only the messages of one stream, skipping chunks without
// it entirely.
func (r *Reader) MessagesFor(streamMetaID uint32, fn func(chunk.Message) error) error {
	for _, i := range r.ChunksFor(streamMetaID) {
		msgs, err := r.Chunk(i)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if m.StreamMetaID != streamMetaID {
				continue
			}
			if err := fn(m); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases the mapping. Messages, reference buffers and anything else
// aliasing the mapped file must not be used afterwards.
func (r *Reader) Close() error {
	return r.m.Close()
}
