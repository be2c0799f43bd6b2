package senfile

import (
	"context"
	"fmt"

	"github.com/hupe1980/senfile/chunk"
	"github.com/hupe1980/senfile/kinds"
	"github.com/hupe1980/senfile/meta"
	"github.com/hupe1980/senfile/model"
	"github.com/hupe1980/senfile/persistence"
)

// stream is one sensor's ordered channel of readings: its position in the
// descriptor list, the metadata ids binding it to the catalog, its fixed
// field set and its pending chunk.
type stream struct {
	index        uint32
	sensorMetaID uint32
	schemaMetaID uint32 // 0 until the field set fixes
	fields       model.FieldSet
	pending      *chunk.Builder
	stats        kinds.StreamStats
}

// Writer batches per-sensor readings into size-bounded chunks and finalizes
// a self-describing container file on Close.
//
// Writer follows a single-writer model: Save, SaveAll, AddMetadata, Flush and
// Close must not run concurrently. Use package recorder when multiple
// producers feed one file.
type Writer struct {
	backend     *persistence.Backend
	store       *meta.Store
	streams     []*stream
	descriptors []kinds.SensorInfo
	chunkSize   int
	fixedFields model.FieldSet
	logger      *Logger
	closed      bool
}

// NewWriter creates a single-stream container for one sensor descriptor.
func NewWriter(path string, info kinds.SensorInfo, optFns ...Option) (*Writer, error) {
	return NewMultiWriter(path, []kinds.SensorInfo{info}, optFns...)
}

// NewMultiWriter creates a container with one stream per sensor descriptor,
// in the order the descriptors are supplied. Stream index i maps to
// descriptor i for the lifetime of the writer.
func NewMultiWriter(path string, infos []kinds.SensorInfo, optFns ...Option) (*Writer, error) {
	if len(infos) == 0 {
		return nil, fmt.Errorf("senfile: no sensor descriptors")
	}

	o := applyOptions(optFns)
	if len(o.extrinsics) > 0 && len(o.extrinsics) != len(infos) {
		return nil, fmt.Errorf("senfile: %d extrinsics for %d descriptors", len(o.extrinsics), len(infos))
	}

	backend, err := persistence.Create(path)
	if err != nil {
		return nil, err
	}

	w := &Writer{
		backend:     backend,
		store:       meta.NewStore(),
		descriptors: append([]kinds.SensorInfo(nil), infos...),
		chunkSize:   o.chunkSize,
		fixedFields: model.NewFieldSet(o.fixedFields...),
		logger:      o.logger,
	}

	for i, info := range infos {
		sensorID, err := w.store.Add(kinds.NewSensor(info))
		if err != nil {
			_ = backend.Abort()
			return nil, err
		}

		if len(o.extrinsics) > 0 {
			if _, err := w.store.Add(kinds.NewExtrinsics(sensorID, o.extrinsics[i])); err != nil {
				_ = backend.Abort()
				return nil, err
			}
		}

		w.streams = append(w.streams, &stream{
			index:        uint32(i),
			sensorMetaID: sensorID,
			pending:      chunk.NewBuilder(),
		})
	}

	return w, nil
}

// Save encodes one reading for the stream at streamIndex and appends it to
// that stream's pending chunk, flushing the chunk once it crosses the
// configured size threshold.
//
// The first reading saved to a stream fixes its field set permanently (unless
// WithFields fixed it already); later readings must carry at least the fixed
// fields and are trimmed down to them. All failures are reported before any
// state changes.
func (w *Writer) Save(streamIndex uint32, r model.Reading) error {
	if w.closed {
		return ErrClosed
	}
	if int(streamIndex) >= len(w.streams) {
		return &OutOfRangeError{Index: streamIndex, Streams: len(w.streams)}
	}

	s := w.streams[streamIndex]

	fields := s.fields
	if fields.Empty() {
		if !w.fixedFields.Empty() {
			fields = w.fixedFields
		} else {
			fields = model.FieldSetOf(r)
		}
	}

	payload, err := chunk.EncodeReading(fields, r)
	if err != nil {
		return err
	}

	// Nothing can fail past this point; fix the schema and mutate.
	if s.fields.Empty() {
		if err := w.fixSchema(s, fields); err != nil {
			return err
		}
	}

	ts := r.Timestamp()
	s.pending.Append(s.schemaMetaID, ts, payload)

	if s.stats.MessageCount == 0 || ts < s.stats.FirstTS {
		s.stats.FirstTS = ts
	}
	if ts > s.stats.LastTS {
		s.stats.LastTS = ts
	}
	s.stats.MessageCount++
	s.stats.TotalBytes += uint64(len(payload))

	if w.chunkSize > 0 && s.pending.Len() > w.chunkSize {
		return w.flush(s)
	}
	return nil
}

// fixSchema fixes the stream's field set and catalogs its schema entry.
func (w *Writer) fixSchema(s *stream, fields model.FieldSet) error {
	id, err := w.store.Add(kinds.NewScanStream(s.sensorMetaID, fields.Fields()))
	if err != nil {
		return err
	}
	s.fields = fields
	s.schemaMetaID = id
	s.stats.StreamMetaID = id
	return nil
}

// SaveAll saves one reading per stream, index by index. The number of
// readings must equal StreamCount.
//
// The call is not atomic: when index i fails, a *BatchError names i, and
// chunks flushed by indices before i stay on disk. Staying non-atomic is a
// deliberate trade against buffering the whole batch in memory first.
func (w *Writer) SaveAll(readings []model.Reading) error {
	if w.closed {
		return ErrClosed
	}
	if len(readings) != len(w.streams) {
		return &BatchLengthError{Got: len(readings), Want: len(w.streams)}
	}

	for i, r := range readings {
		if err := w.Save(uint32(i), r); err != nil {
			return &BatchError{Index: i, cause: err}
		}
	}
	return nil
}

// AddMetadata catalogs an additional entry (for example a user-defined kind)
// so it is serialized with the file's catalog on Close. Returns the assigned
// metadata id.
func (w *Writer) AddMetadata(e meta.Entry) (uint32, error) {
	if w.closed {
		return 0, ErrClosed
	}
	return w.store.Add(e)
}

// Flush writes every stream's pending chunk regardless of the size
// threshold. Empty pending chunks are skipped.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	return w.flushAll()
}

func (w *Writer) flushAll() error {
	for _, s := range w.streams {
		if err := w.flush(s); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flush(s *stream) error {
	if s.pending.Empty() {
		return nil
	}

	frame := s.pending.Frame()
	first, last := s.pending.TimeRange()
	messages := s.pending.Count()

	_, err := w.backend.WriteChunk(frame, s.pending.StreamIDs(), first, last)
	w.logger.LogFlush(context.Background(), s.index, messages, len(frame), err)
	if err != nil {
		return fmt.Errorf("flush stream %d: %w", s.index, err)
	}

	s.pending.Reset()
	return nil
}

// Close flushes every stream's pending chunk, appends the streaming summary,
// serializes the metadata catalog and writes the trailing index. The writer
// transitions to closed exactly once; a second Close returns ErrClosed.
//
// Close marks the writer closed even when finalization fails — the backend
// resources are gone either way, and a retry cannot re-flush them.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	w.closed = true

	err := w.finalize()
	w.logger.LogClose(context.Background(), w.backend.Path(), len(w.backend.Chunks()), w.store.Len(), err)
	return err
}

func (w *Writer) finalize() error {
	for _, s := range w.streams {
		if err := w.flush(s); err != nil {
			return err
		}
	}

	if _, err := w.store.Add(w.streamingInfo()); err != nil {
		return err
	}

	entries := w.store.All()
	catalog := make([]persistence.CatalogRecord, 0, len(entries))
	for _, e := range entries {
		buf, err := e.Buffer()
		if err != nil {
			return fmt.Errorf("encode metadata %d (%s): %w", e.ID(), e.Type(), err)
		}
		catalog = append(catalog, persistence.CatalogRecord{ID: e.ID(), Type: e.Type(), Buffer: buf})
	}

	return w.backend.Finish(catalog)
}

// streamingInfo builds the close-time summary from the backend's chunk index
// and the per-stream counters.
func (w *Writer) streamingInfo() *kinds.StreamingInfo {
	info := &kinds.StreamingInfo{}

	for _, c := range w.backend.Chunks() {
		info.Chunks = append(info.Chunks, kinds.ChunkSummary{
			Offset:  c.Offset,
			Length:  c.Length,
			FirstTS: c.FirstTS,
			LastTS:  c.LastTS,
			Streams: c.Streams,
		})
	}
	for _, s := range w.streams {
		if s.stats.MessageCount > 0 {
			info.Streams = append(info.Streams, s.stats)
		}
	}

	return info
}

// IsClosed reports whether the writer transitioned to closed.
func (w *Writer) IsClosed() bool { return w.closed }

// StreamCount returns the number of configured streams.
func (w *Writer) StreamCount() int { return len(w.streams) }

// Descriptors returns the sensor descriptors in stream order.
func (w *Writer) Descriptors() []kinds.SensorInfo {
	return append([]kinds.SensorInfo(nil), w.descriptors...)
}

// Descriptor returns the descriptor of the stream at index.
func (w *Writer) Descriptor(index uint32) (kinds.SensorInfo, bool) {
	if int(index) >= len(w.descriptors) {
		return kinds.SensorInfo{}, false
	}
	return w.descriptors[index], true
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.backend.Path() }

// ChunkSize returns the configured chunk-size threshold in bytes; 0 means
// unbounded.
func (w *Writer) ChunkSize() int { return w.chunkSize }
