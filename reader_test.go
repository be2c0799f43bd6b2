package senfile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/senfile"
	"github.com/hupe1980/senfile/chunk"
	"github.com/hupe1980/senfile/kinds"
	"github.com/hupe1980/senfile/meta"
	"github.com/hupe1980/senfile/testutil"
)

func TestReaderRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(11)
	w, path := newTestWriter(t, 2, senfile.WithChunkSize(0))

	want := map[uint32][]*struct {
		ts   uint64
		data map[string][]byte
	}{}

	for i := 0; i < 4; i++ {
		for s := uint32(0); s < 2; s++ {
			r := rng.Reading(uint64(1000+100*i+int(s)), scanFields, 48)
			if err := w.Save(s, r); err != nil {
				t.Fatalf("save stream %d reading %d: %v", s, i, err)
			}
			want[s] = append(want[s], &struct {
				ts   uint64
				data map[string][]byte
			}{ts: r.TS, data: r.Data})
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := senfile.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	if !r.Complete() {
		t.Fatal("closed container reported incomplete")
	}
	if r.Path() != path {
		t.Fatalf("path = %q, want %q", r.Path(), path)
	}

	// Catalog: 2 sensors, 2 schemas, 1 summary.
	store := r.Meta()
	if store.Len() != 5 {
		t.Fatalf("catalog entries = %d, want 5", store.Len())
	}
	sensors := meta.Find[*kinds.Sensor](store)
	if len(sensors) != 2 {
		t.Fatalf("sensors = %d, want 2", len(sensors))
	}
	schemas := meta.Find[*kinds.ScanStream](store)
	if len(schemas) != 2 {
		t.Fatalf("schemas = %d, want 2", len(schemas))
	}
	for i, schema := range schemas {
		if schema.SensorMetaID != sensors[i].ID() {
			t.Fatalf("schema %d bound to sensor %d, want %d", i, schema.SensorMetaID, sensors[i].ID())
		}
	}

	streams := r.Streams()
	if len(streams) != 2 {
		t.Fatalf("streams = %v, want 2 entries", streams)
	}

	// Every message decodes back to the reading that was saved.
	for s := uint32(0); s < 2; s++ {
		id := schemas[s].ID()

		chunks := r.ChunksFor(id)
		if len(chunks) != 1 {
			t.Fatalf("stream %d spans chunks %v, want exactly one", s, chunks)
		}

		i := 0
		err := r.MessagesFor(id, func(m chunk.Message) error {
			saved := want[s][i]
			if m.Timestamp != saved.ts {
				t.Fatalf("stream %d message %d ts = %d, want %d", s, i, m.Timestamp, saved.ts)
			}
			frame, err := chunk.DecodeReading(m.Timestamp, m.Payload)
			if err != nil {
				return err
			}
			for field, data := range saved.data {
				got, err := frame.Field(field)
				if err != nil {
					return err
				}
				if !bytes.Equal(got, data) {
					t.Fatalf("stream %d message %d field %q differs", s, i, field)
				}
			}
			i++
			return nil
		})
		if err != nil {
			t.Fatalf("walk stream %d: %v", s, err)
		}
		if i != 4 {
			t.Fatalf("stream %d yielded %d messages, want 4", s, i)
		}
	}

	// The close-time summary agrees with the walk.
	info, ok := meta.First[*kinds.StreamingInfo](store)
	if !ok {
		t.Fatal("no streaming info in catalog")
	}
	if len(info.Chunks) != r.ChunkCount() {
		t.Fatalf("summary chunks = %d, reader sees %d", len(info.Chunks), r.ChunkCount())
	}
	for _, s := range info.Streams {
		if s.MessageCount != 4 {
			t.Fatalf("summary stream %d count = %d, want 4", s.StreamMetaID, s.MessageCount)
		}
	}
}

func TestReaderChunkInfo(t *testing.T) {
	rng := testutil.NewRNG(12)
	w, path := newTestWriter(t, 1, senfile.WithChunkSize(0))

	for i := 0; i < 3; i++ {
		if err := w.Save(0, rng.Reading(uint64(500+i), scanFields, 16)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	r, err := senfile.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	info, ok := r.ChunkInfo(0)
	if !ok {
		t.Fatal("chunk 0 missing")
	}
	if info.FirstTS != 500 || info.LastTS != 502 {
		t.Fatalf("chunk time range = [%d, %d], want [500, 502]", info.FirstTS, info.LastTS)
	}
	if _, ok := r.ChunkInfo(1); ok {
		t.Fatal("chunk 1 should not exist")
	}
	if _, err := r.Chunk(1); err == nil {
		t.Fatal("chunk 1 decoded")
	}

	total := 0
	if err := r.Messages(func(m chunk.Message) error { total++; return nil }); err != nil {
		t.Fatalf("walk messages: %v", err)
	}
	if total != 3 {
		t.Fatalf("messages = %d, want 3", total)
	}
}

func TestReaderRecoversUnclosedFile(t *testing.T) {
	rng := testutil.NewRNG(13)
	w, path := newTestWriter(t, 1, senfile.WithChunkSize(0))

	if err := w.Save(0, rng.Reading(100, scanFields, 32)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := w.Save(0, rng.Reading(200, scanFields, 32)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// The writer never closed; this models a crashed recording process.
	r, err := senfile.Open(path)
	if err != nil {
		t.Fatalf("open unclosed container: %v", err)
	}
	if r.Complete() {
		t.Fatal("unclosed container reported complete")
	}
	if r.ChunkCount() != 1 {
		t.Fatalf("recovered chunks = %d, want 1", r.ChunkCount())
	}
	if r.Meta().Len() != 0 {
		t.Fatalf("recovered catalog = %d entries, want 0", r.Meta().Len())
	}

	total := 0
	if err := r.Messages(func(m chunk.Message) error { total++; return nil }); err != nil {
		t.Fatalf("walk messages: %v", err)
	}
	if total != 2 {
		t.Fatalf("recovered messages = %d, want 2", total)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close reader: %v", err)
	}

	// Finishing the writer afterwards yields a complete container.
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	r2, err := senfile.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer r2.Close()
	if !r2.Complete() {
		t.Fatal("finished container reported incomplete")
	}
	if r2.Meta().Len() == 0 {
		t.Fatal("finished container has empty catalog")
	}
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-container")
	if err := os.WriteFile(path, []byte("definitely not a container"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := senfile.Open(path); err == nil {
		t.Fatal("foreign file opened")
	}

	if _, err := senfile.Open(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("missing file opened")
	}
}
