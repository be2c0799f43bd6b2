package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hupe1980/senfile"
	"github.com/hupe1980/senfile/chunk"
	"github.com/hupe1980/senfile/model"
	"github.com/hupe1980/senfile/resource"
	"github.com/hupe1980/senfile/testutil"
)

var fields = []string{"range", "signal"}

func newTestRecorder(t *testing.T, streams int, optFns ...func(o *Options)) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.snf")
	w, err := senfile.NewMultiWriter(path, testutil.Sensors(streams), senfile.WithChunkSize(0))
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	return New(w, optFns...), path
}

func TestConcurrentProducers(t *testing.T) {
	r, path := newTestRecorder(t, 2)

	const producers = 4
	const perProducer = 25

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			rng := testutil.NewRNG(int64(p))
			for i := 0; i < perProducer; i++ {
				reading := rng.Reading(uint64(1000*p+i), fields, 32)
				if err := r.Record(context.Background(), uint32(i%2), reading); err != nil {
					t.Errorf("producer %d record %d: %v", p, i, err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reader, err := senfile.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reader.Close()

	total := 0
	if err := reader.Messages(func(m chunk.Message) error { total++; return nil }); err != nil {
		t.Fatalf("walk messages: %v", err)
	}
	if total != producers*perProducer {
		t.Fatalf("messages = %d, want %d", total, producers*perProducer)
	}
}

func TestRecordAfterClose(t *testing.T) {
	r, _ := newTestRecorder(t, 1)

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); !errors.Is(err, ErrRecorderClosed) {
		t.Fatalf("second close: err = %v, want ErrRecorderClosed", err)
	}

	err := r.Record(context.Background(), 0, model.NewFrame(1).Set("range", nil))
	if !errors.Is(err, ErrRecorderClosed) {
		t.Fatalf("record after close: err = %v, want ErrRecorderClosed", err)
	}
}

func TestSaveErrorSurfacesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.snf")
	w, err := senfile.NewWriter(path, testutil.Sensor(0),
		senfile.WithChunkSize(0), senfile.WithFields("range", "signal"))
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}
	r := New(w)

	// Missing a fixed field fails inside the writer goroutine, not here.
	bad := model.NewFrame(1).Set("range", []byte{1})
	if err := r.Record(context.Background(), 0, bad); err != nil {
		t.Fatalf("record: %v", err)
	}

	err = r.Close()
	var fse *model.FieldSetError
	if !errors.As(err, &fse) {
		t.Fatalf("close err = %v, want *model.FieldSetError", err)
	}
	if fse.Missing != "signal" {
		t.Fatalf("missing = %q, want signal", fse.Missing)
	}
}

func TestRecordHonorsContext(t *testing.T) {
	r, _ := newTestRecorder(t, 1, func(o *Options) {
		o.Resources = resource.Config{MemoryLimitBytes: 80}
	})

	// A reading larger than the whole budget can never be admitted.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rng := testutil.NewRNG(1)
	err := r.Record(ctx, 0, rng.Reading(1, fields, 128))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("record err = %v, want context.Canceled", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
