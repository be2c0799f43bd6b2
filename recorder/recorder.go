// Package recorder feeds a senfile writer from concurrent producers.
//
// The writer follows a single-writer model; recorder provides the external
// serialization the model asks for: a bounded queue drained by one goroutine
// that owns the writer. Producers block when the queue's memory budget is
// exhausted, which bounds recording memory independent of producer count and
// burst size.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/senfile"
	"github.com/hupe1980/senfile/model"
	"github.com/hupe1980/senfile/resource"
)

// ErrRecorderClosed is returned by Record after Close began.
var ErrRecorderClosed = errors.New("recorder is closed")

// Options configures a Recorder.
type Options struct {
	// QueueDepth is the maximum number of readings waiting for the writer
	// goroutine. Default: 64.
	QueueDepth int

	// Resources bounds queued payload memory and flush IO throughput.
	// Zero values mean unlimited.
	Resources resource.Config
}

// DefaultOptions returns the default recorder options.
var DefaultOptions = Options{
	QueueDepth: 64,
}

type job struct {
	index   uint32
	reading model.Reading
	cost    int64
}

// Recorder owns a writer and drains a bounded queue into it.
//
// Save errors do not surface on the Record call that caused them — the queue
// decouples the two — but on every later Record and on Close. After the
// first failure the recorder drains remaining jobs without writing.
type Recorder struct {
	w   *senfile.Writer
	res *resource.Controller

	mu     sync.RWMutex // guards jobs close vs. send
	jobs   chan job
	closed atomic.Bool
	wg     sync.WaitGroup

	errMu sync.Mutex
	err   error // first Save failure
}

// New creates a recorder draining into w and starts its writer goroutine.
// The recorder takes ownership of w; close it through Recorder.Close.
func New(w *senfile.Writer, optFns ...func(o *Options)) *Recorder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.QueueDepth <= 0 {
		opts.QueueDepth = DefaultOptions.QueueDepth
	}

	r := &Recorder{
		w:    w,
		res:  resource.NewController(opts.Resources),
		jobs: make(chan job, opts.QueueDepth),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// run is the single consumer; it is the only goroutine touching the writer.
func (r *Recorder) run() {
	defer r.wg.Done()

	for j := range r.jobs {
		if r.Err() == nil {
			if err := r.res.AcquireIO(context.Background(), int(j.cost)); err != nil {
				r.setErr(err)
			} else if err := r.w.Save(j.index, j.reading); err != nil {
				r.setErr(fmt.Errorf("record stream %d: %w", j.index, err))
			}
		}
		r.res.ReleaseMemory(j.cost)
	}
}

// Record queues one reading for the stream at index. It blocks while the
// queue is full or the memory budget is exhausted, honoring ctx.
//
// The reading must stay untouched until it was written; producers that reuse
// buffers must hand over a copy.
func (r *Recorder) Record(ctx context.Context, index uint32, reading model.Reading) error {
	if r.closed.Load() {
		return ErrRecorderClosed
	}
	if err := r.Err(); err != nil {
		return err
	}

	cost := readingCost(reading)
	if err := r.res.AcquireMemory(ctx, cost); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		r.res.ReleaseMemory(cost)
		return ErrRecorderClosed
	}

	select {
	case r.jobs <- job{index: index, reading: reading, cost: cost}:
		return nil
	case <-ctx.Done():
		r.res.ReleaseMemory(cost)
		return ctx.Err()
	}
}

// Err returns the first Save failure, or nil.
func (r *Recorder) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

func (r *Recorder) setErr(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

// Close drains the queue, stops the writer goroutine and closes the writer.
// It returns the first Save failure if one happened, otherwise the writer's
// Close result. Close must be called exactly once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed.Swap(true) {
		r.mu.Unlock()
		return ErrRecorderClosed
	}
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()

	saveErr := r.Err()
	closeErr := r.w.Close()
	if saveErr != nil {
		return saveErr
	}
	return closeErr
}

// readingCost estimates the queued memory of a reading: its field payloads
// plus a fixed per-reading overhead.
func readingCost(r model.Reading) int64 {
	cost := int64(64)
	for _, f := range r.Fields() {
		if data, err := r.Field(f); err == nil {
			cost += int64(len(data))
		}
	}
	return cost
}
