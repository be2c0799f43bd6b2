package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/senfile/kinds"
	"github.com/hupe1980/senfile/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// FillBytes fills dst with pseudo-random bytes.
// Locks only once per call (preferred over calling Uint64 in a loop).
func (r *RNG) FillBytes(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Read(dst) //nolint:errcheck // never fails
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	dst := make([]byte, n)
	r.FillBytes(dst)
	return dst
}

// Reading builds a frame with the given timestamp carrying each of the given
// fields with size random bytes.
func (r *RNG) Reading(ts uint64, fields []string, size int) *model.Frame {
	f := model.NewFrame(ts)
	for _, field := range fields {
		f.Set(field, r.Bytes(size))
	}
	return f
}

// Readings builds n frames with timestamps ts, ts+step, ts+2*step, ...
func (r *RNG) Readings(n int, ts, step uint64, fields []string, size int) []*model.Frame {
	out := make([]*model.Frame, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, r.Reading(ts+uint64(i)*step, fields, size))
	}
	return out
}

// Sensor returns a deterministic sensor descriptor for index i.
func Sensor(i int) kinds.SensorInfo {
	return kinds.SensorInfo{
		SerialNumber:    fmt.Sprintf("99231200%04d", i),
		Model:           "RI-128",
		FirmwareVersion: "3.1.0",
		Channels:        128,
		ColumnsPerFrame: 1024,
		Mode:            "1024x10",
	}
}

// Sensors returns n deterministic sensor descriptors.
func Sensors(n int) []kinds.SensorInfo {
	out := make([]kinds.SensorInfo, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Sensor(i))
	}
	return out
}
