package senfile

// DefaultChunkSize is the chunk-size threshold used when none is configured:
// readings accumulate per stream until a pending chunk crosses 2 MiB.
const DefaultChunkSize = 2 << 20

type options struct {
	chunkSize   int
	fixedFields []string
	extrinsics  [][16]float64
	logger      *Logger
}

// Option configures writer construction.
//
// Options exist so the two constructors don't grow positional parameters for
// every knob; everything has a working default.
type Option func(*options)

// WithChunkSize sets the chunk-size threshold in bytes. A stream's pending
// chunk is flushed once it exceeds the threshold.
//
// A size of 0 means unbounded: nothing is flushed until Close or an explicit
// Flush, and the file ends up with one chunk per stream.
func WithChunkSize(size int) Option {
	return func(o *options) {
		if size < 0 {
			size = 0
		}
		o.chunkSize = size
	}
}

// WithFields fixes the field set of every stream up front instead of deriving
// it from the first saved reading. Readings must then carry at least these
// fields; anything beyond them is trimmed at encode time.
func WithFields(fields ...string) Option {
	return func(o *options) {
		o.fixedFields = fields
	}
}

// WithExtrinsics catalogs a pose (4x4 row-major homogeneous transform) per
// sensor, in descriptor order. The number of poses must match the number of
// descriptors.
func WithExtrinsics(poses ...[16]float64) Option {
	return func(o *options) {
		o.extrinsics = poses
	}
}

// WithLogger configures structured logging for the writer.
// Pass nil to keep logging disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkSize: DefaultChunkSize,
		logger:    NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
