package persistence

import "errors"

const (
	// Version is the current container format version (v1.0.0).
	Version = 0x00010000

	// headerLen is the fixed file header:
	// magic (4) + version (4) + flags (2) + reserved (6).
	headerLen = 16

	// sectionPrefixLen is the length prefix in front of every section.
	sectionPrefixLen = 4

	// trailerSuffixLen closes the file: trailer length (4) + index magic (4).
	trailerSuffixLen = 8
)

var (
	// fileMagic starts every container file (ASCII "SNF0").
	fileMagic = [4]byte{'S', 'N', 'F', '0'}
	// catalogMagic starts the metadata catalog section (ASCII "SNMD").
	catalogMagic = [4]byte{'S', 'N', 'M', 'D'}
	// indexMagic ends the trailing index (ASCII "SNIX").
	indexMagic = [4]byte{'S', 'N', 'I', 'X'}
)

var (
	// ErrInvalidMagic indicates a file that does not start with the container
	// magic.
	ErrInvalidMagic = errors.New("invalid container magic")
	// ErrInvalidVersion indicates a container written by an unsupported
	// format version.
	ErrInvalidVersion = errors.New("unsupported container version")
	// ErrFinished indicates a write on a backend whose trailing index was
	// already emitted.
	ErrFinished = errors.New("container already finished")
	// ErrTruncated indicates bytes that end mid-structure.
	ErrTruncated = errors.New("truncated container data")
)

// CatalogRecord is the serialized form of one metadata entry, the
// `{id, type, buffer}` triplet independent of the encoding inside Buffer.
type CatalogRecord struct {
	ID     uint32
	Type   string
	Buffer []byte
}

// ChunkInfo locates one chunk section and summarizes its coverage for the
// trailing index.
type ChunkInfo struct {
	// Offset of the chunk frame in the file (past the section length prefix).
	Offset uint64
	// Length of the chunk frame in bytes.
	Length uint32
	// FirstTS and LastTS bound the message timestamps inside the chunk.
	FirstTS uint64
	LastTS  uint64
	// Streams lists the stream metadata ids with messages in the chunk,
	// ascending.
	Streams []uint32
}
