package kinds

import (
	"github.com/hupe1980/senfile/codec"
	"github.com/hupe1980/senfile/meta"
)

// StreamingInfoType is the wire tag of StreamingInfo.
const StreamingInfoType = "senfile/v1/streaming_info"

func init() {
	meta.Register(StreamingInfoType, func(buf []byte) (meta.Entry, error) {
		var w streamingInfoWire
		if err := codec.Default.Unmarshal(buf, &w); err != nil {
			return nil, err
		}
		return &StreamingInfo{Chunks: w.Chunks, Streams: w.Streams}, nil
	})
}

// ChunkSummary mirrors one trailing-index chunk record inside the catalog, so
// tooling that only reads the catalog can still reason about chunk layout.
type ChunkSummary struct {
	Offset  uint64   `json:"offset"`
	Length  uint32   `json:"length"`
	FirstTS uint64   `json:"first_ts"`
	LastTS  uint64   `json:"last_ts"`
	Streams []uint32 `json:"streams,omitempty"`
}

// StreamStats summarizes one stream's messages across the whole file.
type StreamStats struct {
	StreamMetaID uint32 `json:"stream_meta_id"`
	MessageCount uint64 `json:"message_count"`
	FirstTS      uint64 `json:"first_ts"`
	LastTS       uint64 `json:"last_ts"`
	TotalBytes   uint64 `json:"total_bytes"`
}

type streamingInfoWire struct {
	Chunks  []ChunkSummary `json:"chunks"`
	Streams []StreamStats  `json:"streams"`
}

// StreamingInfo is the summary entry the writer appends to the catalog on
// close: the chunk index plus per-stream message statistics.
type StreamingInfo struct {
	meta.Base

	Chunks  []ChunkSummary
	Streams []StreamStats
}

// Type returns the wire tag.
func (s *StreamingInfo) Type() string { return StreamingInfoType }

// StaticType returns the wire tag.
func (s *StreamingInfo) StaticType() string { return StreamingInfoType }

// Buffer encodes the summary.
func (s *StreamingInfo) Buffer() ([]byte, error) {
	return codec.Default.Marshal(streamingInfoWire{Chunks: s.Chunks, Streams: s.Streams})
}

// Clone returns a new owned copy.
func (s *StreamingInfo) Clone() meta.Entry {
	c := *s
	c.Chunks = append([]ChunkSummary(nil), s.Chunks...)
	c.Streams = append([]StreamStats(nil), s.Streams...)
	return &c
}
