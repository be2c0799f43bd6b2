package persistence

import (
	"encoding/binary"
	"fmt"

	"github.com/hupe1980/senfile/chunk"
)

// FileInfo is the parsed skeleton of a container file: where its chunks are,
// its catalog records, and whether the trailing index was present.
//
// Catalog buffers and chunk infos alias the input data; they stay valid only
// as long as the mapping or slice the file was parsed from.
type FileInfo struct {
	Version uint32
	Chunks  []ChunkInfo
	Catalog []CatalogRecord

	// Complete is true when the trailing index was found and verified. A
	// false value means the file was never closed; Chunks then holds every
	// fully written chunk recovered by a forward scan and Catalog is empty
	// unless the catalog section itself survived.
	Complete bool
}

// ReadFile parses container bytes, preferring the trailing index and falling
// back to a forward section scan when the index is missing or torn.
func ReadFile(data []byte) (*FileInfo, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("%w: header", ErrTruncated)
	}
	if [4]byte(data[0:4]) != fileMagic {
		return nil, ErrInvalidMagic
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != Version {
		return nil, fmt.Errorf("%w: 0x%08x", ErrInvalidVersion, version)
	}

	if fi, ok := readTrailer(data, version); ok {
		return fi, nil
	}
	return scanSections(data, version)
}

// readTrailer locates and verifies the trailing index from EOF. Any defect
// reports !ok so the caller falls back to scanning; a torn trailer must not
// make the chunks before it unreachable.
func readTrailer(data []byte, version uint32) (*FileInfo, bool) {
	if len(data) < headerLen+trailerSuffixLen {
		return nil, false
	}

	suffix := data[len(data)-trailerSuffixLen:]
	if [4]byte(suffix[4:8]) != indexMagic {
		return nil, false
	}
	tlen := binary.LittleEndian.Uint32(suffix[0:4])
	end := len(data) - trailerSuffixLen
	if tlen < 8 || int(tlen) > end-headerLen {
		return nil, false
	}

	trailer := data[end-int(tlen) : end]
	body, sum := trailer[:len(trailer)-4], binary.LittleEndian.Uint32(trailer[len(trailer)-4:])
	if Checksum(body) != sum {
		return nil, false
	}

	fi := &FileInfo{Version: version, Complete: true}

	off := 0
	count, ok := readU32(body, &off)
	if !ok {
		return nil, false
	}
	for i := uint32(0); i < count; i++ {
		var c ChunkInfo
		var nStreams uint16
		if c.Offset, ok = readU64(body, &off); !ok {
			return nil, false
		}
		if c.Length, ok = readU32(body, &off); !ok {
			return nil, false
		}
		if c.FirstTS, ok = readU64(body, &off); !ok {
			return nil, false
		}
		if c.LastTS, ok = readU64(body, &off); !ok {
			return nil, false
		}
		if nStreams, ok = readU16(body, &off); !ok {
			return nil, false
		}
		c.Streams = make([]uint32, nStreams)
		for j := range c.Streams {
			if c.Streams[j], ok = readU32(body, &off); !ok {
				return nil, false
			}
		}
		if int(c.Offset)+int(c.Length) > len(data) {
			return nil, false
		}
		fi.Chunks = append(fi.Chunks, c)
	}

	catalogOff, ok := readU64(body, &off)
	if !ok {
		return nil, false
	}
	catalogLen, ok := readU32(body, &off)
	if !ok {
		return nil, false
	}
	if int(catalogOff)+int(catalogLen) > len(data) {
		return nil, false
	}

	catalog, err := parseCatalog(data[catalogOff : catalogOff+uint64(catalogLen)])
	if err != nil {
		return nil, false
	}
	fi.Catalog = catalog

	return fi, true
}

// scanSections walks length-prefixed sections front to back, keeping every
// chunk that verifies and stopping at the first torn one. Unknown section
// magics are skipped; they are length-prefixed exactly so newer writers stay
// readable.
func scanSections(data []byte, version uint32) (*FileInfo, error) {
	fi := &FileInfo{Version: version}

	off := headerLen
	for off+sectionPrefixLen <= len(data) {
		n := binary.LittleEndian.Uint32(data[off : off+sectionPrefixLen])
		start := off + sectionPrefixLen
		if n < 4 || start+int(n) > len(data) {
			break // torn tail
		}
		payload := data[start : start+int(n)]

		switch [4]byte(payload[0:4]) {
		case chunk.Magic:
			msgs, err := chunk.DecodeFrame(payload)
			if err != nil {
				return fi, nil // torn or corrupt chunk ends the recoverable prefix
			}
			fi.Chunks = append(fi.Chunks, chunkInfoOf(uint64(start), payload, msgs))
		case catalogMagic:
			catalog, err := parseCatalog(payload)
			if err != nil {
				return fi, nil
			}
			fi.Catalog = catalog
		}

		off = start + int(n)
	}

	return fi, nil
}

func chunkInfoOf(offset uint64, frame []byte, msgs []chunk.Message) ChunkInfo {
	info := ChunkInfo{Offset: offset, Length: uint32(len(frame))}

	seen := make(map[uint32]struct{})
	for i, m := range msgs {
		if i == 0 || m.Timestamp < info.FirstTS {
			info.FirstTS = m.Timestamp
		}
		if m.Timestamp > info.LastTS {
			info.LastTS = m.Timestamp
		}
		if _, ok := seen[m.StreamMetaID]; !ok {
			seen[m.StreamMetaID] = struct{}{}
			info.Streams = append(info.Streams, m.StreamMetaID)
		}
	}

	return info
}

// parseCatalog decodes a catalog section payload written by encodeCatalog.
func parseCatalog(payload []byte) ([]CatalogRecord, error) {
	if len(payload) < 12 {
		return nil, fmt.Errorf("%w: catalog", ErrTruncated)
	}
	if [4]byte(payload[0:4]) != catalogMagic {
		return nil, fmt.Errorf("%w: catalog magic", ErrInvalidMagic)
	}

	body, sum := payload[:len(payload)-4], binary.LittleEndian.Uint32(payload[len(payload)-4:])
	if err := verifyChecksum("catalog", body, sum); err != nil {
		return nil, err
	}

	off := 4
	count, ok := readU32(body, &off)
	if !ok {
		return nil, fmt.Errorf("%w: catalog count", ErrTruncated)
	}

	records := make([]CatalogRecord, 0, count)
	for i := uint32(0); i < count; i++ {
		var rec CatalogRecord
		if rec.ID, ok = readU32(body, &off); !ok {
			return nil, fmt.Errorf("%w: catalog record %d", ErrTruncated, i)
		}
		typeLen, ok := readU16(body, &off)
		if !ok || off+int(typeLen) > len(body) {
			return nil, fmt.Errorf("%w: catalog record %d type", ErrTruncated, i)
		}
		rec.Type = string(body[off : off+int(typeLen)])
		off += int(typeLen)

		bufLen, ok := readU32(body, &off)
		if !ok || off+int(bufLen) > len(body) {
			return nil, fmt.Errorf("%w: catalog record %d buffer", ErrTruncated, i)
		}
		rec.Buffer = body[off : off+int(bufLen) : off+int(bufLen)]
		off += int(bufLen)

		records = append(records, rec)
	}

	return records, nil
}

func readU16(b []byte, off *int) (uint16, bool) {
	if *off+2 > len(b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(b[*off:])
	*off += 2
	return v, true
}

func readU32(b []byte, off *int) (uint32, bool) {
	if *off+4 > len(b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(b[*off:])
	*off += 4
	return v, true
}

func readU64(b []byte, off *int) (uint64, bool) {
	if *off+8 > len(b) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(b[*off:])
	*off += 8
	return v, true
}
