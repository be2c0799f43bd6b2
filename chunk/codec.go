package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/senfile/model"
)

var (
	// ErrBadFrame indicates a chunk frame with a wrong magic or one too short
	// to hold its own framing.
	ErrBadFrame = errors.New("malformed chunk frame")
	// ErrChecksum indicates a chunk frame whose trailing CRC32 does not match
	// its content (torn or corrupt write).
	ErrChecksum = errors.New("chunk checksum mismatch")
)

// DecodeFrame parses a self-contained chunk frame produced by Builder.Frame,
// verifying magic and CRC before touching any message.
//
// Message payloads alias the input frame; callers that outlive the frame must
// copy.
func DecodeFrame(frame []byte) ([]Message, error) {
	if len(frame) < Overhead {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(frame))
	}
	if [4]byte(frame[0:4]) != Magic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadFrame)
	}

	body, sum := frame[:len(frame)-4], binary.LittleEndian.Uint32(frame[len(frame)-4:])
	if crc32.ChecksumIEEE(body) != sum {
		return nil, ErrChecksum
	}

	count := binary.LittleEndian.Uint32(frame[4:8])
	msgs := make([]Message, 0, count)
	rest := body[8:]

	for i := uint32(0); i < count; i++ {
		if len(rest) < msgHeaderLen {
			return nil, fmt.Errorf("%w: truncated message %d", ErrBadFrame, i)
		}
		id := binary.LittleEndian.Uint32(rest[0:4])
		ts := binary.LittleEndian.Uint64(rest[4:12])
		n := binary.LittleEndian.Uint32(rest[12:16])
		rest = rest[msgHeaderLen:]

		if uint32(len(rest)) < n {
			return nil, fmt.Errorf("%w: message %d payload", ErrBadFrame, i)
		}
		msgs = append(msgs, Message{StreamMetaID: id, Timestamp: ts, Payload: rest[:n:n]})
		rest = rest[n:]
	}

	return msgs, nil
}

// EncodeReading encodes a reading under a fixed field set:
//
//	[field count u16] then per field: [name len u16][name][data len u32][data]
//
// Fields are emitted in the set's order. The reading must satisfy the set's
// compatibility rule (every fixed field present); fields the reading carries
// beyond the set are trimmed.
func EncodeReading(fs model.FieldSet, r model.Reading) ([]byte, error) {
	if err := fs.Check(r); err != nil {
		return nil, err
	}

	fields := fs.Fields()
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(fields)))

	for _, field := range fields {
		data, err := r.Field(field)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", field, err)
		}
		out = binary.LittleEndian.AppendUint16(out, uint16(len(field)))
		out = append(out, field...)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
		out = append(out, data...)
	}

	return out, nil
}

// DecodeReading parses an encoded reading back into a Frame stamped with the
// message timestamp. Field bytes are copied out of payload.
func DecodeReading(ts uint64, payload []byte) (*model.Frame, error) {
	if len(payload) < 2 {
		return nil, fmt.Errorf("%w: reading too short", ErrBadFrame)
	}
	count := binary.LittleEndian.Uint16(payload[0:2])
	rest := payload[2:]

	frame := model.NewFrame(ts)
	for i := uint16(0); i < count; i++ {
		if len(rest) < 2 {
			return nil, fmt.Errorf("%w: field %d name length", ErrBadFrame, i)
		}
		nameLen := binary.LittleEndian.Uint16(rest[0:2])
		rest = rest[2:]
		if uint16(len(rest)) < nameLen {
			return nil, fmt.Errorf("%w: field %d name", ErrBadFrame, i)
		}
		name := string(rest[:nameLen])
		rest = rest[nameLen:]

		if len(rest) < 4 {
			return nil, fmt.Errorf("%w: field %q data length", ErrBadFrame, name)
		}
		dataLen := binary.LittleEndian.Uint32(rest[0:4])
		rest = rest[4:]
		if uint32(len(rest)) < dataLen {
			return nil, fmt.Errorf("%w: field %q data", ErrBadFrame, name)
		}
		frame.Set(name, append([]byte(nil), rest[:dataLen]...))
		rest = rest[dataLen:]
	}

	return frame, nil
}
