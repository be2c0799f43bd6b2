// Package codec centralizes the encoding of structured metadata kinds.
//
// Senfile treats codec selection as a breaking-change boundary: a metadata
// buffer written by one codec must keep decoding with the same codec, so the
// codec in use is part of a kind's wire schema, not a runtime knob.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// Kinds that want a self-describing buffer can store the codec name next to
// the payload and select the codec by name on decode.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
