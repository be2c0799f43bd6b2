package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Descriptor kinds (sensor info, stream schemas) are map-like structures for
// which JSON is stable and portable across toolchains. Use it when the
// lowest-dependency option matters more than encode throughput.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used by the built-in metadata kinds.
//
// The two built-in codecs produce interchangeable bytes (both emit JSON), so
// Default only selects the implementation, not the wire schema.
var Default Codec = GoJSON{}
