package model

import (
	"fmt"
	"sort"
)

// Reading is the collaborator interface the writer consumes.
//
// Timestamp is nanoseconds since the unix epoch. Has reports field presence;
// Field returns the encoded representation of a present field. Fields lists
// the present field identifiers in ascending order.
//
// Implementations own their buffers only for the duration of a save call;
// the writer copies what it keeps.
type Reading interface {
	Timestamp() uint64
	Has(field string) bool
	Field(field string) ([]byte, error)
	Fields() []string
}

// Frame is a map-backed Reading for producers that assemble readings in
// memory (and for tests).
type Frame struct {
	TS   uint64
	Data map[string][]byte
}

// NewFrame creates a frame with the given timestamp and no fields.
func NewFrame(ts uint64) *Frame {
	return &Frame{TS: ts, Data: make(map[string][]byte)}
}

// Set stores the encoded representation of a field.
func (f *Frame) Set(field string, data []byte) *Frame {
	f.Data[field] = data
	return f
}

// Timestamp returns the frame timestamp in unix nanoseconds.
func (f *Frame) Timestamp() uint64 { return f.TS }

// Has reports whether the field is present.
func (f *Frame) Has(field string) bool {
	_, ok := f.Data[field]
	return ok
}

// Field returns the encoded representation of a present field.
func (f *Frame) Field(field string) ([]byte, error) {
	data, ok := f.Data[field]
	if !ok {
		return nil, fmt.Errorf("model: field %q not present", field)
	}
	return data, nil
}

// Fields returns the present field identifiers in ascending order.
func (f *Frame) Fields() []string {
	out := make([]string, 0, len(f.Data))
	for field := range f.Data {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// FieldSet is an ordered, deduplicated set of field identifiers. A stream's
// field set is fixed either explicitly at writer construction or by the first
// reading saved to the stream, and never changes afterwards.
type FieldSet struct {
	fields []string
}

// NewFieldSet builds a set from the given identifiers, sorted and
// deduplicated. An empty result means "not fixed yet".
func NewFieldSet(fields ...string) FieldSet {
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup || f == "" {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return FieldSet{fields: out}
}

// FieldSetOf derives the set from the fields present in a reading.
func FieldSetOf(r Reading) FieldSet {
	return NewFieldSet(r.Fields()...)
}

// Empty reports whether the set holds no fields.
func (fs FieldSet) Empty() bool { return len(fs.fields) == 0 }

// Len returns the number of fields.
func (fs FieldSet) Len() int { return len(fs.fields) }

// Fields returns the identifiers in ascending order. The caller must not
// mutate the returned slice.
func (fs FieldSet) Fields() []string { return fs.fields }

// FieldSetError reports a reading that is incompatible with a stream's fixed
// field set.
//
// The compatibility rule is superset-trim: a reading must carry every fixed
// field; fields beyond the fixed set are silently dropped at encode time.
type FieldSetError struct {
	Missing string
}

func (e *FieldSetError) Error() string {
	return fmt.Sprintf("reading is missing fixed field %q", e.Missing)
}

// Check verifies the reading against the fixed set under the superset-trim
// rule, returning a *FieldSetError naming the first missing field.
func (fs FieldSet) Check(r Reading) error {
	for _, f := range fs.fields {
		if !r.Has(f) {
			return &FieldSetError{Missing: f}
		}
	}
	return nil
}
