package meta

// RefType is the static tag of Ref, distinct from any storable kind.
const RefType = "senfile/impl/ref"

// Ref is a reference entry: a non-owning view over a tag and the serialized
// bytes of some metadata entry, used to defer reconstruction when reading a
// catalog. It exposes the same read contract as a materialized entry and can
// always be promoted through the registry.
//
// Ref does not copy buf; it stays valid only as long as the buffer it was
// constructed from.
type Ref struct {
	Base

	tag string
	buf []byte
}

// NewRef creates a reference entry over buf, which must hold the encoded
// representation of an entry with the given tag.
func NewRef(tag string, buf []byte) *Ref {
	return &Ref{tag: tag, buf: buf}
}

// Type returns the tag the reference was constructed with.
func (r *Ref) Type() string { return r.tag }

// StaticType returns RefType, never the wire tag, which is what routes the
// cast path through the registry instead of Clone.
func (r *Ref) StaticType() string { return RefType }

// Buffer returns the viewed bytes without copying.
func (r *Ref) Buffer() ([]byte, error) { return r.buf, nil }

// Clone returns a new Ref over the same underlying bytes.
func (r *Ref) Clone() Entry {
	c := *r
	return &c
}

// Materialize reconstructs the concrete entry of Type() from the viewed
// bytes using the registered decode function. The result carries the
// reference's id and owns its own state.
func (r *Ref) Materialize() (Entry, error) {
	e, err := Decode(r.tag, r.buf)
	if err != nil {
		return nil, err
	}
	e.SetID(r.ID())
	return e, nil
}
