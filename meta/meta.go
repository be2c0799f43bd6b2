package meta

// Entry is the contract every storable metadata kind implements.
//
// Type returns the dynamic tag and reflects the actual encoded content; for a
// Ref it is the tag read off the wire. StaticType always returns the kind's
// compile-time tag, so a materialized entry satisfies Type() == StaticType()
// while a reference does not. Buffer encodes the entry to its byte
// representation. Clone returns a new owned instance; it exists so the cast
// path can hand out copies instead of aliasing catalog-owned state.
//
// Concrete kinds embed Base to inherit the id accessors and register a
// DecodeFunc in an init function:
//
//	const TypeTag = "senfile/v1/my_kind"
//
//	func init() {
//		meta.Register(TypeTag, func(buf []byte) (meta.Entry, error) { ... })
//	}
//
// Two kinds sharing a tag must be bit-compatible; registering both is a fatal
// configuration error.
type Entry interface {
	Type() string
	StaticType() string
	Buffer() ([]byte, error)
	Clone() Entry

	ID() uint32
	SetID(uint32)
}

// Base carries the per-file unique id of an entry. Concrete kinds embed it by
// value; the Store assigns the id on Add.
type Base struct {
	id uint32
}

// ID returns the entry id, or 0 while unassigned.
func (b *Base) ID() uint32 { return b.id }

// SetID sets the entry id. The Store calls this exactly once per entry;
// callers normally have no reason to.
func (b *Base) SetID(id uint32) { b.id = id }

// TagOf returns the compile-time tag of kind K.
//
// It calls StaticType on K's zero value, so kinds must keep StaticType safe on
// a nil receiver (return the tag constant without touching fields). All kinds
// in senfile/kinds follow that rule.
func TagOf[K Entry]() string {
	var k K
	return k.StaticType()
}

// As casts an entry to the concrete kind K.
//
// The cast succeeds only when the entry's dynamic tag matches K's tag. A
// materialized entry is cloned; a reference is decoded from its buffer through
// the registry. Either way the caller gets a new owned instance carrying the
// source entry's id. Tag mismatch is an expected outcome and yields
// (zero, false) rather than an error.
func As[K Entry](e Entry) (K, bool) {
	var zero K
	if e == nil || e.Type() != TagOf[K]() {
		return zero, false
	}

	var m Entry
	if e.Type() == e.StaticType() {
		m = e.Clone()
	} else {
		buf, err := e.Buffer()
		if err != nil {
			return zero, false
		}
		m, err = Decode(e.Type(), buf)
		if err != nil {
			return zero, false
		}
	}

	k, ok := m.(K)
	if !ok {
		return zero, false
	}
	m.SetID(e.ID())

	return k, true
}
