// Package meta implements the metadata type system of senfile containers.
//
// Every structured value that can be stored in a container's catalog is a
// metadata entry: a `{id, type, buffer}` triplet. The `type` is a stable
// string tag that is unique per file-format generation, and the `buffer` is
// the kind-specific byte encoding. Concrete kinds register a decode function
// under their tag at process start; the registry is what lets an open set of
// kinds round-trip through one polymorphic interface without the core ever
// naming them.
//
// Entries come in two shapes with the same read contract:
//
//   - materialized: a concrete in-memory kind (senfile/kinds or user code)
//   - reference: a Ref wrapping tag + serialized bytes read off the wire,
//     promotable to a materialized entry through the registry
//
// The Store collects shared entries by id and is serialized as a container's
// catalog on close. Entries are never mutated after insertion, so sharing an
// entry between the Store and a stream needs no locking.
package meta
