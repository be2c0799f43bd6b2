// Package kinds provides the metadata kinds built into senfile: sensor
// descriptors, stream schemas, sensor poses and the streaming summary the
// writer appends on close.
//
// Each kind registers its decode function with package meta from an init
// function, which is the whole wiring a new kind needs — the core never
// learns kind names. Applications can define their own kinds the same way and
// store them next to the built-in ones.
package kinds
