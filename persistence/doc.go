// Package persistence implements the on-disk shape of a senfile container:
//
//	header -> sections -> trailing index
//
// Every section is length-prefixed and starts with a 4-byte magic, so a
// reader can walk a file front to back even when the trailing index was never
// written. Two section kinds exist: chunk sections (encoded readings, see
// package chunk) and the metadata catalog. The trailing index records section
// offsets plus per-chunk stream/time coverage and is written exactly once, on
// close; its absence marks a file that was cut short, not an unreadable one.
//
// The package deals in raw bytes and catalog records. It never interprets
// metadata buffers; that is the job of package meta and the registered kinds.
package persistence
