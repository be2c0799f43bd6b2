// Package senfile records heterogeneous, timestamped sensor data — range
// imaging scans, inertial samples, device descriptors — into a single
// append-only, chunked container file that can later be opened, indexed and
// selectively decoded without loading the whole file.
//
// # Writing
//
//	w, err := senfile.NewWriter("drive.snf", kinds.SensorInfo{SerialNumber: "992301"},
//		senfile.WithChunkSize(2<<20))
//	if err != nil { ... }
//
//	for reading := range readings {
//		if err := w.Save(0, reading); err != nil { ... }
//	}
//	if err := w.Close(); err != nil { ... }
//
// Readings accumulate per stream and are flushed as size-bounded chunks; each
// flushed chunk is self-contained and survives a crash even when the file was
// never closed. Close flushes the remainder, serializes the metadata catalog
// and writes the trailing index.
//
// # Reading
//
//	r, err := senfile.Open("drive.snf")
//	if err != nil { ... }
//	defer r.Close()
//
//	for _, i := range r.ChunksFor(streamID) {
//		msgs, err := r.Chunk(i)
//		...
//	}
//
// # Concurrency
//
// A Writer, its streams and its metadata store follow a single-writer,
// single-goroutine model: calls to Save and Close must be externally
// serialized. Package recorder provides that serialization — a bounded queue
// feeding one writer goroutine — for pipelines with concurrent producers. The
// metadata type registry is populated by init functions and read-only
// afterwards, so concurrent decodes need no locking discipline from callers.
package senfile
