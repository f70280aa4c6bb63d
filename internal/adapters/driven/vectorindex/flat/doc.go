// Package flat provides an exact, append-only vector index persisted as a
// single binary file.
//
// Index is the in-memory structure: brute-force Euclidean search over
// contiguous float32 storage. Save and Load move an Index to and from disk
// atomically. Durable wraps both behind driven.VectorIndex and treats the file
// as the source of truth: every operation reloads it first, and Append holds
// a mutex across reload, append and save.
//
// # File Format
//
//	[4B magic "FLAT"] [4B dim] [4B count]
//	[count × dim × 4B float32 vectors, little endian]
//	[4B CRC-32 (IEEE) of all preceding bytes]
//
// A file whose length, magic or checksum does not match is rejected with
// domain.ErrIndexCorrupt.
package flat
