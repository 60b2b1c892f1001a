// Package store provides the ordered byte store a learner server keeps its
// data in.
//
// Bolt persists to a bbolt file with one committed transaction per write.
// Values are framed with a codec tag and a CRC32C checksum and may be
// compressed with lz4 or zstd. Cached adds a ristretto read cache in front
// of any Store, and Memory keeps everything in a map.
package store
