// Package hash provides the two hashes learner depends on.
//
// Bernstein places key/value names on servers. Every client must compute
// the same value for the same name, so the function is fixed forever.
//
// CRC32C (Castagnoli) guards stored values against corruption. Go's
// hash/crc32 uses the SSE4.2 and ARM CRC instructions when they exist.
package hash
