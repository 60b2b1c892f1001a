package store

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrNotFound is returned when a key has no value.
	ErrNotFound = errors.New("store: key not found")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store: closed")

	// ErrCorrupt is returned when a stored value fails its checksum or
	// cannot be decompressed.
	ErrCorrupt = errors.New("store: corrupt value")

	// ErrUnknownCompression is returned for an unrecognised codec name or tag.
	ErrUnknownCompression = errors.New("store: unknown compression")
)

// Store is an ordered byte store. Implementations are safe for concurrent
// use. Errors describe themselves through Error().
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(key, value []byte) error

	// Delete removes key. A missing key is ErrNotFound.
	Delete(key []byte) error

	// Close releases the store.
	Close() error
}

// Snapshotter is implemented by stores that can stream a consistent copy of
// themselves.
type Snapshotter interface {
	Snapshot(w io.Writer) (int64, error)
}

// Compression selects the value codec.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZSTD
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd". The empty string is none.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}
