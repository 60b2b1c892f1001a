package vector

import "errors"

var (
	// ErrMissingVector is returned when an operand is nil.
	ErrMissingVector = errors.New("vector: missing vector")

	// ErrIndexOutOfRange is returned for negative indices and, on lookups,
	// for indices outside the stored bounds.
	ErrIndexOutOfRange = errors.New("vector: index out of range")

	// ErrIndexNotFound is returned when an index lies within the bounds of
	// a sparse vector but holds no entry.
	ErrIndexNotFound = errors.New("vector: index not found")

	// ErrLengthMismatch is returned when two dense vectors differ in length.
	ErrLengthMismatch = errors.New("vector: vectors not of equal length")

	// ErrInvalidLength is returned for non-positive dense vector lengths.
	ErrInvalidLength = errors.New("vector: invalid length")

	// ErrCorrupt is returned when decoding a malformed sparse vector.
	ErrCorrupt = errors.New("vector: corrupt encoding")
)
