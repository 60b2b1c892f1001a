package routing

import (
	"errors"

	"github.com/hupe1980/learner/protocol"
)

var (
	// ErrIndexOutOfRange is returned for a negative matrix, row or column.
	ErrIndexOutOfRange = errors.New("routing: index out of range")

	// ErrNameMissing is returned for a key/value request without a name.
	ErrNameMissing = errors.New("routing: name missing")

	// ErrUnknownOperation is returned when a request addresses nothing routable.
	ErrUnknownOperation = errors.New("routing: unknown operation")

	// ErrEmptyPool is returned by ServerFor before any server was added.
	ErrEmptyPool = errors.New("routing: no servers in pool")

	// ErrInvalidWeight is returned by Add for a non-positive weight.
	ErrInvalidWeight = errors.New("routing: weight must be positive")
)

// Code maps a routing error to its response code.
func Code(err error) protocol.Code {
	switch {
	case err == nil:
		return protocol.CodeOK
	case errors.Is(err, ErrIndexOutOfRange):
		return protocol.CodeIndexOutOfRange
	case errors.Is(err, ErrNameMissing):
		return protocol.CodeNameMissing
	case errors.Is(err, ErrUnknownOperation):
		return protocol.CodeUnknownOperation
	default:
		return protocol.CodeCommunicationError
	}
}
