package server

import (
	"errors"

	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/routing"
	"github.com/hupe1980/learner/store"
	"github.com/hupe1980/learner/vector"
)

// codeFor maps a handler error to the response code sent to the client.
func codeFor(err error) protocol.Code {
	if err == nil {
		return protocol.CodeOK
	}

	var code protocol.Code
	if errors.As(err, &code) {
		return code
	}

	switch {
	case errors.Is(err, routing.ErrIndexOutOfRange), errors.Is(err, vector.ErrIndexOutOfRange):
		return protocol.CodeIndexOutOfRange
	case errors.Is(err, routing.ErrNameMissing):
		return protocol.CodeNameMissing
	case errors.Is(err, routing.ErrUnknownOperation):
		return protocol.CodeUnknownOperation
	case errors.Is(err, vector.ErrIndexNotFound):
		return protocol.CodeIndexNotFound
	case errors.Is(err, vector.ErrMissingVector):
		return protocol.CodeMissingVector
	case errors.Is(err, vector.ErrLengthMismatch):
		return protocol.CodeVectorsNotOfEqualLength
	case errors.Is(err, vector.ErrInvalidLength):
		return protocol.CodeInvalidLength
	case errors.Is(err, vector.ErrCorrupt), errors.Is(err, protocol.ErrInvalidReference):
		return protocol.CodeParseError
	case errors.Is(err, store.ErrNotFound):
		return protocol.CodeUnknownKey
	default:
		return protocol.CodeDatabaseError
	}
}
