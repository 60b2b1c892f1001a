package protocol

import (
	"fmt"
	"strings"
)

// Code is the status carried by a response. The numeric values are part of
// the wire format and never change.
//
// Code implements error, so a non-OK code can be returned and matched with
// errors.Is:
//
//	if errors.Is(err, protocol.CodeUnknownKey) { ... }
type Code int64

const (
	CodeOK Code = iota
	CodeInvalidLength
	CodeMissingVector
	CodeIndexOutOfRange
	CodeVectorsNotOfEqualLength
	CodeMissingValues
	CodeIndexNotFound
	CodeCommunicationError
	CodeUnknownOperation
	CodeNameMissing
	CodeDatabaseError
	CodeUnknownKey
	CodeFileNotFound
	CodeFileIOError
	CodeParseError
	CodeMissingMatrix
)

var codeNames = [...]string{
	"NO_ERROR",
	"INVALID_LENGTH",
	"MISSING_VECTOR",
	"INDEX_OUT_OF_RANGE",
	"VECTORS_NOT_OF_EQUAL_LENGTH",
	"MISSING_VALUES",
	"INDEX_NOT_FOUND",
	"COMMUNICATION_ERROR",
	"UNKNOWN_OPERATION",
	"NAME_MISSING",
	"DATABASE_ERROR",
	"UNKNOWN_KEY",
	"FILE_NOT_FOUND",
	"FILE_IO_ERROR",
	"PARSE_ERROR",
	"MISSING_MATRIX",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}

	return fmt.Sprintf("Code(%d)", int64(c))
}

func (c Code) Error() string {
	return "learner: " + strings.ToLower(strings.ReplaceAll(c.String(), "_", " "))
}

// Err returns nil for CodeOK and the code itself otherwise.
func (c Code) Err() error {
	if c == CodeOK {
		return nil
	}

	return c
}
