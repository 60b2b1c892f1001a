package protocol

import "math"

// Data segment encodings of scalar values. Indices travel as 8 byte
// integers and cell values as 4 byte IEEE 754 floats, both in ByteOrder.
const (
	IndexSize = 8
	FloatSize = 4
)

// EncodeIndex encodes a matrix, row or column index as a data segment.
func EncodeIndex(i int64) []byte {
	b := make([]byte, IndexSize)
	ByteOrder.PutUint64(b, uint64(i)) //nolint:gosec // two's complement

	return b
}

// DecodeIndex decodes an index data segment. ok is false when b has the
// wrong length.
func DecodeIndex(b []byte) (i int64, ok bool) {
	if len(b) != IndexSize {
		return 0, false
	}

	return int64(ByteOrder.Uint64(b)), true //nolint:gosec // two's complement
}

// EncodeFloat encodes a cell value as a data segment.
func EncodeFloat(v float32) []byte {
	b := make([]byte, FloatSize)
	ByteOrder.PutUint32(b, math.Float32bits(v))

	return b
}

// DecodeFloat decodes a cell value data segment. ok is false when b has the
// wrong length.
func DecodeFloat(b []byte) (v float32, ok bool) {
	if len(b) != FloatSize {
		return 0, false
	}

	return math.Float32frombits(ByteOrder.Uint32(b)), true
}
