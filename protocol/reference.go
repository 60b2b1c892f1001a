package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// RefKind tags the variants of Reference.
type RefKind uint8

const (
	RefMatrix RefKind = iota + 1
	RefRow
	RefColumn
	RefCell
	RefName
)

func (k RefKind) String() string {
	switch k {
	case RefMatrix:
		return "matrix"
	case RefRow:
		return "row"
	case RefColumn:
		return "column"
	case RefCell:
		return "cell"
	case RefName:
		return "name"
	default:
		return fmt.Sprintf("RefKind(%d)", uint8(k))
	}
}

// ErrInvalidReference is returned when decoding a malformed reference.
var ErrInvalidReference = errors.New("protocol: invalid reference")

// Reference identifies the logical target of a request. The concrete
// variants are MatrixRef, RowRef, ColumnRef, CellRef and NameRef.
//
// The binary form is a one byte kind tag followed by the variant's fields
// in ByteOrder; it is stable and usable as a storage key.
type Reference interface {
	Kind() RefKind
	MatrixIndex() int64
	MarshalBinary() ([]byte, error)
	isReference()
}

// MatrixRef addresses matrix-scoped data: matrix metadata and the name
// tables of its rows and columns.
type MatrixRef struct {
	Matrix int64
}

// RowRef addresses one row of a matrix.
type RowRef struct {
	Matrix int64
	Row    int64
}

// ColumnRef addresses one column of a matrix.
type ColumnRef struct {
	Matrix int64
	Column int64
}

// CellRef addresses one cell of a matrix.
type CellRef struct {
	Matrix int64
	Row    int64
	Column int64
}

// NameRef addresses a named object: a key/value entry, or the name side
// of a name table within Matrix.
type NameRef struct {
	Matrix int64
	Name   []byte
}

func (MatrixRef) Kind() RefKind { return RefMatrix }
func (RowRef) Kind() RefKind    { return RefRow }
func (ColumnRef) Kind() RefKind { return RefColumn }
func (CellRef) Kind() RefKind   { return RefCell }
func (NameRef) Kind() RefKind   { return RefName }

func (r MatrixRef) MatrixIndex() int64 { return r.Matrix }
func (r RowRef) MatrixIndex() int64    { return r.Matrix }
func (r ColumnRef) MatrixIndex() int64 { return r.Matrix }
func (r CellRef) MatrixIndex() int64   { return r.Matrix }
func (r NameRef) MatrixIndex() int64   { return r.Matrix }

func (MatrixRef) isReference() {}
func (RowRef) isReference()    {}
func (ColumnRef) isReference() {}
func (CellRef) isReference()   {}
func (NameRef) isReference()   {}

func (r MatrixRef) MarshalBinary() ([]byte, error) { return marshalFixed(RefMatrix, r) }
func (r RowRef) MarshalBinary() ([]byte, error)    { return marshalFixed(RefRow, r) }
func (r ColumnRef) MarshalBinary() ([]byte, error) { return marshalFixed(RefColumn, r) }
func (r CellRef) MarshalBinary() ([]byte, error)   { return marshalFixed(RefCell, r) }

func (r NameRef) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 1+8+8, 1+8+8+len(r.Name))
	buf[0] = byte(RefName)
	ByteOrder.PutUint64(buf[1:], uint64(r.Matrix))     //nolint:gosec // two's complement
	ByteOrder.PutUint64(buf[9:], uint64(len(r.Name))) //nolint:gosec // lengths are non-negative

	return append(buf, r.Name...), nil
}

// ParseReference decodes the binary form of any Reference variant.
func ParseReference(b []byte) (Reference, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidReference)
	}

	kind, body := RefKind(b[0]), b[1:]

	switch kind {
	case RefMatrix:
		return parseFixed[MatrixRef](body)
	case RefRow:
		return parseFixed[RowRef](body)
	case RefColumn:
		return parseFixed[ColumnRef](body)
	case RefCell:
		return parseFixed[CellRef](body)
	case RefName:
		if len(body) < 16 {
			return nil, fmt.Errorf("%w: short name reference", ErrInvalidReference)
		}

		n := ByteOrder.Uint64(body[8:])
		if uint64(len(body)-16) != n {
			return nil, fmt.Errorf("%w: name length %d", ErrInvalidReference, n)
		}

		return NameRef{
			Matrix: int64(ByteOrder.Uint64(body)), //nolint:gosec // two's complement
			Name:   append([]byte(nil), body[16:]...),
		}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrInvalidReference, b[0])
	}
}

// marshalFixed encodes the tag followed by the fixed-size fields of v.
func marshalFixed(kind RefKind, v any) ([]byte, error) {
	buf := make([]byte, 1, 1+binary.Size(v))
	buf[0] = byte(kind)

	return binary.Append(buf, ByteOrder, v)
}

func parseFixed[T Reference](body []byte) (Reference, error) {
	var r T
	if err := unmarshalFixed(body, &r); err != nil {
		return nil, err
	}

	return r, nil
}

func unmarshalFixed(body []byte, v any) error {
	if len(body) != binary.Size(v) {
		return fmt.Errorf("%w: %d bytes", ErrInvalidReference, len(body))
	}

	if _, err := binary.Decode(body, ByteOrder, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	}

	return nil
}
