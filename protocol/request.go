package protocol

import (
	"fmt"
	"io"
)

// RequestHeaderSize is the fixed request header length:
// version(1) type(1) operation item attribute matrix row column
// name_length data_length (8 each).
const RequestHeaderSize = 2 + 8*8

// Request is one client request. Name and Data are the variable segments.
type Request struct {
	Operation Operation
	Item      Item
	Attribute Attribute
	Matrix    int64
	Row       int64
	Column    int64
	Name      []byte
	Data      []byte
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s %s matrix=%d row=%d column=%d name=%dB data=%dB",
		r.Operation, r.Item, r.Attribute, r.Matrix, r.Row, r.Column, len(r.Name), len(r.Data))
}

// MarshalHeader encodes the fixed header of r.
func (r *Request) MarshalHeader() []byte {
	buf := make([]byte, RequestHeaderSize)
	buf[0] = Version
	buf[1] = TypeRequest

	fields := [...]int64{
		int64(r.Operation),
		int64(r.Item),
		int64(r.Attribute),
		r.Matrix,
		r.Row,
		r.Column,
		int64(len(r.Name)),
		int64(len(r.Data)),
	}

	for i, v := range fields {
		ByteOrder.PutUint64(buf[2+8*i:], uint64(v)) //nolint:gosec // two's complement on the wire
	}

	return buf
}

// WriteRequest writes r as one frame.
func WriteRequest(w io.Writer, r *Request) error {
	return writeFrame(w, r.MarshalHeader(), r.Name, r.Data)
}

// ReadRequest reads one request frame. Name and data together may not
// exceed maxFrame bytes; a non-positive maxFrame applies
// DefaultMaxFrameSize. Errors for which IsProtocolError is true leave the
// stream without a usable frame boundary.
func ReadRequest(r io.Reader, maxFrame int64) (*Request, error) {
	var header [RequestHeaderSize]byte
	if err := readHeader(r, header[:], TypeRequest); err != nil {
		return nil, err
	}

	field := func(i int) int64 {
		return int64(ByteOrder.Uint64(header[2+8*i:])) //nolint:gosec // two's complement on the wire
	}

	req := &Request{
		Operation: Operation(field(0)),
		Item:      Item(field(1)),
		Attribute: Attribute(field(2)),
		Matrix:    field(3),
		Row:       field(4),
		Column:    field(5),
	}

	nameLen, dataLen := field(6), field(7)

	buf, err := readSegments(r, maxFrameOrDefault(maxFrame), nameLen, dataLen)
	if err != nil {
		return nil, err
	}

	req.Name = segment(buf, 0, nameLen)
	req.Data = segment(buf, nameLen, dataLen)

	return req, nil
}
