package protocol

import (
	"fmt"
	"io"
)

// ResponseHeaderSize is the fixed response header length:
// version(1) type(1) code(8) data_length(8).
const ResponseHeaderSize = 2 + 8 + 8

// Response answers exactly one request.
type Response struct {
	Code Code
	Data []byte
}

func (r *Response) String() string {
	return fmt.Sprintf("%s data=%dB", r.Code, len(r.Data))
}

// MarshalHeader encodes the fixed header of r.
func (r *Response) MarshalHeader() []byte {
	buf := make([]byte, ResponseHeaderSize)
	buf[0] = Version
	buf[1] = TypeResponse
	ByteOrder.PutUint64(buf[2:], uint64(r.Code))         //nolint:gosec // two's complement on the wire
	ByteOrder.PutUint64(buf[10:], uint64(len(r.Data))) //nolint:gosec // lengths are non-negative

	return buf
}

// WriteResponse writes r as one frame.
func WriteResponse(w io.Writer, r *Response) error {
	return writeFrame(w, r.MarshalHeader(), r.Data)
}

// ReadResponse reads one response frame. See ReadRequest for maxFrame.
func ReadResponse(r io.Reader, maxFrame int64) (*Response, error) {
	var header [ResponseHeaderSize]byte
	if err := readHeader(r, header[:], TypeResponse); err != nil {
		return nil, err
	}

	res := &Response{
		Code: Code(ByteOrder.Uint64(header[2:])), //nolint:gosec // two's complement on the wire
	}

	dataLen := int64(ByteOrder.Uint64(header[10:])) //nolint:gosec // checked by readSegments

	buf, err := readSegments(r, maxFrameOrDefault(maxFrame), dataLen)
	if err != nil {
		return nil, err
	}

	res.Data = segment(buf, 0, dataLen)

	return res, nil
}
