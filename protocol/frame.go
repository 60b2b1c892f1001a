package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
)

const (
	// Version is the protocol version written into every frame.
	Version = 1

	// TypeRequest tags request frames.
	TypeRequest = 1

	// TypeResponse tags response frames.
	TypeResponse = 2

	// DefaultMaxFrameSize bounds the variable segment of a frame.
	DefaultMaxFrameSize = 64 << 20

	// DefaultPort is the TCP port servers listen on unless configured.
	DefaultPort = 3579
)

// ByteOrder is the byte order of every integer on the wire.
var ByteOrder binary.ByteOrder = binary.LittleEndian

var (
	// ErrInvalidVersion is returned when a frame carries a foreign version.
	ErrInvalidVersion = errors.New("protocol: invalid message version")

	// ErrInvalidMessageType is returned when a frame has the wrong type tag.
	ErrInvalidMessageType = errors.New("protocol: invalid message type")

	// ErrFrameTooLarge is returned when the declared segments exceed the limit.
	ErrFrameTooLarge = errors.New("protocol: frame too large")

	// ErrNegativeLength is returned for negative segment lengths.
	ErrNegativeLength = errors.New("protocol: negative segment length")

	// ErrTruncatedFrame is returned when the stream ends inside a frame.
	ErrTruncatedFrame = errors.New("protocol: truncated frame")
)

// IsProtocolError reports whether err means the stream holds no
// recoverable frame boundary. The connection must be dropped.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrInvalidVersion) ||
		errors.Is(err, ErrInvalidMessageType) ||
		errors.Is(err, ErrFrameTooLarge) ||
		errors.Is(err, ErrNegativeLength) ||
		errors.Is(err, ErrTruncatedFrame)
}

// writeFrame writes header and segments with a single vectored write where
// the writer supports it.
func writeFrame(w io.Writer, header []byte, segments ...[]byte) error {
	bufs := make(net.Buffers, 0, 1+len(segments))
	bufs = append(bufs, header)

	for _, s := range segments {
		if len(s) > 0 {
			bufs = append(bufs, s)
		}
	}

	_, err := bufs.WriteTo(w)

	return err
}

// readHeader fills header. A stream that ends before the first byte
// returns io.EOF; one that ends inside the header is a truncated frame.
func readHeader(r io.Reader, header []byte, msgType byte) error {
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: header", ErrTruncatedFrame)
		}

		return err
	}

	if header[0] != Version {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, header[0])
	}

	if header[1] != msgType {
		return fmt.Errorf("%w: %d", ErrInvalidMessageType, header[1])
	}

	return nil
}

// readSegments reads the variable part of a frame in one read.
func readSegments(r io.Reader, maxFrame int64, lengths ...int64) ([]byte, error) {
	var total int64

	for _, l := range lengths {
		if l < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeLength, l)
		}

		total += l
		if total > maxFrame || total < 0 {
			return nil, fmt.Errorf("%w: more than %d bytes", ErrFrameTooLarge, maxFrame)
		}
	}

	if total == 0 {
		return nil, nil
	}

	buf := make([]byte, total)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: %w", ErrTruncatedFrame, err)
		}

		return nil, err
	}

	return buf, nil
}

func segment(buf []byte, from, n int64) []byte {
	if n == 0 {
		return nil
	}

	return buf[from : from+n : from+n]
}

func maxFrameOrDefault(maxFrame int64) int64 {
	if maxFrame <= 0 {
		return DefaultMaxFrameSize
	}

	return maxFrame
}
