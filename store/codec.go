package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/learner/internal/hash"
)

// Stored values are framed as
//
//	codec(1) crc32c(4) raw_length(4) payload
//
// where the checksum covers the payload. The codec byte records what was
// actually applied: a value that does not shrink is kept uncompressed.
const frameHeaderSize = 1 + 4 + 4

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil //nolint:forcetypeassert // pool only holds encoders
	}

	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil //nolint:forcetypeassert // pool only holds decoders
	}

	return zstd.NewReader(nil)
}

func encodeValue(c Compression, value []byte) ([]byte, error) {
	payload := value
	used := CompressionNone

	switch c {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(value)))

		n, err := lz4.CompressBlock(value, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("store: lz4: %w", err)
		}

		if n > 0 && n < len(value) {
			payload, used = buf[:n], CompressionLZ4
		}
	case CompressionZSTD:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, fmt.Errorf("store: zstd: %w", err)
		}

		out := enc.EncodeAll(value, nil)
		zstdEncoderPool.Put(enc)

		if len(out) < len(value) {
			payload, used = out, CompressionZSTD
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	frame := make([]byte, frameHeaderSize+len(payload))
	frame[0] = byte(used)
	binary.LittleEndian.PutUint32(frame[1:], hash.CRC32C(payload))
	binary.LittleEndian.PutUint32(frame[5:], uint32(len(value))) //nolint:gosec // values are bounded by the frame limit
	copy(frame[frameHeaderSize:], payload)

	return frame, nil
}

// decodeValue never aliases frame, which may be owned by a transaction.
func decodeValue(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d byte frame", ErrCorrupt, len(frame))
	}

	payload := frame[frameHeaderSize:]
	if hash.CRC32C(payload) != binary.LittleEndian.Uint32(frame[1:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	rawLen := int(binary.LittleEndian.Uint32(frame[5:]))

	switch Compression(frame[0]) {
	case CompressionNone:
		if rawLen != len(payload) {
			return nil, fmt.Errorf("%w: length mismatch", ErrCorrupt)
		}

		return append([]byte(nil), payload...), nil
	case CompressionLZ4:
		out := make([]byte, rawLen)

		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}

		if n != rawLen {
			return nil, fmt.Errorf("%w: length mismatch", ErrCorrupt)
		}

		return out, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, fmt.Errorf("store: zstd: %w", err)
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}

		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: length mismatch", ErrCorrupt)
		}

		return out, nil
	default:
		return nil, fmt.Errorf("%w: codec %d", ErrCorrupt, frame[0])
	}
}
