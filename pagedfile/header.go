package pagedfile

import (
	"encoding/binary"
	"fmt"
)

const (
	// Magic identifies a paged file ('Pfil').
	Magic uint32 = 'P'<<24 | 'f'<<16 | 'i'<<8 | 'l'

	// Version is the on-disk format version.
	Version uint32 = 1

	// DefaultPageSize is used when no page size is configured.
	DefaultPageSize = 1024

	// HeaderSize is the packed header length in bytes.
	HeaderSize = 128

	// NumAttributes is the number of generic attribute slots in the header.
	NumAttributes = 12
)

// header layout, little endian, packed:
//
//	0   magic       u32
//	4   version     u32
//	8   page_size   u32
//	12  free_pages  u32
//	16  sectors     u64
//	24  pages       u64
//	32  attributes  12 x u64
type header struct {
	magic      uint32
	version    uint32
	pageSize   uint32
	freePages  uint32
	sectors    uint64
	pages      uint64
	attributes [NumAttributes]uint64
}

func newHeader(pageSize uint32) header {
	return header{
		magic:    Magic,
		version:  Version,
		pageSize: pageSize,
	}
}

func (h *header) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.version)
	binary.LittleEndian.PutUint32(buf[8:12], h.pageSize)
	binary.LittleEndian.PutUint32(buf[12:16], h.freePages)
	binary.LittleEndian.PutUint64(buf[16:24], h.sectors)
	binary.LittleEndian.PutUint64(buf[24:32], h.pages)

	for i, a := range h.attributes {
		binary.LittleEndian.PutUint64(buf[32+8*i:], a)
	}

	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) < HeaderSize {
		return header{}, ErrTruncatedFile
	}

	h := header{
		magic:     binary.LittleEndian.Uint32(buf[0:4]),
		version:   binary.LittleEndian.Uint32(buf[4:8]),
		pageSize:  binary.LittleEndian.Uint32(buf[8:12]),
		freePages: binary.LittleEndian.Uint32(buf[12:16]),
		sectors:   binary.LittleEndian.Uint64(buf[16:24]),
		pages:     binary.LittleEndian.Uint64(buf[24:32]),
	}

	for i := range h.attributes {
		h.attributes[i] = binary.LittleEndian.Uint64(buf[32+8*i:])
	}

	if h.magic != Magic {
		return header{}, fmt.Errorf("%w: magic %#x", ErrWrongFormat, h.magic)
	}

	if h.version != Version {
		return header{}, fmt.Errorf("%w: version %d", ErrWrongFormat, h.version)
	}

	if err := validatePageSize(int(h.pageSize)); err != nil {
		return header{}, fmt.Errorf("%w: %w", ErrWrongFormat, err)
	}

	return h, nil
}

// validatePageSize requires whole 64-bit bitmap words per sector page.
func validatePageSize(size int) error {
	if size <= 0 || size%8 != 0 {
		return fmt.Errorf("%w: page size %d", ErrLengthInvalid, size)
	}

	return nil
}
