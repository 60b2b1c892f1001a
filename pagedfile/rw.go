package pagedfile

import (
	"fmt"
	"slices"
)

// Read reads length bytes starting at page index. A zero length reads one page.
func (f *File) Read(index, length uint64) ([]byte, error) {
	return f.ReadOffset(index, 0, length)
}

// ReadOffset reads length bytes starting offset bytes into page index.
// A zero length reads one page. Spans past the logical length fail with
// ErrIndexOutOfRange.
func (f *File) ReadOffset(index, offset, length uint64) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.file == nil {
		return nil, ErrUninitialised
	}

	pageSize := uint64(f.hdr.pageSize)
	if length == 0 {
		length = pageSize
	}

	start, ok := f.span(index, offset, length)
	if !ok {
		return nil, ErrIndexOutOfRange
	}

	fullPage := offset == 0 && length == pageSize
	if fullPage {
		if b, ok := f.cache.Get(index); ok {
			return b, nil
		}
	}

	buf := make([]byte, length)

	n, err := f.file.ReadAt(buf, int64(start)) //nolint:gosec // bounded by length
	if n != len(buf) {
		if err == nil {
			err = fmt.Errorf("short read %d of %d bytes", n, len(buf))
		}

		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	if fullPage {
		f.cache.Put(index, buf)
	}

	return buf, nil
}

// span returns the absolute file offset of (index, offset) and whether
// length bytes from there stay within the logical length.
func (f *File) span(index, offset, length uint64) (uint64, bool) {
	pageSize := uint64(f.hdr.pageSize)
	if index > (f.length-HeaderSize)/pageSize {
		return 0, false
	}

	start := HeaderSize + index*pageSize + offset
	if start < offset || start+length < start || start+length > f.length {
		return 0, false
	}

	return start, true
}

// Write writes data starting at page index.
func (f *File) Write(index uint64, data []byte) error {
	return f.WriteOffset(index, 0, data)
}

// WriteOffset writes data starting offset bytes into page index. The pages
// touched are marked in use. A write that extends the file is padded with
// zeros to whole pages. Touching a bitmap page fails with ErrInvalidRegion.
func (f *File) WriteOffset(index, offset uint64, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrUninitialised
	}

	return f.writeLocked(index, offset, data)
}

// WriteNew stores data in ceil(len(data)/page_size) contiguous data pages,
// reusing freed pages before growing the file, and returns the first
// page index. The run never spans more than one sector.
func (f *File) WriteNew(data []byte) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return 0, ErrUninitialised
	}

	if len(data) == 0 {
		return 0, ErrMissingData
	}

	pageSize := uint64(f.hdr.pageSize)
	count := (uint64(len(data)) + pageSize - 1) / pageSize

	if count > f.sectorLength {
		return 0, fmt.Errorf("%w: %d pages exceed a sector", ErrLengthInvalid, count)
	}

	index, ok := f.findFreeRun(count)
	if !ok {
		index = f.appendIndex(count)
	}

	// Reused pages keep stale bytes past the data; pad every run to whole pages.
	buf := data
	if rem := uint64(len(data)) % pageSize; rem != 0 {
		buf = make([]byte, count*pageSize)
		copy(buf, data)
	}

	if err := f.writeLocked(index, 0, buf); err != nil {
		return 0, err
	}

	return index, nil
}

func (f *File) writeLocked(index, offset uint64, data []byte) error {
	if len(data) == 0 {
		return ErrMissingData
	}

	pageSize := uint64(f.hdr.pageSize)
	first := index + offset/pageSize
	inPage := offset % pageSize
	last := first + (inPage+uint64(len(data))-1)/pageSize

	if last < first {
		return ErrIndexOutOfRange
	}

	for page := first; page <= last; page++ {
		if f.isBitmapPage(page) {
			return ErrInvalidRegion
		}
	}

	start := HeaderSize + first*pageSize + inPage
	buf := data

	if end := start + uint64(len(data)); end > f.length {
		// Keep every on-disk page fully defined: zero the head of a new
		// first page and the tail of the last page.
		head := uint64(0)
		if first >= f.hdr.pages {
			head = inPage
		}

		tail := (pageSize - (inPage+uint64(len(data)))%pageSize) % pageSize

		if head > 0 || tail > 0 {
			buf = make([]byte, head+uint64(len(data))+tail)
			copy(buf[head:], data)
			start -= head
		}
	}

	if err := f.writeAt(buf, int64(start)); err != nil { //nolint:gosec // bounded by file size
		return err
	}

	dirty := make(map[uint64]struct{})
	growHeader := false

	if last >= f.hdr.pages {
		firstNew := f.grow(last + 1)
		for s := firstNew; s < f.hdr.sectors; s++ {
			dirty[s] = struct{}{}
		}

		growHeader = true
	}

	freeBefore := f.hdr.freePages
	f.markUsed(first, last, dirty)

	f.cache.Drop(first, last)

	sectors := make([]uint64, 0, len(dirty))
	for s := range dirty {
		sectors = append(sectors, s)
	}

	slices.Sort(sectors)

	for _, s := range sectors {
		if err := f.syncSector(s); err != nil {
			return err
		}
	}

	if growHeader || freeBefore != f.hdr.freePages {
		return f.syncHeader()
	}

	return nil
}
