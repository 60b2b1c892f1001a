package pagedfile

import (
	"github.com/bits-and-blooms/bitset"
)

// A sector is one bitmap page followed by sectorLength data pages. Page
// indices count bitmap pages too, so page i is a bitmap page exactly when
// i%sectorStride == 0. Bit d of sector s covers page s*sectorStride+1+d;
// a set bit marks the page as in use.

func (f *File) isBitmapPage(page uint64) bool {
	return page%f.sectorStride == 0
}

// bitFor returns the sector and bit position tracking a data page.
func (f *File) bitFor(page uint64) (sector uint64, bit uint) {
	return page / f.sectorStride, uint(page%f.sectorStride - 1)
}

// sectorsFor returns the number of sectors needed to hold pages pages.
func (f *File) sectorsFor(pages uint64) uint64 {
	return (pages + f.sectorStride - 1) / f.sectorStride
}

// sectorOffset returns the file offset of a sector's bitmap page.
func (f *File) sectorOffset(sector uint64) int64 {
	return int64(HeaderSize + sector*f.sectorStride*uint64(f.hdr.pageSize)) //nolint:gosec // bounded by file size
}

// encodeSector serializes a bitmap so that byte d/8, bit d%8 holds page d.
func (f *File) encodeSector(b *bitset.BitSet) []byte {
	buf := make([]byte, f.hdr.pageSize)
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		buf[i/8] |= 1 << (i % 8)
	}

	return buf
}

func (f *File) decodeSector(buf []byte) *bitset.BitSet {
	b := bitset.New(uint(f.sectorLength))
	for i, v := range buf {
		if v == 0 {
			continue
		}

		for bit := uint(0); bit < 8; bit++ {
			if v&(1<<bit) != 0 {
				b.Set(uint(i)*8 + bit)
			}
		}
	}

	return b
}

func (f *File) syncSector(sector uint64) error {
	return f.writeAt(f.encodeSector(f.bitmaps[sector]), f.sectorOffset(sector))
}

// loadSectors reads every sector bitmap and rebuilds the free-page index.
func (f *File) loadSectors() error {
	f.bitmaps = make([]*bitset.BitSet, f.hdr.sectors)

	for s := range f.bitmaps {
		buf := make([]byte, f.hdr.pageSize)

		n, err := f.file.ReadAt(buf, f.sectorOffset(uint64(s)))
		if n < len(buf) {
			if err == nil {
				err = ErrIO
			}

			return joinErr(ErrTruncatedFile, err)
		}

		f.bitmaps[s] = f.decodeSector(buf)
	}

	f.free.Clear()

	for page := uint64(0); page < f.hdr.pages; page++ {
		if f.isBitmapPage(page) {
			continue
		}

		s, bit := f.bitFor(page)
		if !f.bitmaps[s].Test(bit) {
			f.free.Add(page)
		}
	}

	f.hdr.freePages = uint32(f.free.GetCardinality()) //nolint:gosec // bounded by pages

	return nil
}

// grow extends the logical file to pages pages. New bitmap pages are
// materialized and new data pages start out free. It returns the first
// sector that was added.
func (f *File) grow(pages uint64) (firstNew uint64) {
	firstNew = f.hdr.sectors

	if pages <= f.hdr.pages {
		return firstNew
	}

	for page := f.hdr.pages; page < pages; page++ {
		if !f.isBitmapPage(page) {
			f.free.Add(page)
		}
	}

	sectors := f.sectorsFor(pages)
	for s := f.hdr.sectors; s < sectors; s++ {
		f.bitmaps = append(f.bitmaps, bitset.New(uint(f.sectorLength)))
	}

	f.hdr.sectors = sectors
	f.hdr.pages = pages
	f.length = HeaderSize + pages*uint64(f.hdr.pageSize)

	return firstNew
}

// markUsed sets the bits of the data pages in [first, last] and records
// the touched sectors in dirty.
func (f *File) markUsed(first, last uint64, dirty map[uint64]struct{}) {
	for page := first; page <= last; page++ {
		s, bit := f.bitFor(page)
		if !f.bitmaps[s].Test(bit) {
			f.bitmaps[s].Set(bit)
			f.free.Remove(page)
			dirty[s] = struct{}{}
		}
	}

	f.hdr.freePages = uint32(f.free.GetCardinality()) //nolint:gosec // bounded by pages
}

// findFreeRun returns the first run of count free data pages. Runs never
// cross a bitmap page because bitmap pages are never in the free set.
func (f *File) findFreeRun(count uint64) (uint64, bool) {
	var start, length uint64

	it := f.free.Iterator()
	for it.HasNext() {
		page := it.Next()

		if length > 0 && page == start+length {
			length++
		} else {
			start, length = page, 1
		}

		if length == count {
			return start, true
		}
	}

	return 0, false
}

// appendIndex returns the first page past the end of the file at which
// count data pages fit without crossing a bitmap page.
func (f *File) appendIndex(count uint64) uint64 {
	page := f.hdr.pages
	if f.isBitmapPage(page) {
		page++
	}

	remaining := f.sectorStride - page%f.sectorStride
	if remaining < count {
		page += remaining + 1
	}

	return page
}

// Free marks count pages starting at index as free. Every touched sector
// bitmap page is written once and the header is persisted.
func (f *File) Free(index, count uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrUninitialised
	}

	if count == 0 {
		return nil
	}

	last := index + count - 1
	if last < index || last >= f.hdr.pages {
		return ErrIndexOutOfRange
	}

	for page := index; page <= last; page++ {
		if f.isBitmapPage(page) {
			return ErrInvalidRegion
		}
	}

	minSector, _ := f.bitFor(index)
	maxSector, _ := f.bitFor(last)

	for page := index; page <= last; page++ {
		s, bit := f.bitFor(page)
		if f.bitmaps[s].Test(bit) {
			f.bitmaps[s].Clear(bit)
			f.free.Add(page)
		}
	}

	f.cache.Drop(index, last)

	f.hdr.freePages = uint32(f.free.GetCardinality()) //nolint:gosec // bounded by pages

	for s := minSector; s <= maxSector; s++ {
		if err := f.syncSector(s); err != nil {
			return err
		}
	}

	return f.syncHeader()
}

// IsFree reports whether a data page is free.
func (f *File) IsFree(index uint64) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.file == nil {
		return false, ErrUninitialised
	}

	if index >= f.hdr.pages {
		return false, ErrIndexOutOfRange
	}

	if f.isBitmapPage(index) {
		return false, ErrInvalidRegion
	}

	return f.free.Contains(index), nil
}
