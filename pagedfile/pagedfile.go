package pagedfile

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/learner/internal/cache"
	"github.com/hupe1980/learner/internal/fs"
)

// File is an open paged file. All methods are safe for concurrent use:
// reads share a file-wide read lock, every mutation and Flush take the
// write lock.
type File struct {
	mu   sync.RWMutex
	path string
	file fs.File // nil once closed

	hdr     header
	bitmaps []*bitset.BitSet
	free    *roaring64.Bitmap
	cache   *cache.Pages

	sectorLength uint64 // data pages per sector
	sectorStride uint64 // bitmap page + data pages
	length       uint64 // header + pages*page_size
}

// Open opens the paged file at path, creating it if it does not exist.
// An existing file must carry a valid header; a new file gets its header
// written and synced before Open returns.
func Open(path string, optFns ...func(o *Options)) (f *File, err error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if path == "" {
		return nil, ErrMissingPath
	}

	if opts.FileSystem == nil {
		opts.FileSystem = fs.Default
	}

	exists := true
	if _, err := opts.FileSystem.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrIO, err)
		}

		exists = false
	}

	if !exists {
		if err := validatePageSize(opts.PageSize); err != nil {
			return nil, err
		}
	}

	flag := os.O_RDWR
	if !exists {
		flag |= os.O_CREATE | os.O_TRUNC
	}

	file, err := opts.FileSystem.OpenFile(path, flag, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	// Release what was acquired, in reverse order, if any later step fails.
	locked := false
	defer func() {
		if err == nil {
			return
		}

		if locked {
			err = errors.Join(err, unlockFile(file.Fd()))
		}

		err = errors.Join(err, file.Close())
	}()

	if err = lockFile(file.Fd()); err != nil {
		return nil, err
	}
	locked = true

	f = &File{
		path: path,
		file: file,
		free: roaring64.New(),
	}

	if exists {
		buf := make([]byte, HeaderSize)

		n, rerr := file.ReadAt(buf, 0)
		if n < HeaderSize {
			if rerr == nil {
				rerr = ErrIO
			}

			return nil, joinErr(ErrTruncatedFile, rerr)
		}

		if f.hdr, err = decodeHeader(buf); err != nil {
			return nil, err
		}
	} else {
		f.hdr = newHeader(uint32(opts.PageSize)) //nolint:gosec // validated above
	}

	f.sectorLength = 8 * uint64(f.hdr.pageSize)
	f.sectorStride = 1 + f.sectorLength
	f.length = HeaderSize + f.hdr.pages*uint64(f.hdr.pageSize)

	if exists {
		if err = f.loadSectors(); err != nil {
			return nil, err
		}
	} else {
		if err = f.syncHeader(); err != nil {
			return nil, err
		}

		if err = f.sync(); err != nil {
			return nil, err
		}
	}

	if opts.CachePages > 0 {
		f.cache = cache.NewPages(int64(opts.CachePages)*int64(f.hdr.pageSize), opts.ResourceController)
	}

	return f, nil
}

// Path returns the path the file was opened with.
func (f *File) Path() string { return f.path }

// PageSize returns the page size in bytes.
func (f *File) PageSize() int { return int(f.hdr.pageSize) }

// Pages returns the number of pages, bitmap pages included.
func (f *File) Pages() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.hdr.pages
}

// Sectors returns the number of sectors.
func (f *File) Sectors() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.hdr.sectors
}

// FreePages returns the number of free data pages.
func (f *File) FreePages() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return uint64(f.hdr.freePages)
}

// Length returns the logical length in bytes: header plus all pages.
func (f *File) Length() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.length
}

// SetAttribute stores v in one of the generic header slots. The value is
// persisted by the next Flush or Close.
func (f *File) SetAttribute(slot int, v uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrUninitialised
	}

	if slot < 0 || slot >= NumAttributes {
		return ErrIndexOutOfRange
	}

	f.hdr.attributes[slot] = v

	return nil
}

// Attribute returns the value of a generic header slot.
func (f *File) Attribute(slot int) (uint64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.file == nil {
		return 0, ErrUninitialised
	}

	if slot < 0 || slot >= NumAttributes {
		return 0, ErrIndexOutOfRange
	}

	return f.hdr.attributes[slot], nil
}

// Flush writes the header and syncs the file.
func (f *File) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrUninitialised
	}

	if err := f.syncHeader(); err != nil {
		return err
	}

	return f.sync()
}

// Close flushes the file, releases the file lock and closes it. Any later
// call returns ErrUninitialised.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrUninitialised
	}

	err := f.syncHeader()
	if err == nil {
		err = f.sync()
	}

	err = errors.Join(err, unlockFile(f.file.Fd()))

	if cerr := f.file.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrIO, cerr))
	}

	f.file = nil
	f.bitmaps = nil

	f.cache.Purge()

	return err
}

func (f *File) syncHeader() error {
	return f.writeAt(f.hdr.encode(), 0)
}

func (f *File) sync() error {
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

func (f *File) writeAt(buf []byte, off int64) error {
	n, err := f.file.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	if n != len(buf) {
		return fmt.Errorf("%w: short write %d of %d bytes", ErrIO, n, len(buf))
	}

	return nil
}

func joinErr(kind, cause error) error {
	if errors.Is(cause, kind) {
		return cause
	}

	return fmt.Errorf("%w: %w", kind, cause)
}
