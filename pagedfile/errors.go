package pagedfile

import "errors"

var (
	// ErrUninitialised is returned by every operation on a closed file.
	ErrUninitialised = errors.New("pagedfile: file not open")

	// ErrIndexOutOfRange is returned when a span exceeds the logical length
	// or an attribute slot does not exist.
	ErrIndexOutOfRange = errors.New("pagedfile: index out of range")

	// ErrLengthInvalid is returned for unusable page sizes and for
	// allocations larger than one sector.
	ErrLengthInvalid = errors.New("pagedfile: invalid length")

	// ErrMissingPath is returned when Open is called without a path.
	ErrMissingPath = errors.New("pagedfile: missing path")

	// ErrMissingData is returned for empty writes.
	ErrMissingData = errors.New("pagedfile: missing data")

	// ErrTruncatedFile is returned when an existing file is shorter than its
	// header or its sector bitmaps.
	ErrTruncatedFile = errors.New("pagedfile: truncated file")

	// ErrWrongFormat is returned on a magic or version mismatch.
	ErrWrongFormat = errors.New("pagedfile: wrong format")

	// ErrIO is returned for failed or short reads, writes and syncs.
	ErrIO = errors.New("pagedfile: i/o error")

	// ErrLockFailed is returned when the exclusive file lock cannot be taken.
	ErrLockFailed = errors.New("pagedfile: lock failed")

	// ErrInvalidRegion is returned when a write or free touches a sector
	// bitmap page.
	ErrInvalidRegion = errors.New("pagedfile: invalid region")
)
