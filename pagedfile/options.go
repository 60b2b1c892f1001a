package pagedfile

import (
	"github.com/hupe1980/learner/internal/fs"
	"github.com/hupe1980/learner/internal/resource"
)

// Options configures Open.
type Options struct {
	// PageSize applies to newly created files only; existing files keep the
	// page size recorded in their header. Must be a positive multiple of 8.
	PageSize int

	// CachePages is the number of full pages kept in the read cache.
	// 0 disables the cache.
	CachePages int

	// ResourceController accounts cached page memory. Optional.
	ResourceController *resource.Controller

	// FileSystem is the file system used to open the file.
	FileSystem fs.FileSystem
}

// DefaultOptions are the options applied before any option functions.
var DefaultOptions = Options{
	PageSize:   DefaultPageSize,
	CachePages: 0,
	FileSystem: fs.Default,
}
