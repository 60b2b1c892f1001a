// Package pagedfile implements a page-structured file with free-page
// tracking.
//
// # Layout
//
// A paged file starts with a packed 128 byte header (magic 'Pfil',
// version, page size, free page count, sector and page counts, 12 generic
// attribute slots). Pages follow back to back. Pages are grouped into
// sectors: each sector starts with a bitmap page that tracks the
// 8*page_size data pages after it, one bit per page.
//
//	| header | bitmap 0 | data ... data | bitmap 1 | data ... |
//
// # Concurrency
//
// Reads share a file-wide read lock; writes, frees and Flush are
// exclusive. The file is also locked with flock so that a second process
// (or a second handle in the same process) cannot open it.
//
//	f, err := pagedfile.Open("rows.pf", func(o *pagedfile.Options) {
//		o.PageSize = 4096
//	})
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	index, err := f.WriteNew(row)
package pagedfile
