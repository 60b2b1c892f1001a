// Package fs provides the file abstraction behind the paged file store.
//
//   - [File]: an open file addressed by absolute offsets
//   - [FileSystem]: open, stat and remove
//
// [LocalFS] is the production implementation. [FaultyFS] injects write,
// short-read, sync and close failures in tests:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("data.pf", fs.Fault{FailAfterBytes: 128})
//
// Operations take no context.Context: positioned reads and writes on a
// local file are not interruptible at the syscall level.
package fs
