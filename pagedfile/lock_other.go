//go:build !unix

package pagedfile

// Advisory locking is unavailable; the in-process lock still applies.
func lockFile(uintptr) error { return nil }

func unlockFile(uintptr) error { return nil }
