//go:build unix

package pagedfile

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func lockFile(fd uintptr) error {
	if err := unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB); err != nil { //nolint:gosec // descriptors fit in int
		return fmt.Errorf("%w: %w", ErrLockFailed, err)
	}

	return nil
}

func unlockFile(fd uintptr) error {
	if err := unix.Flock(int(fd), unix.LOCK_UN); err != nil { //nolint:gosec // descriptors fit in int
		return fmt.Errorf("%w: %w", ErrLockFailed, err)
	}

	return nil
}
