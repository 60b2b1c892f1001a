package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/pierrec/lz4/v4"
)

// BackupSuffix is appended to every backup blob name.
const BackupSuffix = ".db.lz4"

// Snapshotter streams a consistent copy of a database.
type Snapshotter interface {
	Snapshot(w io.Writer) (int64, error)
}

// BackupName returns the blob name of a backup taken at t. Names sort in
// time order.
func BackupName(prefix string, t time.Time) string {
	return prefix + t.UTC().Format("20060102T150405.000000000Z") + BackupSuffix
}

// Backup streams an lz4-compressed snapshot of src into the blob name. It
// returns the uncompressed size. A failed backup leaves no blob behind where
// the backend can abort.
func Backup(ctx context.Context, dst Store, name string, src Snapshotter) (int64, error) {
	w, err := dst.Create(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("blobstore: create %q: %w", name, err)
	}

	zw := lz4.NewWriter(w)

	n, err := src.Snapshot(zw)
	if err == nil {
		err = zw.Close()
	}

	if err != nil {
		if a, ok := w.(Aborter); ok {
			return n, errors.Join(fmt.Errorf("blobstore: backup %q: %w", name, err), a.Abort())
		}

		return n, errors.Join(fmt.Errorf("blobstore: backup %q: %w", name, err), w.Close())
	}

	if err := w.Close(); err != nil {
		return n, fmt.Errorf("blobstore: commit %q: %w", name, err)
	}

	return n, nil
}

// Restore decompresses the backup name into w.
func Restore(ctx context.Context, src Store, name string, w io.Writer) (int64, error) {
	b, err := src.Open(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("blobstore: open %q: %w", name, err)
	}
	defer b.Close()

	if b.Size() == 0 {
		return 0, fmt.Errorf("blobstore: restore %q: empty blob", name)
	}

	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return 0, fmt.Errorf("blobstore: read %q: %w", name, err)
	}
	defer r.Close()

	n, err := io.Copy(w, lz4.NewReader(r))
	if err != nil {
		return n, fmt.Errorf("blobstore: restore %q: %w", name, err)
	}

	return n, nil
}

// Backups returns the backup names under prefix, oldest first.
func Backups(ctx context.Context, s Store, prefix string) ([]string, error) {
	names, err := s.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	backups := names[:0]

	for _, n := range names {
		if len(n) > len(BackupSuffix) && n[len(n)-len(BackupSuffix):] == BackupSuffix {
			backups = append(backups, n)
		}
	}

	sort.Strings(backups)

	return backups, nil
}

// Prune deletes all but the newest keep backups under prefix.
func Prune(ctx context.Context, s Store, prefix string, keep int) error {
	backups, err := Backups(ctx, s, prefix)
	if err != nil {
		return err
	}

	if len(backups) <= keep {
		return nil
	}

	var errs []error

	for _, name := range backups[:len(backups)-keep] {
		if err := s.Delete(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("blobstore: delete %q: %w", name, err))
		}
	}

	return errors.Join(errs...)
}
