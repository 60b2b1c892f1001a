package server

import (
	"context"
	"time"

	"github.com/hupe1980/learner/blobstore"
	"github.com/hupe1980/learner/store"
)

// snapshotterOf finds a snapshot-capable store behind any wrappers.
func snapshotterOf(st store.Store) (blobstore.Snapshotter, bool) {
	for {
		if snap, ok := st.(blobstore.Snapshotter); ok {
			return snap, true
		}

		u, ok := st.(interface{ Unwrap() store.Store })
		if !ok {
			return nil, false
		}

		st = u.Unwrap()
	}
}

func (s *Server) backupLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Backup.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Failures are logged; the next tick retries.
			_, _ = s.Backup(ctx)
		}
	}
}

// Backup writes one snapshot of the backing store to the configured
// target and prunes old snapshots. It returns the blob name.
func (s *Server) Backup(ctx context.Context) (string, error) {
	b := s.opts.Backup
	if b.Target == nil {
		return "", ErrSnapshotUnsupported
	}

	snap, ok := snapshotterOf(s.store)
	if !ok {
		return "", ErrSnapshotUnsupported
	}

	name := blobstore.BackupName(b.Prefix, time.Now())

	n, err := blobstore.Backup(ctx, b.Target, name, snap)
	s.log.LogBackup(ctx, name, n, err)

	if err != nil {
		return "", err
	}

	if b.Keep > 0 {
		if err := blobstore.Prune(ctx, b.Target, b.Prefix, b.Keep); err != nil {
			s.log.WarnContext(ctx, "backup prune failed", "prefix", b.Prefix, "error", err)
		}
	}

	return name, nil
}
