// Package blobstore stores immutable blobs, used by learner for database
// backups.
//
// Store is the interface for reading and writing blobs. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a local directory, with atomic rename on commit
//   - MemoryStore: in memory, for tests
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 with multipart uploads
//
// # Backups
//
// Backup streams an lz4-compressed snapshot of a database into a blob named
// by BackupName; Restore reverses it and Prune keeps the newest N:
//
//	name := blobstore.BackupName("backups/", time.Now())
//	_, err := blobstore.Backup(ctx, target, name, db)
package blobstore
