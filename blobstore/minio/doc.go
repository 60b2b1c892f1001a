// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage systems like Ceph,
// SeaweedFS and Garage, and needs no AWS SDK.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "learner/backups/")
//	_, err = blobstore.Backup(ctx, store, blobstore.BackupName("", time.Now()), db)
//
// Uploads stream through an io.Pipe with unknown length, so backups of any
// size are written without buffering them in memory.
package minio
