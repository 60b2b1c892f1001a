// Package s3 provides an Amazon S3 implementation of blobstore.Store.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "learner/backups/"
//	    o.Region = "us-east-1"
//	})
//
// # Features
//
//   - Range reads for partial fetches
//   - Streaming multipart uploads with CRC32C checksums
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
