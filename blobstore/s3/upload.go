package s3

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/learner/internal/hash"
)

var errUploadFinished = errors.New("s3: upload finished")

// UploadConfig tunes the multipart uploads that carry backups.
type UploadConfig struct {
	// PartSize is the size of each part. Snapshots are streamed, so one
	// part is the most a backup buffers.
	PartSize int64

	// Concurrency is the number of parts in flight.
	Concurrency int

	// EnableChecksum sends CRC32C checksums with every part and Put.
	EnableChecksum bool

	// LeavePartsOnError keeps the parts of a failed upload for inspection.
	LeavePartsOnError bool
}

// DefaultUploadConfig uses 8 MiB parts, five at a time, with checksums.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:       8 << 20,
		Concurrency:    5,
		EnableChecksum: true,
	}
}

func newUploader(client manager.UploadAPIClient, cfg UploadConfig) *manager.Uploader {
	return manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = max(cfg.PartSize, manager.MinUploadPartSize)
		u.Concurrency = max(cfg.Concurrency, 1)
		u.LeavePartsOnError = cfg.LeavePartsOnError
	})
}

// crc32c returns the checksum of data in the base64 big endian form S3
// expects.
func crc32c(data []byte) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], hash.CRC32C(data))

	return base64.StdEncoding.EncodeToString(b[:])
}

// upload streams writes into a multipart upload through a pipe. The object
// appears on a successful Close. Abort, or a failed Close, leaves nothing
// behind unless LeavePartsOnError is set.
type upload struct {
	pw     *io.PipeWriter
	cancel context.CancelFunc
	done   chan error

	mu       sync.Mutex
	finished bool
	err      error
}

func startUpload(ctx context.Context, uploader *manager.Uploader, bucket, key string, checksum bool) *upload {
	pr, pw := io.Pipe()
	ctx, cancel := context.WithCancel(ctx)

	u := &upload{pw: pw, cancel: cancel, done: make(chan error, 1)}

	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   pr,
	}

	if checksum {
		in.ChecksumAlgorithm = types.ChecksumAlgorithmCrc32c
	}

	go func() {
		_, err := uploader.Upload(ctx, in)
		if err != nil {
			err = fmt.Errorf("s3: upload %q: %w", key, err)
		}

		_ = pr.CloseWithError(err)
		u.done <- err
	}()

	return u
}

// Write blocks until the uploader consumes p.
func (u *upload) Write(p []byte) (int, error) {
	u.mu.Lock()
	finished := u.finished
	u.mu.Unlock()

	if finished {
		return 0, errUploadFinished
	}

	return u.pw.Write(p)
}

// Close completes the upload. Repeated calls return the first result.
func (u *upload) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.finished {
		return u.err
	}

	u.finished = true
	defer u.cancel()

	if u.err = u.pw.Close(); u.err != nil {
		return u.err
	}

	u.err = <-u.done

	return u.err
}

// Abort cancels the upload.
func (u *upload) Abort() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.finished {
		return nil
	}

	u.finished = true
	u.err = context.Canceled

	u.cancel()
	_ = u.pw.CloseWithError(context.Canceled)
	<-u.done

	return nil
}

// Sync is a no-op; parts are committed as they fill.
func (u *upload) Sync() error {
	return nil
}

func put(ctx context.Context, client Client, bucket, key string, data []byte, checksum bool) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if checksum {
		in.ChecksumCRC32C = aws.String(crc32c(data))
	}

	if _, err := client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3: put %q: %w", key, err)
	}

	return nil
}
