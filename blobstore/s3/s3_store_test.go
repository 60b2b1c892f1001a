package s3

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learner/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()

	// Create a unique prefix for this test run
	prefix := fmt.Sprintf("test-learner-%d/", time.Now().UnixNano())

	store, err := New(ctx, bucket, func(o *Options) {
		o.Prefix = prefix
		o.Endpoint = os.Getenv("S3_ENDPOINT")
		o.UsePathStyle = o.Endpoint != ""
	})
	require.NoError(t, err)

	t.Run("Create and Read", func(t *testing.T) {
		name := "test.blob"
		data := make([]byte, 1024*1024) // 1MB
		_, _ = rand.Read(data)

		w, err := store.Create(ctx, name)
		require.NoError(t, err)
		n, err := w.Write(data)
		require.NoError(t, err)
		assert.Equal(t, len(data), n)
		require.NoError(t, w.Close())

		blobs, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Contains(t, blobs, name)

		r, err := store.Open(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), r.Size())

		buf := make([]byte, 100)
		n2, err := r.ReadAt(ctx, buf, 1024)
		require.NoError(t, err)
		assert.Equal(t, 100, n2)
		assert.Equal(t, data[1024:1124], buf)

		require.NoError(t, store.Delete(ctx, name))
		require.NoError(t, r.Close())
	})

	t.Run("Backup", func(t *testing.T) {
		payload := bytes.Repeat([]byte("I AM A WALRUS. "), 4096)
		name := blobstore.BackupName("backups/", time.Now())

		_, err := blobstore.Backup(ctx, store, name, snapshot(payload))
		require.NoError(t, err)

		var out bytes.Buffer
		_, err = blobstore.Restore(ctx, store, name, &out)
		require.NoError(t, err)
		assert.Equal(t, payload, out.Bytes())

		require.NoError(t, blobstore.Prune(ctx, store, "backups/", 0))
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.Open(ctx, "nonexistent")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})
}

type snapshot []byte

func (s snapshot) Snapshot(w io.Writer) (int64, error) {
	n, err := w.Write(s)
	return int64(n), err
}
