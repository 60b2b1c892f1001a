package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("learner")

// BoltOptions configures a Bolt store.
type BoltOptions struct {
	// Compression is applied to every value written.
	Compression Compression

	// LockTimeout bounds the wait for the database file lock. Zero waits
	// forever.
	LockTimeout time.Duration

	// NoSync skips fsync after each commit. Only for tests and bulk loads.
	NoSync bool

	// ReadOnly opens the database without write access.
	ReadOnly bool
}

// DefaultBoltOptions syncs every commit and stores values uncompressed.
var DefaultBoltOptions = BoltOptions{
	LockTimeout: time.Second,
}

// Bolt is a Store on a single bbolt database file. Every Put and Delete is
// one committed transaction.
type Bolt struct {
	db   *bolt.DB
	opts BoltOptions
}

// OpenBolt opens or creates the database at path.
func OpenBolt(path string, optFns ...func(o *BoltOptions)) (*Bolt, error) {
	opts := DefaultBoltOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout:  opts.LockTimeout,
		NoSync:   opts.NoSync,
		ReadOnly: opts.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}

	if !opts.ReadOnly {
		if err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketName)
			return err
		}); err != nil {
			return nil, errors.Join(fmt.Errorf("store: create bucket: %w", err), db.Close())
		}
	}

	return &Bolt{db: db, opts: opts}, nil
}

// Path returns the database file path.
func (b *Bolt) Path() string {
	return b.db.Path()
}

// Get implements Store.
func (b *Bolt) Get(key []byte) ([]byte, error) {
	var value []byte

	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt == nil {
			return ErrNotFound
		}

		frame := bkt.Get(key)
		if frame == nil {
			return ErrNotFound
		}

		var err error

		value, err = decodeValue(frame)

		return err
	})
	if err != nil {
		return nil, wrapBolt(err)
	}

	return value, nil
}

// Put implements Store.
func (b *Bolt) Put(key, value []byte) error {
	frame, err := encodeValue(b.opts.Compression, value)
	if err != nil {
		return err
	}

	return wrapBolt(b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, frame)
	}))
}

// Delete implements Store.
func (b *Bolt) Delete(key []byte) error {
	return wrapBolt(b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt.Get(key) == nil {
			return ErrNotFound
		}

		return bkt.Delete(key)
	}))
}

// ForEach calls fn for every key in order with its decoded value. The
// slices are only valid during the call.
func (b *Bolt) ForEach(fn func(key, value []byte) error) error {
	return wrapBolt(b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketName)
		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(k, frame []byte) error {
			v, err := decodeValue(frame)
			if err != nil {
				return fmt.Errorf("key %x: %w", k, err)
			}

			return fn(k, v)
		})
	}))
}

// Len returns the number of keys.
func (b *Bolt) Len() (int, error) {
	var n int

	err := b.db.View(func(tx *bolt.Tx) error {
		if bkt := tx.Bucket(bucketName); bkt != nil {
			n = bkt.Stats().KeyN
		}

		return nil
	})

	return n, wrapBolt(err)
}

// Snapshot streams a consistent copy of the database file to w. Writers
// are not blocked while it runs.
func (b *Bolt) Snapshot(w io.Writer) (int64, error) {
	var n int64

	err := b.db.View(func(tx *bolt.Tx) error {
		var err error

		n, err = tx.WriteTo(w)

		return err
	})
	if err != nil {
		return n, fmt.Errorf("store: snapshot: %w", wrapBolt(err))
	}

	return n, nil
}

// Close implements Store.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func wrapBolt(err error) error {
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}
