package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "test.pf")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("hello"), 3)
	require.NoError(t, err)
	require.NoError(t, f.Sync())

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 3)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size())
	assert.NotZero(t, f.Fd())

	require.NoError(t, f.Close())

	_, err = lfs.Stat(fpath)
	require.NoError(t, err)

	require.NoError(t, lfs.Remove(fpath))
	_, err = lfs.Stat(fpath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)
	ffs.AddRule("limited", Fault{FailAfterBytes: 4})
	ffs.AddRule("syncfail", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("short", Fault{FailAfterBytes: -1, ShortRead: true})

	t.Run("write limit", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "limited.pf"), os.O_CREATE|os.O_RDWR, 0o644)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.WriteAt([]byte("abcd"), 0)
		require.NoError(t, err)

		_, err = f.WriteAt([]byte("e"), 4)
		assert.ErrorIs(t, err, ErrInjected)
	})

	t.Run("sync", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "syncfail.pf"), os.O_CREATE|os.O_RDWR, 0o644)
		require.NoError(t, err)
		defer f.Close()

		assert.ErrorIs(t, f.Sync(), ErrInjected)
	})

	t.Run("short read", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "short.pf"), os.O_CREATE|os.O_RDWR, 0o644)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.WriteAt([]byte("abcdef"), 0)
		require.NoError(t, err)

		n, err := f.ReadAt(make([]byte, 6), 0)
		assert.Equal(t, 3, n)
		assert.ErrorIs(t, err, ErrInjected)
	})

	t.Run("default passes through", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(tmp, "plain.pf"), os.O_CREATE|os.O_RDWR, 0o644)
		require.NoError(t, err)

		_, err = f.WriteAt([]byte("abcdef"), 0)
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		require.NoError(t, f.Close())
	})
}
