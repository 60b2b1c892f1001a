package server

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/routing"
	"github.com/hupe1980/learner/store"
	"github.com/hupe1980/learner/vector"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	srv, err := New(store.NewMemory())
	require.NoError(t, err)

	return srv
}

func do(t *testing.T, srv *Server, req *protocol.Request, want protocol.Code) []byte {
	t.Helper()

	res := srv.Handle(req)
	require.Equal(t, want, res.Code, "%s", req)

	return res.Data
}

func encodeSparse(t *testing.T, entries map[int64]float32) []byte {
	t.Helper()

	v := vector.NewSparse()
	for i, f := range entries {
		require.NoError(t, v.Set(i, f))
	}

	b, err := v.MarshalBinary()
	require.NoError(t, err)

	return b
}

func TestHandleMatrixName(t *testing.T) {
	srv := newTestServer(t)

	get := &protocol.Request{Operation: protocol.OpGet, Item: protocol.ItemMatrix, Attribute: protocol.AttrName, Matrix: 3}
	do(t, srv, get, protocol.CodeMissingMatrix)

	do(t, srv, &protocol.Request{Operation: protocol.OpSet, Item: protocol.ItemMatrix, Attribute: protocol.AttrName, Matrix: 3}, protocol.CodeNameMissing)
	do(t, srv, &protocol.Request{Operation: protocol.OpSet, Item: protocol.ItemMatrix, Attribute: protocol.AttrName, Matrix: 3, Name: []byte("ratings")}, protocol.CodeOK)
	assert.Equal(t, []byte("ratings"), do(t, srv, get, protocol.CodeOK))

	del := &protocol.Request{Operation: protocol.OpDelete, Item: protocol.ItemMatrix, Attribute: protocol.AttrName, Matrix: 3}
	do(t, srv, del, protocol.CodeOK)
	do(t, srv, del, protocol.CodeMissingMatrix)
	do(t, srv, get, protocol.CodeMissingMatrix)
}

func TestHandleMatrixIndex(t *testing.T) {
	srv := newTestServer(t)

	req := func(op protocol.Operation, name string, data []byte) *protocol.Request {
		return &protocol.Request{Operation: op, Item: protocol.ItemMatrix, Attribute: protocol.AttrIndex, Name: []byte(name), Data: data}
	}

	do(t, srv, req(protocol.OpGet, "", nil), protocol.CodeNameMissing)
	do(t, srv, req(protocol.OpGet, "ratings", nil), protocol.CodeMissingMatrix)
	do(t, srv, req(protocol.OpSet, "ratings", []byte{1}), protocol.CodeInvalidLength)
	do(t, srv, req(protocol.OpSet, "ratings", protocol.EncodeIndex(-1)), protocol.CodeIndexOutOfRange)
	do(t, srv, req(protocol.OpSet, "ratings", protocol.EncodeIndex(3)), protocol.CodeOK)

	index, ok := protocol.DecodeIndex(do(t, srv, req(protocol.OpGet, "ratings", nil), protocol.CodeOK))
	require.True(t, ok)
	assert.Equal(t, int64(3), index)

	do(t, srv, req(protocol.OpDelete, "ratings", nil), protocol.CodeOK)
	do(t, srv, req(protocol.OpDelete, "ratings", nil), protocol.CodeMissingMatrix)
}

func TestHandleVectorValue(t *testing.T) {
	for _, item := range []protocol.Item{protocol.ItemRow, protocol.ItemColumn} {
		t.Run(item.String(), func(t *testing.T) {
			srv := newTestServer(t)

			req := func(op protocol.Operation, data []byte) *protocol.Request {
				return &protocol.Request{Operation: op, Item: item, Matrix: 1, Row: 4, Column: 4, Data: data}
			}

			do(t, srv, req(protocol.OpGet, nil), protocol.CodeMissingVector)
			do(t, srv, req(protocol.OpSet, []byte{1, 2, 3}), protocol.CodeParseError)

			data := encodeSparse(t, map[int64]float32{1: 1.5, 9: -2})
			do(t, srv, req(protocol.OpSet, data), protocol.CodeOK)
			assert.Equal(t, data, do(t, srv, req(protocol.OpGet, nil), protocol.CodeOK))

			do(t, srv, req(protocol.OpDelete, nil), protocol.CodeOK)
			do(t, srv, req(protocol.OpDelete, nil), protocol.CodeMissingVector)
		})
	}
}

func TestHandleRowAndColumnAreDistinct(t *testing.T) {
	srv := newTestServer(t)

	row := encodeSparse(t, map[int64]float32{0: 1})
	do(t, srv, &protocol.Request{Operation: protocol.OpSet, Item: protocol.ItemRow, Matrix: 1, Row: 2, Data: row}, protocol.CodeOK)
	do(t, srv, &protocol.Request{Operation: protocol.OpGet, Item: protocol.ItemColumn, Matrix: 1, Column: 2}, protocol.CodeMissingVector)
	do(t, srv, &protocol.Request{Operation: protocol.OpGet, Item: protocol.ItemRow, Matrix: 2, Row: 2}, protocol.CodeMissingVector)
}

func TestHandleCell(t *testing.T) {
	srv := newTestServer(t)

	cell := func(op protocol.Operation, column int64, data []byte) *protocol.Request {
		return &protocol.Request{Operation: op, Item: protocol.ItemCell, Matrix: 1, Row: 2, Column: column, Data: data}
	}

	do(t, srv, cell(protocol.OpGet, 5, nil), protocol.CodeMissingVector)
	do(t, srv, cell(protocol.OpSet, 5, []byte{1, 2}), protocol.CodeInvalidLength)
	do(t, srv, cell(protocol.OpSet, -1, protocol.EncodeFloat(1)), protocol.CodeIndexOutOfRange)

	do(t, srv, cell(protocol.OpSet, 5, protocol.EncodeFloat(0.5)), protocol.CodeOK)
	do(t, srv, cell(protocol.OpSet, 1, protocol.EncodeFloat(-3)), protocol.CodeOK)
	do(t, srv, cell(protocol.OpSet, 5, protocol.EncodeFloat(0.25)), protocol.CodeOK)

	f, ok := protocol.DecodeFloat(do(t, srv, cell(protocol.OpGet, 5, nil), protocol.CodeOK))
	require.True(t, ok)
	assert.InDelta(t, 0.25, f, 0)

	do(t, srv, cell(protocol.OpGet, 3, nil), protocol.CodeIndexNotFound)
	do(t, srv, cell(protocol.OpGet, 6, nil), protocol.CodeIndexOutOfRange)

	// Cells live in the row vector.
	b := do(t, srv, &protocol.Request{Operation: protocol.OpGet, Item: protocol.ItemRow, Matrix: 1, Row: 2}, protocol.CodeOK)
	v := vector.NewSparse()
	require.NoError(t, v.UnmarshalBinary(b))
	assert.Equal(t, 2, v.Len())

	do(t, srv, cell(protocol.OpDelete, 1, nil), protocol.CodeOK)
	do(t, srv, cell(protocol.OpDelete, 1, nil), protocol.CodeIndexNotFound)
	do(t, srv, cell(protocol.OpGet, 1, nil), protocol.CodeIndexOutOfRange)

	do(t, srv, &protocol.Request{Operation: protocol.OpGet, Item: protocol.ItemCell, Attribute: protocol.AttrName, Matrix: 1, Row: 2}, protocol.CodeUnknownOperation)
}

func TestHandleLabels(t *testing.T) {
	for _, item := range []protocol.Item{protocol.ItemRow, protocol.ItemColumn} {
		t.Run(item.String(), func(t *testing.T) {
			srv := newTestServer(t)

			byIndex := func(op protocol.Operation, index int64, name string) *protocol.Request {
				return &protocol.Request{Operation: op, Item: item, Attribute: protocol.AttrName, Matrix: 1, Row: index, Column: index, Name: []byte(name)}
			}

			byName := func(op protocol.Operation, name string, index int64) *protocol.Request {
				return &protocol.Request{Operation: op, Item: item, Attribute: protocol.AttrIndex, Matrix: 1, Row: index, Column: index, Name: []byte(name)}
			}

			indexOf := func(name string) int64 {
				i, ok := protocol.DecodeIndex(do(t, srv, byName(protocol.OpGet, name, 0), protocol.CodeOK))
				require.True(t, ok)

				return i
			}

			do(t, srv, byIndex(protocol.OpGet, 3, ""), protocol.CodeUnknownKey)
			do(t, srv, byName(protocol.OpGet, "alice", 0), protocol.CodeIndexNotFound)
			do(t, srv, byIndex(protocol.OpSet, 3, ""), protocol.CodeNameMissing)
			do(t, srv, byIndex(protocol.OpSet, -1, "alice"), protocol.CodeIndexOutOfRange)

			do(t, srv, byIndex(protocol.OpSet, 3, "alice"), protocol.CodeOK)
			assert.Equal(t, []byte("alice"), do(t, srv, byIndex(protocol.OpGet, 3, ""), protocol.CodeOK))
			assert.Equal(t, int64(3), indexOf("alice"))

			// Moving a name drops its old index.
			do(t, srv, byName(protocol.OpSet, "alice", 5), protocol.CodeOK)
			assert.Equal(t, int64(5), indexOf("alice"))
			do(t, srv, byIndex(protocol.OpGet, 3, ""), protocol.CodeUnknownKey)

			// Renaming an index drops its old name.
			do(t, srv, byIndex(protocol.OpSet, 5, "bob"), protocol.CodeOK)
			do(t, srv, byName(protocol.OpGet, "alice", 0), protocol.CodeIndexNotFound)
			assert.Equal(t, int64(5), indexOf("bob"))

			do(t, srv, byName(protocol.OpDelete, "bob", 0), protocol.CodeOK)
			do(t, srv, byIndex(protocol.OpGet, 5, ""), protocol.CodeUnknownKey)
			do(t, srv, byName(protocol.OpDelete, "bob", 0), protocol.CodeIndexNotFound)

			do(t, srv, byIndex(protocol.OpSet, 7, "carol"), protocol.CodeOK)
			do(t, srv, byIndex(protocol.OpDelete, 7, ""), protocol.CodeOK)
			do(t, srv, byName(protocol.OpGet, "carol", 0), protocol.CodeIndexNotFound)
			do(t, srv, byIndex(protocol.OpDelete, 7, ""), protocol.CodeUnknownKey)
		})
	}
}

func TestHandleKeyValueNamespace(t *testing.T) {
	srv := newTestServer(t)

	// A key/value entry never aliases matrix data.
	do(t, srv, &protocol.Request{Operation: protocol.OpSet, Item: protocol.ItemMatrix, Attribute: protocol.AttrName, Matrix: 0, Name: []byte("m")}, protocol.CodeOK)

	do(t, srv, &protocol.Request{Operation: protocol.OpGet, Name: matrixNameKey(0)[1:]}, protocol.CodeUnknownKey)
}

type failingStore struct{ store.Store }

var errDisk = errors.New("disk on fire")

func (failingStore) Put([]byte, []byte) error { return errDisk }

func TestHandleDatabaseError(t *testing.T) {
	srv, err := New(failingStore{store.NewMemory()})
	require.NoError(t, err)

	do(t, srv, &protocol.Request{Operation: protocol.OpSet, Name: []byte("k"), Data: []byte("v")}, protocol.CodeDatabaseError)
	do(t, srv, &protocol.Request{Operation: protocol.OpGet, Name: []byte("k")}, protocol.CodeUnknownKey)
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want protocol.Code
	}{
		{nil, protocol.CodeOK},
		{protocol.CodeMissingMatrix, protocol.CodeMissingMatrix},
		{fmt.Errorf("wrapped: %w", protocol.CodeParseError), protocol.CodeParseError},
		{routing.ErrIndexOutOfRange, protocol.CodeIndexOutOfRange},
		{routing.ErrNameMissing, protocol.CodeNameMissing},
		{routing.ErrUnknownOperation, protocol.CodeUnknownOperation},
		{vector.ErrIndexOutOfRange, protocol.CodeIndexOutOfRange},
		{vector.ErrIndexNotFound, protocol.CodeIndexNotFound},
		{vector.ErrMissingVector, protocol.CodeMissingVector},
		{vector.ErrLengthMismatch, protocol.CodeVectorsNotOfEqualLength},
		{vector.ErrInvalidLength, protocol.CodeInvalidLength},
		{vector.ErrCorrupt, protocol.CodeParseError},
		{store.ErrNotFound, protocol.CodeUnknownKey},
		{store.ErrClosed, protocol.CodeDatabaseError},
		{errDisk, protocol.CodeDatabaseError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, codeFor(tc.err), "%v", tc.err)
	}
}
