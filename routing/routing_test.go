package routing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learner/internal/hash"
	"github.com/hupe1980/learner/protocol"
)

func newPool(t *testing.T, weights ...int) *Pool[string] {
	t.Helper()

	p := NewPool[string]()
	for i, w := range weights {
		require.NoError(t, p.Add(string(rune('a'+i)), w))
	}

	return p
}

func TestReferenceOf(t *testing.T) {
	tests := []struct {
		name string
		req  protocol.Request
		want protocol.Reference
		err  error
	}{
		{"matrix", protocol.Request{Item: protocol.ItemMatrix, Matrix: 4, Row: 9}, protocol.MatrixRef{Matrix: 4}, nil},
		{"row name", protocol.Request{Item: protocol.ItemRow, Attribute: protocol.AttrName, Matrix: 4, Row: 9}, protocol.MatrixRef{Matrix: 4}, nil},
		{"column index", protocol.Request{Item: protocol.ItemColumn, Attribute: protocol.AttrIndex, Matrix: 2, Column: -1}, protocol.MatrixRef{Matrix: 2}, nil},
		{"row", protocol.Request{Item: protocol.ItemRow, Matrix: 4, Row: 9}, protocol.RowRef{Matrix: 4, Row: 9}, nil},
		{"cell", protocol.Request{Item: protocol.ItemCell, Matrix: 4, Row: 9, Column: 3}, protocol.CellRef{Matrix: 4, Row: 9, Column: 3}, nil},
		{"column", protocol.Request{Item: protocol.ItemColumn, Matrix: 4, Column: 3}, protocol.ColumnRef{Matrix: 4, Column: 3}, nil},
		{"key value", protocol.Request{Item: protocol.ItemKeyValue, Name: []byte("k")}, protocol.NameRef{Name: []byte("k")}, nil},
		{"negative matrix", protocol.Request{Item: protocol.ItemMatrix, Matrix: -1}, nil, ErrIndexOutOfRange},
		{"negative row", protocol.Request{Item: protocol.ItemRow, Row: -1}, nil, ErrIndexOutOfRange},
		{"negative cell row", protocol.Request{Item: protocol.ItemCell, Row: -5}, nil, ErrIndexOutOfRange},
		{"negative column", protocol.Request{Item: protocol.ItemColumn, Column: -1}, nil, ErrIndexOutOfRange},
		{"missing name", protocol.Request{Item: protocol.ItemKeyValue}, nil, ErrNameMissing},
		{"unknown item", protocol.Request{Item: 42}, nil, ErrUnknownOperation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReferenceOf(&tc.req)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServerForDeterministic(t *testing.T) {
	p := newPool(t, 1, 2, 3)

	reqs := []*protocol.Request{
		{Item: protocol.ItemKeyValue, Name: []byte("test_value")},
		{Item: protocol.ItemRow, Matrix: 7, Row: 100},
		{Item: protocol.ItemColumn, Matrix: 7, Column: 3},
		{Item: protocol.ItemMatrix, Matrix: 11},
	}

	for _, req := range reqs {
		first, err := p.ServerFor(req)
		require.NoError(t, err)

		for range 10 {
			again, err := p.ServerFor(req)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestServerForSlots(t *testing.T) {
	p := newPool(t, 2, 3)
	require.Equal(t, 5, p.Len())

	// Slots: a a b b b
	want := []string{"a", "a", "b", "b", "b"}

	for row := range int64(20) {
		req := &protocol.Request{Item: protocol.ItemRow, Matrix: 3, Row: row}

		i, err := p.Index(req)
		require.NoError(t, err)
		assert.Equal(t, int((3+row)%5), i)

		got, err := p.ServerFor(req)
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}
}

func TestServerForKeyValue(t *testing.T) {
	p := newPool(t, 1, 1, 1, 1)
	name := []byte("test_value")

	i, err := p.Index(&protocol.Request{Item: protocol.ItemKeyValue, Name: name})
	require.NoError(t, err)
	assert.Equal(t, int(hash.Bernstein(name)%4), i)
}

func TestServerForMatrixScopedNames(t *testing.T) {
	p := newPool(t, 1, 1, 1)

	byMatrix, err := p.Index(&protocol.Request{Item: protocol.ItemMatrix, Matrix: 5})
	require.NoError(t, err)

	byName, err := p.Index(&protocol.Request{Item: protocol.ItemRow, Attribute: protocol.AttrName, Matrix: 5, Row: 1})
	require.NoError(t, err)

	assert.Equal(t, byMatrix, byName)
}

func TestWeightsAreProportional(t *testing.T) {
	p := newPool(t, 1, 3)
	counts := map[string]int{}

	for m := range int64(400) {
		s, err := p.ServerFor(&protocol.Request{Item: protocol.ItemMatrix, Matrix: m})
		require.NoError(t, err)
		counts[s]++
	}

	assert.Equal(t, 100, counts["a"])
	assert.Equal(t, 300, counts["b"])
}

func TestPoolErrors(t *testing.T) {
	p := NewPool[string]()

	_, err := p.ServerFor(&protocol.Request{Item: protocol.ItemMatrix})
	require.ErrorIs(t, err, ErrEmptyPool)

	require.ErrorIs(t, p.Add("a", 0), ErrInvalidWeight)
	require.NoError(t, p.Add("a", 2))
	require.NoError(t, p.Add("b", 1))
	assert.Equal(t, []string{"a", "b"}, p.Members())
}

func TestSlotDoesNotOverflowNegative(t *testing.T) {
	ref := protocol.RowRef{Matrix: 1 << 62, Row: 1 << 62}
	p := newPool(t, 1, 1, 1)

	p.mu.RLock()
	i, err := p.indexLocked(ref)
	p.mu.RUnlock()

	require.NoError(t, err)
	assert.GreaterOrEqual(t, i, 0)
	assert.Less(t, i, 3)
}

func TestCode(t *testing.T) {
	assert.Equal(t, protocol.CodeOK, Code(nil))
	assert.Equal(t, protocol.CodeIndexOutOfRange, Code(ErrIndexOutOfRange))
	assert.Equal(t, protocol.CodeNameMissing, Code(ErrNameMissing))
	assert.Equal(t, protocol.CodeUnknownOperation, Code(ErrUnknownOperation))
	assert.Equal(t, protocol.CodeCommunicationError, Code(errors.New("x")))
}
