package vector

// DefaultBufferDelta is the capacity growth step of sparse vectors that
// are not bound to a matrix.
const DefaultBufferDelta = 256

// Matrix carries the metadata shared by the row and column vectors of one
// sparse matrix. Vectors keep a reference to their matrix; the matrix does
// not own its vectors.
type Matrix struct {
	Index       uint64
	Rows        uint64
	Columns     uint64
	BufferDelta uint32
	Name        string
}

// NewMatrix returns matrix metadata with the default growth delta.
func NewMatrix(index uint64, name string) *Matrix {
	return &Matrix{
		Index:       index,
		BufferDelta: DefaultBufferDelta,
		Name:        name,
	}
}

func (m *Matrix) bufferDelta() int {
	if m == nil || m.BufferDelta == 0 {
		return DefaultBufferDelta
	}

	return int(m.BufferDelta)
}
