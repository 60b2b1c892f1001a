package vector

import (
	"iter"
	"math"
	"slices"

	"github.com/hupe1980/learner/internal/math32"
)

// Entry is one stored (index, value) pair of a sparse vector.
type Entry struct {
	Index uint32
	Value float32
}

// Sparse is an ordered association of indices to values. Absent indices
// are implicit zeros for arithmetic but are reported as missing by Get.
//
// Freezing caches the magnitude. Set does not invalidate the cache: a
// caller that mutates a frozen vector must Unfreeze it first, otherwise
// Magnitude keeps returning the value captured at freeze time.
//
// Sparse is not safe for concurrent use.
type Sparse struct {
	entries   []Entry
	matrix    *Matrix
	frozen    bool
	magnitude float32
}

// SparseOption configures a sparse vector.
type SparseOption func(*Sparse)

// WithMatrix binds the vector to matrix, whose BufferDelta becomes the
// capacity growth step.
func WithMatrix(m *Matrix) SparseOption {
	return func(v *Sparse) {
		v.matrix = m
	}
}

// NewSparse returns an empty sparse vector.
func NewSparse(opts ...SparseOption) *Sparse {
	v := &Sparse{}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Free releases the stored entries. The vector is empty and unfrozen
// afterwards.
func (v *Sparse) Free() {
	if v == nil {
		return
	}

	v.entries = nil
	v.frozen = false
	v.magnitude = 0
}

// Matrix returns the matrix the vector belongs to, or nil.
func (v *Sparse) Matrix() *Matrix { return v.matrix }

// Len returns the number of stored entries.
func (v *Sparse) Len() int {
	if v == nil {
		return 0
	}

	return len(v.entries)
}

// MinIndex returns the smallest stored index. ok is false for an empty vector.
func (v *Sparse) MinIndex() (index uint32, ok bool) {
	if len(v.entries) == 0 {
		return 0, false
	}

	return v.entries[0].Index, true
}

// MaxIndex returns the largest stored index. ok is false for an empty vector.
func (v *Sparse) MaxIndex() (index uint32, ok bool) {
	if len(v.entries) == 0 {
		return 0, false
	}

	return v.entries[len(v.entries)-1].Index, true
}

// Set stores value at index, overwriting an existing entry in place.
// On a frozen vector the cached magnitude is left unchanged.
func (v *Sparse) Set(index int64, value float32) error {
	if v == nil {
		return ErrMissingVector
	}

	if index < 0 || index > math.MaxUint32 {
		return ErrIndexOutOfRange
	}

	idx := uint32(index) //nolint:gosec // bounds checked above

	found, pos := search(v.entries, idx)
	if found {
		v.entries[pos].Value = value
		return nil
	}

	if len(v.entries) == cap(v.entries) {
		v.entries = slices.Grow(v.entries, v.matrix.bufferDelta())
	}

	// Shift the tail up one slot; copy handles the overlap.
	v.entries = append(v.entries, Entry{})
	copy(v.entries[pos+1:], v.entries[pos:])
	v.entries[pos] = Entry{Index: idx, Value: value}

	return nil
}

// Get returns the value stored at index.
func (v *Sparse) Get(index int64) (float32, error) {
	if v == nil {
		return 0, ErrMissingVector
	}

	if len(v.entries) == 0 || index < int64(v.entries[0].Index) || index > int64(v.entries[len(v.entries)-1].Index) {
		return 0, ErrIndexOutOfRange
	}

	found, pos := search(v.entries, uint32(index)) //nolint:gosec // within stored bounds
	if !found {
		return 0, ErrIndexNotFound
	}

	return v.entries[pos].Value, nil
}

// Delete removes the entry at index.
func (v *Sparse) Delete(index int64) error {
	if v == nil {
		return ErrMissingVector
	}

	if index < 0 || index > math.MaxUint32 {
		return ErrIndexOutOfRange
	}

	found, pos := search(v.entries, uint32(index)) //nolint:gosec // bounds checked above
	if !found {
		return ErrIndexNotFound
	}

	v.entries = slices.Delete(v.entries, pos, pos+1)

	return nil
}

// All iterates the stored entries in ascending index order.
func (v *Sparse) All() iter.Seq2[uint32, float32] {
	return func(yield func(uint32, float32) bool) {
		if v == nil {
			return
		}

		for _, e := range v.entries {
			if !yield(e.Index, e.Value) {
				return
			}
		}
	}
}

// Freeze caches the current magnitude. Freezing a frozen vector is a no-op.
func (v *Sparse) Freeze() {
	if v.frozen {
		return
	}

	v.magnitude = v.computeMagnitude()
	v.frozen = true
}

// Unfreeze drops the cached magnitude.
func (v *Sparse) Unfreeze() {
	v.frozen = false
	v.magnitude = 0
}

// Frozen reports whether the magnitude is cached.
func (v *Sparse) Frozen() bool { return v.frozen }

// Magnitude returns the L2 norm of v, or the cached value if v is frozen.
func (v *Sparse) Magnitude() (float32, error) {
	if v == nil {
		return 0, ErrMissingVector
	}

	if v.frozen {
		return v.magnitude, nil
	}

	return v.computeMagnitude(), nil
}

func (v *Sparse) computeMagnitude() float32 {
	var sum float32
	for _, e := range v.entries {
		sum += e.Value * e.Value
	}

	return math32.Sqrt(sum)
}

// DotProduct merges both index sequences; indices present in only one
// vector contribute nothing.
func (v *Sparse) DotProduct(o *Sparse) (float32, error) {
	if v == nil || o == nil {
		return 0, ErrMissingVector
	}

	var (
		sum  float32
		i, j int
	)

	for i < len(v.entries) && j < len(o.entries) {
		a, b := v.entries[i], o.entries[j]

		switch {
		case a.Index == b.Index:
			sum += a.Value * b.Value
			i++
			j++
		case a.Index < b.Index:
			i++
		default:
			j++
		}
	}

	return sum, nil
}

// EuclideanDistance merges both index sequences; an index present in only
// one vector is paired with an implicit zero.
func (v *Sparse) EuclideanDistance(o *Sparse) (float32, error) {
	if v == nil || o == nil {
		return 0, ErrMissingVector
	}

	var (
		sum  float32
		i, j int
	)

	for i < len(v.entries) && j < len(o.entries) {
		a, b := v.entries[i], o.entries[j]

		switch {
		case a.Index == b.Index:
			d := a.Value - b.Value
			sum += d * d
			i++
			j++
		case a.Index < b.Index:
			sum += a.Value * a.Value
			i++
		default:
			sum += b.Value * b.Value
			j++
		}
	}

	for ; i < len(v.entries); i++ {
		sum += v.entries[i].Value * v.entries[i].Value
	}

	for ; j < len(o.entries); j++ {
		sum += o.entries[j].Value * o.entries[j].Value
	}

	return math32.Sqrt(sum), nil
}

// CosineSimilarity returns DotProduct / (|v| * |o|). A zero magnitude yields
// NaN or Inf; the result is not checked.
func (v *Sparse) CosineSimilarity(o *Sparse) (float32, error) {
	dot, err := v.DotProduct(o)
	if err != nil {
		return 0, err
	}

	ma, _ := v.Magnitude()
	mb, _ := o.Magnitude()

	return math32.Cosine(dot, ma, mb), nil
}
