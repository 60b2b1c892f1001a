package vector

import "github.com/hupe1980/learner/internal/math32"

// Dense is a fixed-length vector in which every index holds a value.
// It follows the same freeze contract as Sparse.
type Dense struct {
	values    []float32
	frozen    bool
	magnitude float32
}

// NewDense returns a zeroed vector of the given length.
func NewDense(length int) (*Dense, error) {
	if length <= 0 {
		return nil, ErrInvalidLength
	}

	return &Dense{values: make([]float32, length)}, nil
}

// Len returns the vector length.
func (v *Dense) Len() int { return len(v.values) }

// Set stores value at index.
func (v *Dense) Set(index int, value float32) error {
	if index < 0 || index >= len(v.values) {
		return ErrIndexOutOfRange
	}

	v.values[index] = value

	return nil
}

// Get returns the value at index.
func (v *Dense) Get(index int) (float32, error) {
	if index < 0 || index >= len(v.values) {
		return 0, ErrIndexOutOfRange
	}

	return v.values[index], nil
}

// Freeze caches the current magnitude.
func (v *Dense) Freeze() {
	if v.frozen {
		return
	}

	v.magnitude = math32.Sqrt(math32.SumSquares(v.values))
	v.frozen = true
}

// Unfreeze drops the cached magnitude.
func (v *Dense) Unfreeze() {
	v.frozen = false
	v.magnitude = 0
}

// Frozen reports whether the magnitude is cached.
func (v *Dense) Frozen() bool { return v.frozen }

// Magnitude returns the L2 norm of v.
func (v *Dense) Magnitude() (float32, error) {
	if v == nil {
		return 0, ErrMissingVector
	}

	if v.frozen {
		return v.magnitude, nil
	}

	return math32.Sqrt(math32.SumSquares(v.values)), nil
}

// DotProduct returns the dot product of two vectors of equal length.
func (v *Dense) DotProduct(o *Dense) (float32, error) {
	if err := checkDense(v, o); err != nil {
		return 0, err
	}

	return math32.Dot(v.values, o.values), nil
}

// EuclideanDistance returns the L2 distance of two vectors of equal length.
func (v *Dense) EuclideanDistance(o *Dense) (float32, error) {
	if err := checkDense(v, o); err != nil {
		return 0, err
	}

	return math32.Sqrt(math32.SquaredL2(v.values, o.values)), nil
}

// CosineSimilarity returns DotProduct / (|v| * |o|).
func (v *Dense) CosineSimilarity(o *Dense) (float32, error) {
	dot, err := v.DotProduct(o)
	if err != nil {
		return 0, err
	}

	ma, _ := v.Magnitude()
	mb, _ := o.Magnitude()

	return math32.Cosine(dot, ma, mb), nil
}

func checkDense(a, b *Dense) error {
	if a == nil || b == nil {
		return ErrMissingVector
	}

	if len(a.values) != len(b.values) {
		return ErrLengthMismatch
	}

	return nil
}
