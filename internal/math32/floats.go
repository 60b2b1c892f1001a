// Package math32 holds the float32 arithmetic shared by dense and sparse
// vectors.
package math32

import "math"

// Dot returns the dot product of a and b. b must be at least as long as a.
func Dot(a, b []float32) float32 {
	b = b[:len(a)]

	var sum float32
	for i, x := range a {
		sum += x * b[i]
	}

	return sum
}

// SquaredL2 returns the squared euclidean distance of a and b. b must be at
// least as long as a.
func SquaredL2(a, b []float32) float32 {
	b = b[:len(a)]

	var sum float32
	for i, x := range a {
		d := x - b[i]
		sum += d * d
	}

	return sum
}

// SumSquares returns the squared magnitude of a.
func SumSquares(a []float32) float32 {
	return Dot(a, a)
}

// Sqrt is math.Sqrt in float32.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Cosine divides a dot product by the product of both magnitudes. A zero
// magnitude yields NaN or Inf.
func Cosine(dot, magA, magB float32) float32 {
	return dot / (magA * magB)
}
