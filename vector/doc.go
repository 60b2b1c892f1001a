// Package vector implements the sparse and dense vectors stored as matrix
// rows and columns.
//
// A Sparse vector keeps its entries sorted by index with unique indices.
// Lookups use binary search; DotProduct and EuclideanDistance merge the two
// index sequences in O(n+m).
//
//	v := vector.NewSparse()
//	_ = v.Set(3, 1.5)
//	_ = v.Set(1, 2.0)
//
//	x, err := v.Get(2) // ErrIndexNotFound
//
// Sparse vectors travel over the wire and into the store in the encoding
// produced by MarshalBinary.
package vector
