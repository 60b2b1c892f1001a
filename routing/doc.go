// Package routing decides which server owns a request.
//
// A request is first reduced to a protocol.Reference naming its logical
// target, then the reference is hashed onto a weighted Pool:
//
//	MatrixRef  matrix
//	RowRef     matrix + row
//	CellRef    matrix + row
//	ColumnRef  matrix + column
//	NameRef    Bernstein(name)
//
// taken modulo the number of slots. Matrix metadata and the rows of that
// matrix deliberately hash differently, so a row is not guaranteed to live
// next to its matrix.
package routing
