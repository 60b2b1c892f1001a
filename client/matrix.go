package client

import (
	"context"
	"errors"

	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/vector"
)

// RegistryMatrix is the matrix whose server keeps the name to index
// registry of all matrices.
const RegistryMatrix = 0

// SetMatrixName names matrix and registers the name. A matrix has at most
// one name and a name belongs to at most one matrix: a name already held by
// another matrix moves to this one, and the other matrix loses its name.
func (c *Client) SetMatrixName(ctx context.Context, matrix int64, name string) error {
	old, err := c.MatrixName(ctx, matrix)
	if err != nil && !errors.Is(err, protocol.CodeMissingMatrix) {
		return err
	}

	if err := c.releaseMatrixName(ctx, name, matrix); err != nil {
		return err
	}

	if _, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpSet,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrName,
		Matrix:    matrix,
		Name:      []byte(name),
	}); err != nil {
		return err
	}

	if old != "" && old != name {
		if err := c.unregisterMatrix(ctx, old, matrix); err != nil {
			return err
		}
	}

	_, err = c.Do(ctx, &protocol.Request{
		Operation: protocol.OpSet,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrIndex,
		Matrix:    RegistryMatrix,
		Name:      []byte(name),
		Data:      protocol.EncodeIndex(matrix),
	})

	return err
}

// releaseMatrixName removes name from the matrix it is registered to,
// unless that is matrix itself.
func (c *Client) releaseMatrixName(ctx context.Context, name string, matrix int64) error {
	owner, err := c.MatrixIndex(ctx, name)

	switch {
	case errors.Is(err, protocol.CodeMissingMatrix):
		return nil
	case err != nil:
		return err
	case owner == matrix:
		return nil
	}

	current, err := c.MatrixName(ctx, owner)

	switch {
	case errors.Is(err, protocol.CodeMissingMatrix):
		return nil
	case err != nil:
		return err
	case current != name:
		return nil
	}

	_, err = c.Do(ctx, &protocol.Request{
		Operation: protocol.OpDelete,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrName,
		Matrix:    owner,
	})
	if errors.Is(err, protocol.CodeMissingMatrix) {
		return nil
	}

	return err
}

// MatrixName returns the name of matrix, or protocol.CodeMissingMatrix.
func (c *Client) MatrixName(ctx context.Context, matrix int64) (string, error) {
	res, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpGet,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrName,
		Matrix:    matrix,
	})
	if err != nil {
		return "", err
	}

	return string(res.Data), nil
}

// MatrixIndex resolves a matrix name through the registry.
func (c *Client) MatrixIndex(ctx context.Context, name string) (int64, error) {
	res, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpGet,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrIndex,
		Matrix:    RegistryMatrix,
		Name:      []byte(name),
	})
	if err != nil {
		return 0, err
	}

	return decodeIndex(res.Data)
}

// DeleteMatrix removes the name of matrix and its registry entry. Row,
// column and cell data are left in place.
func (c *Client) DeleteMatrix(ctx context.Context, matrix int64) error {
	name, err := c.MatrixName(ctx, matrix)
	if err != nil {
		return err
	}

	if _, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpDelete,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrName,
		Matrix:    matrix,
	}); err != nil {
		return err
	}

	return c.unregisterMatrix(ctx, name, matrix)
}

// unregisterMatrix drops the registry entry of name if it still points to
// matrix.
func (c *Client) unregisterMatrix(ctx context.Context, name string, matrix int64) error {
	owner, err := c.MatrixIndex(ctx, name)

	switch {
	case errors.Is(err, protocol.CodeMissingMatrix):
		return nil
	case err != nil:
		return err
	case owner != matrix:
		return nil
	}

	_, err = c.Do(ctx, &protocol.Request{
		Operation: protocol.OpDelete,
		Item:      protocol.ItemMatrix,
		Attribute: protocol.AttrIndex,
		Matrix:    RegistryMatrix,
		Name:      []byte(name),
	})
	if errors.Is(err, protocol.CodeMissingMatrix) {
		return nil
	}

	return err
}

// SetRowValue stores the sparse vector of a row.
func (c *Client) SetRowValue(ctx context.Context, matrix, row int64, v *vector.Sparse) error {
	return c.setVector(ctx, protocol.ItemRow, matrix, row, v)
}

// RowValue returns the sparse vector of a row, or
// protocol.CodeMissingVector.
func (c *Client) RowValue(ctx context.Context, matrix, row int64) (*vector.Sparse, error) {
	return c.vector(ctx, protocol.ItemRow, matrix, row)
}

// DeleteRowValue removes the sparse vector of a row.
func (c *Client) DeleteRowValue(ctx context.Context, matrix, row int64) error {
	return c.deleteVector(ctx, protocol.ItemRow, matrix, row)
}

// SetColumnValue stores the sparse vector of a column.
func (c *Client) SetColumnValue(ctx context.Context, matrix, column int64, v *vector.Sparse) error {
	return c.setVector(ctx, protocol.ItemColumn, matrix, column, v)
}

// ColumnValue returns the sparse vector of a column.
func (c *Client) ColumnValue(ctx context.Context, matrix, column int64) (*vector.Sparse, error) {
	return c.vector(ctx, protocol.ItemColumn, matrix, column)
}

// DeleteColumnValue removes the sparse vector of a column.
func (c *Client) DeleteColumnValue(ctx context.Context, matrix, column int64) error {
	return c.deleteVector(ctx, protocol.ItemColumn, matrix, column)
}

func (c *Client) setVector(ctx context.Context, item protocol.Item, matrix, index int64, v *vector.Sparse) error {
	if v == nil {
		return vector.ErrMissingVector
	}

	data, err := v.MarshalBinary()
	if err != nil {
		return err
	}

	req := labelRequest(protocol.OpSet, item, protocol.AttrValue, matrix, index)
	req.Data = data

	_, err = c.Do(ctx, req)

	return err
}

func (c *Client) vector(ctx context.Context, item protocol.Item, matrix, index int64) (*vector.Sparse, error) {
	res, err := c.Do(ctx, labelRequest(protocol.OpGet, item, protocol.AttrValue, matrix, index))
	if err != nil {
		return nil, err
	}

	v := vector.NewSparse()
	if err := v.UnmarshalBinary(res.Data); err != nil {
		return nil, err
	}

	return v, nil
}

func (c *Client) deleteVector(ctx context.Context, item protocol.Item, matrix, index int64) error {
	_, err := c.Do(ctx, labelRequest(protocol.OpDelete, item, protocol.AttrValue, matrix, index))
	return err
}

// SetCellValue sets one cell. Cells are stored in their row vector.
func (c *Client) SetCellValue(ctx context.Context, matrix, row, column int64, value float32) error {
	_, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpSet,
		Item:      protocol.ItemCell,
		Matrix:    matrix,
		Row:       row,
		Column:    column,
		Data:      protocol.EncodeFloat(value),
	})

	return err
}

// CellValue returns one cell. An unset cell inside the row's stored range
// is protocol.CodeIndexNotFound, one outside it
// protocol.CodeIndexOutOfRange.
func (c *Client) CellValue(ctx context.Context, matrix, row, column int64) (float32, error) {
	res, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpGet,
		Item:      protocol.ItemCell,
		Matrix:    matrix,
		Row:       row,
		Column:    column,
	})
	if err != nil {
		return 0, err
	}

	f, ok := protocol.DecodeFloat(res.Data)
	if !ok {
		return 0, protocol.CodeInvalidLength
	}

	return f, nil
}

// DeleteCellValue removes one cell.
func (c *Client) DeleteCellValue(ctx context.Context, matrix, row, column int64) error {
	_, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpDelete,
		Item:      protocol.ItemCell,
		Matrix:    matrix,
		Row:       row,
		Column:    column,
	})

	return err
}

// SetRowName names a row. A name identifies at most one row per matrix.
func (c *Client) SetRowName(ctx context.Context, matrix, row int64, name string) error {
	return c.setLabel(ctx, protocol.ItemRow, matrix, row, name)
}

// RowName returns the name of a row, or protocol.CodeUnknownKey.
func (c *Client) RowName(ctx context.Context, matrix, row int64) (string, error) {
	return c.label(ctx, protocol.ItemRow, matrix, row)
}

// RowIndex resolves a row name, or returns protocol.CodeIndexNotFound.
func (c *Client) RowIndex(ctx context.Context, matrix int64, name string) (int64, error) {
	return c.labelIndex(ctx, protocol.ItemRow, matrix, name)
}

// DeleteRowName removes the name of a row.
func (c *Client) DeleteRowName(ctx context.Context, matrix, row int64) error {
	return c.deleteLabel(ctx, protocol.ItemRow, matrix, row)
}

// SetColumnName names a column.
func (c *Client) SetColumnName(ctx context.Context, matrix, column int64, name string) error {
	return c.setLabel(ctx, protocol.ItemColumn, matrix, column, name)
}

// ColumnName returns the name of a column.
func (c *Client) ColumnName(ctx context.Context, matrix, column int64) (string, error) {
	return c.label(ctx, protocol.ItemColumn, matrix, column)
}

// ColumnIndex resolves a column name.
func (c *Client) ColumnIndex(ctx context.Context, matrix int64, name string) (int64, error) {
	return c.labelIndex(ctx, protocol.ItemColumn, matrix, name)
}

// DeleteColumnName removes the name of a column.
func (c *Client) DeleteColumnName(ctx context.Context, matrix, column int64) error {
	return c.deleteLabel(ctx, protocol.ItemColumn, matrix, column)
}

func (c *Client) setLabel(ctx context.Context, item protocol.Item, matrix, index int64, name string) error {
	req := labelRequest(protocol.OpSet, item, protocol.AttrName, matrix, index)
	req.Name = []byte(name)

	_, err := c.Do(ctx, req)

	return err
}

func (c *Client) label(ctx context.Context, item protocol.Item, matrix, index int64) (string, error) {
	res, err := c.Do(ctx, labelRequest(protocol.OpGet, item, protocol.AttrName, matrix, index))
	if err != nil {
		return "", err
	}

	return string(res.Data), nil
}

func (c *Client) labelIndex(ctx context.Context, item protocol.Item, matrix int64, name string) (int64, error) {
	res, err := c.Do(ctx, &protocol.Request{
		Operation: protocol.OpGet,
		Item:      item,
		Attribute: protocol.AttrIndex,
		Matrix:    matrix,
		Name:      []byte(name),
	})
	if err != nil {
		return 0, err
	}

	return decodeIndex(res.Data)
}

func (c *Client) deleteLabel(ctx context.Context, item protocol.Item, matrix, index int64) error {
	_, err := c.Do(ctx, labelRequest(protocol.OpDelete, item, protocol.AttrName, matrix, index))
	return err
}

// labelRequest addresses a row or column by index.
func labelRequest(op protocol.Operation, item protocol.Item, attr protocol.Attribute, matrix, index int64) *protocol.Request {
	req := &protocol.Request{Operation: op, Item: item, Attribute: attr, Matrix: matrix}

	if item == protocol.ItemColumn {
		req.Column = index
	} else {
		req.Row = index
	}

	return req
}

func decodeIndex(b []byte) (int64, error) {
	i, ok := protocol.DecodeIndex(b)
	if !ok {
		return 0, protocol.CodeInvalidLength
	}

	return i, nil
}
