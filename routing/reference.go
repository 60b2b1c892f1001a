package routing

import (
	"github.com/hupe1980/learner/internal/hash"
	"github.com/hupe1980/learner/protocol"
)

// ReferenceOf classifies req by the logical target that decides its owner.
//
// Rules apply in order:
//   - MATRIX items, and NAME or INDEX attributes on any item, are
//     matrix-scoped (MatrixRef).
//   - ROW and CELL items follow their row (RowRef, CellRef).
//   - COLUMN items follow their column (ColumnRef).
//   - KEY_VALUE items follow their name (NameRef).
func ReferenceOf(req *protocol.Request) (protocol.Reference, error) {
	if req.Matrix < 0 {
		return nil, ErrIndexOutOfRange
	}

	switch {
	case req.Item == protocol.ItemMatrix,
		req.Attribute == protocol.AttrIndex,
		req.Attribute == protocol.AttrName:
		return protocol.MatrixRef{Matrix: req.Matrix}, nil
	case req.Item == protocol.ItemRow:
		if req.Row < 0 {
			return nil, ErrIndexOutOfRange
		}

		return protocol.RowRef{Matrix: req.Matrix, Row: req.Row}, nil
	case req.Item == protocol.ItemCell:
		if req.Row < 0 {
			return nil, ErrIndexOutOfRange
		}

		return protocol.CellRef{Matrix: req.Matrix, Row: req.Row, Column: req.Column}, nil
	case req.Item == protocol.ItemColumn:
		if req.Column < 0 {
			return nil, ErrIndexOutOfRange
		}

		return protocol.ColumnRef{Matrix: req.Matrix, Column: req.Column}, nil
	case req.Item == protocol.ItemKeyValue:
		if len(req.Name) == 0 {
			return nil, ErrNameMissing
		}

		return protocol.NameRef{Name: req.Name}, nil
	default:
		return nil, ErrUnknownOperation
	}
}

// Slot returns the unreduced pool position of ref. Matrix, row and column
// indices are non-negative once ReferenceOf accepted them.
func Slot(ref protocol.Reference) uint64 {
	switch r := ref.(type) {
	case protocol.MatrixRef:
		return uint64(r.Matrix) //nolint:gosec // non-negative
	case protocol.RowRef:
		return uint64(r.Matrix) + uint64(r.Row) //nolint:gosec // non-negative
	case protocol.CellRef:
		return uint64(r.Matrix) + uint64(r.Row) //nolint:gosec // non-negative
	case protocol.ColumnRef:
		return uint64(r.Matrix) + uint64(r.Column) //nolint:gosec // non-negative
	case protocol.NameRef:
		return hash.Bernstein(r.Name)
	default:
		return 0
	}
}
