package server

import "github.com/hupe1980/learner/protocol"

// Keyspace. Every key starts with the item byte, so key/value entries
// never collide with matrix data:
//
//	KEY_VALUE:  [item] name
//	otherwise:  [item] [attribute] reference
func keyValueKey(name []byte) []byte {
	key := make([]byte, 0, 1+len(name))
	key = append(key, byte(protocol.ItemKeyValue))

	return append(key, name...)
}

func refKey(item protocol.Item, attr protocol.Attribute, ref protocol.Reference) []byte {
	b, _ := ref.MarshalBinary() // the reference variants never fail to encode

	key := make([]byte, 0, 2+len(b))
	key = append(key, byte(item), byte(attr))

	return append(key, b...)
}

// matrixNameKey holds the name of a matrix.
func matrixNameKey(matrix int64) []byte {
	return refKey(protocol.ItemMatrix, protocol.AttrName, protocol.MatrixRef{Matrix: matrix})
}

// matrixIndexKey maps a matrix name to its index in the registry.
func matrixIndexKey(name []byte) []byte {
	return refKey(protocol.ItemMatrix, protocol.AttrIndex, protocol.NameRef{Name: name})
}

// vectorKey holds the encoded sparse vector of a row or column.
func vectorKey(item protocol.Item, matrix, index int64) []byte {
	if item == protocol.ItemColumn {
		return refKey(item, protocol.AttrValue, protocol.ColumnRef{Matrix: matrix, Column: index})
	}

	return refKey(protocol.ItemRow, protocol.AttrValue, protocol.RowRef{Matrix: matrix, Row: index})
}

// labelNameKey maps a row or column index to its name.
func labelNameKey(item protocol.Item, matrix, index int64) []byte {
	if item == protocol.ItemColumn {
		return refKey(item, protocol.AttrName, protocol.ColumnRef{Matrix: matrix, Column: index})
	}

	return refKey(protocol.ItemRow, protocol.AttrName, protocol.RowRef{Matrix: matrix, Row: index})
}

// labelIndexKey maps a row or column name to its index.
func labelIndexKey(item protocol.Item, matrix int64, name []byte) []byte {
	return refKey(item, protocol.AttrIndex, protocol.NameRef{Matrix: matrix, Name: name})
}
