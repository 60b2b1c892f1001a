package protocol

import "fmt"

// Operation is the verb of a request.
type Operation int64

const (
	OpGet Operation = iota
	OpSet
	OpDelete
)

var operationNames = [...]string{"GET", "SET", "DELETE"}

func (o Operation) String() string {
	if o >= 0 && int(o) < len(operationNames) {
		return operationNames[o]
	}

	return fmt.Sprintf("Operation(%d)", int64(o))
}

// Item is the kind of object a request addresses.
type Item int64

const (
	ItemKeyValue Item = iota
	ItemMatrix
	ItemRow
	ItemColumn
	ItemCell
)

var itemNames = [...]string{"KEY_VALUE", "MATRIX", "ROW", "COLUMN", "CELL"}

func (i Item) String() string {
	if i >= 0 && int(i) < len(itemNames) {
		return itemNames[i]
	}

	return fmt.Sprintf("Item(%d)", int64(i))
}

// Attribute selects which aspect of an item a request reads or writes.
type Attribute int64

const (
	AttrValue Attribute = iota
	AttrName
	AttrIndex
)

var attributeNames = [...]string{"VALUE", "NAME", "INDEX"}

func (a Attribute) String() string {
	if a >= 0 && int(a) < len(attributeNames) {
		return attributeNames[a]
	}

	return fmt.Sprintf("Attribute(%d)", int64(a))
}
