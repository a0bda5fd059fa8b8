package index

import "math"

type FieldType int

type DocumentId uint32

// Terminated is the position of a cursor with no more matches. It compares
// greater than every real document id.
const Terminated DocumentId = math.MaxUint32

const (
	TextFieldType FieldType = iota
	ByteFieldType
)

type Field struct {
	FieldType FieldType
	Name      string
	Value     []byte
}

type Document []Field
