package index

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
)

// Field lengths are stored on one byte. Lengths below exactFieldLengths map
// to themselves, larger lengths grow geometrically by ~1/16 per id and are
// rounded down.
const (
	FieldLengthSize   = 256
	exactFieldLengths = 40
)

// FieldLengthTable[id] is the smallest length quantized to id.
var FieldLengthTable = buildFieldLengthTable()

func buildFieldLengthTable() [FieldLengthSize]uint32 {
	var table [FieldLengthSize]uint32

	for id := range table {
		if id < exactFieldLengths {
			table[id] = uint32(id)
			continue
		}

		previous := uint64(table[id-1])
		next := previous + previous/16 + 1
		if next > math.MaxUint32 {
			next = math.MaxUint32
		}
		table[id] = uint32(next)
	}

	return table
}

func fieldLengthToId(length uint64) byte {
	// First id whose length is greater, minus one
	id := sort.Search(FieldLengthSize, func(i int) bool {
		return uint64(FieldLengthTable[i]) > length
	})

	return byte(id - 1)
}

func fieldLengthsFilename(directory, segmentId, fieldName string) string {
	return filepath.Join(directory, "segment."+segmentId+"."+fieldName+".lengths")
}

// FieldLengthReader gives the quantized length of one field for every
// document of a segment.
type FieldLengthReader struct {
	arrayStoreReader *ArrayStoreReader
}

func newFieldLengthReader(directory, segmentId, fieldName string) (*FieldLengthReader, error) {
	arrayStoreReader, err := newArrayStoreReader(fieldLengthsFilename(directory, segmentId, fieldName), 1)
	if err != nil {
		return nil, err
	}

	return &FieldLengthReader{arrayStoreReader: arrayStoreReader}, nil
}

func (reader *FieldLengthReader) DocCount() uint32 {
	return reader.arrayStoreReader.Len()
}

func (reader *FieldLengthReader) LengthId(docId DocumentId) byte {
	return reader.arrayStoreReader.Get(uint32(docId))[0]
}

func (reader *FieldLengthReader) Length(docId DocumentId) uint32 {
	return FieldLengthTable[reader.LengthId(docId)]
}

func (reader *FieldLengthReader) Close() error {
	return reader.arrayStoreReader.Close()
}

func writeFieldLengths(directory, segmentId, fieldName string, lengths []uint64) error {
	writer, err := newArrayStoreWriter(fieldLengthsFilename(directory, segmentId, fieldName))
	if err != nil {
		return err
	}

	buffer := make([]byte, len(lengths))
	for docId, length := range lengths {
		buffer[docId] = fieldLengthToId(length)
	}

	if err := writer.Append(buffer); err != nil {
		_ = writer.Close()
		return fmt.Errorf("field lengths %s: %w", fieldName, err)
	}

	return writer.Close()
}
