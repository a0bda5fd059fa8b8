package index

import (
	"fmt"
	"os"
)

// ArrayStoreWriter writes fixed size elements back to back; element i is
// found at i*elementValueSize.
type ArrayStoreWriter struct {
	file *os.File
}

func newArrayStoreWriter(filename string) (*ArrayStoreWriter, error) {
	file, err := createFile(filename)
	if err != nil {
		return nil, err
	}

	return &ArrayStoreWriter{
		file: file,
	}, nil
}

func (writer *ArrayStoreWriter) Append(value []byte) error {
	_, err := writer.file.Write(value)
	return err
}

func (writer *ArrayStoreWriter) Close() error {
	return writer.file.Close()
}

type ArrayStoreReader struct {
	mapped           *mappedFile
	elementValueSize uint32
}

func newArrayStoreReader(filename string, elementValueSize uint32) (*ArrayStoreReader, error) {
	mapped, err := openMappedFile(filename)
	if err != nil {
		return nil, err
	}

	if uint32(len(mapped.data))%elementValueSize != 0 {
		_ = mapped.Close()
		return nil, fmt.Errorf("array store %s: size %d is not a multiple of %d", filename, len(mapped.data), elementValueSize)
	}

	return &ArrayStoreReader{
		mapped:           mapped,
		elementValueSize: elementValueSize,
	}, nil
}

func (reader *ArrayStoreReader) Len() uint32 {
	return uint32(len(reader.mapped.data)) / reader.elementValueSize
}

func (reader *ArrayStoreReader) Get(position uint32) []byte {
	start := position * reader.elementValueSize
	return reader.mapped.data[start : start+reader.elementValueSize]
}

func (reader *ArrayStoreReader) Close() error {
	return reader.mapped.Close()
}
