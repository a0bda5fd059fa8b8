package index

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/larose/lynxsearch/search/utils"
)

func storeBasename(directory, segmentId, fieldName string) string {
	return filepath.Join(directory, "segment."+segmentId+"."+fieldName+".store")
}

// StoreWriter keeps the raw value of every field, keyed by document id.
type StoreWriter struct {
	currentDocId DocumentId
	values       map[string]map[DocumentId][]byte
}

func newStoreWriter() *StoreWriter {
	return &StoreWriter{
		values: make(map[string]map[DocumentId][]byte, 10),
	}
}

func (writer *StoreWriter) Doc(docId DocumentId) {
	writer.currentDocId = docId
}

func (writer *StoreWriter) Field(fieldName string, value []byte) {
	fieldValues, exists := writer.values[fieldName]
	if !exists {
		fieldValues = make(map[DocumentId][]byte, 100)
		writer.values[fieldName] = fieldValues
	}

	fieldValues[writer.currentDocId] = value
}

func (writer *StoreWriter) EndField() {
}

func (writer *StoreWriter) Term(term []byte) {
}

func (writer *StoreWriter) Write(directory, segmentId string) error {
	for fieldName, values := range writer.values {
		kvStoreWriter, err := newKVStoreWriter(storeBasename(directory, segmentId, fieldName))
		if err != nil {
			return err
		}

		sortedDocIds := make([]DocumentId, 0, len(values))
		for docId := range values {
			sortedDocIds = append(sortedDocIds, docId)
		}
		slices.Sort(sortedDocIds)

		for _, docId := range sortedDocIds {
			if err := kvStoreWriter.Append(utils.Uint32ToBytes(uint32(docId)), values[docId]); err != nil {
				_ = kvStoreWriter.Close()
				return err
			}
		}

		if err := kvStoreWriter.Close(); err != nil {
			return err
		}
	}

	return nil
}

type FieldStoreReader struct {
	kvStoreReader *KVStoreReader
}

func (reader *FieldStoreReader) Value(docId DocumentId) []byte {
	return reader.kvStoreReader.Get(utils.Uint32ToBytes(uint32(docId)))
}

type StoreReader struct {
	directory         string
	mutex             sync.Mutex
	fieldStoreReaders map[string]*FieldStoreReader
	segmentId         string
}

func newStoreReader(directory, segmentId string) *StoreReader {
	return &StoreReader{
		directory:         directory,
		segmentId:         segmentId,
		fieldStoreReaders: make(map[string]*FieldStoreReader, 10),
	}
}

func (reader *StoreReader) GetFieldStoreReader(fieldName string) (*FieldStoreReader, error) {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	fieldStoreReader, exists := reader.fieldStoreReaders[fieldName]
	if exists {
		return fieldStoreReader, nil
	}

	kvStoreReader, err := newKVStoreReader(storeBasename(reader.directory, reader.segmentId, fieldName))
	if err != nil {
		return nil, err
	}

	fieldStoreReader = &FieldStoreReader{kvStoreReader: kvStoreReader}
	reader.fieldStoreReaders[fieldName] = fieldStoreReader

	return fieldStoreReader, nil
}

func (reader *StoreReader) Close() error {
	reader.mutex.Lock()
	defer reader.mutex.Unlock()

	var firstErr error
	for fieldName, fieldStoreReader := range reader.fieldStoreReaders {
		if err := fieldStoreReader.kvStoreReader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(reader.fieldStoreReaders, fieldName)
	}

	return firstErr
}
