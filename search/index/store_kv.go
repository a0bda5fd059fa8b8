package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

/*
Data file, one record per key in ascending key order:
  - key length (uint32)
  - value length (uint32)
  - key
  - value
Index file: record offsets in the data file (uint64 each)
*/
const kvRecordHeaderSize = 8

type KVStoreWriter struct {
	dataFile    *os.File
	dataWriter  *bufio.Writer
	indexFile   *os.File
	indexWriter *bufio.Writer
	lastKey     []byte
	offset      uint64
	records     int
}

func newKVStoreWriter(basename string) (*KVStoreWriter, error) {
	dataFile, err := createFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	indexFile, err := createFile(basename + ".index")
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	return &KVStoreWriter{
		dataFile:    dataFile,
		dataWriter:  bufio.NewWriter(dataFile),
		indexFile:   indexFile,
		indexWriter: bufio.NewWriter(indexFile),
	}, nil
}

// Append adds a record. Keys must be appended in strictly ascending order.
func (w *KVStoreWriter) Append(key []byte, values ...[]byte) error {
	if w.records > 0 && bytes.Compare(w.lastKey, key) >= 0 {
		return fmt.Errorf("kv store: key %x not greater than previous key %x", key, w.lastKey)
	}

	valueLength := 0
	for _, value := range values {
		valueLength += len(value)
	}

	record := make([]byte, 0, kvRecordHeaderSize+len(key)+valueLength)
	record = binary.BigEndian.AppendUint32(record, uint32(len(key)))
	record = binary.BigEndian.AppendUint32(record, uint32(valueLength))
	record = append(record, key...)
	for _, value := range values {
		record = append(record, value...)
	}

	if _, err := w.dataWriter.Write(record); err != nil {
		return err
	}

	if _, err := w.indexWriter.Write(binary.BigEndian.AppendUint64(nil, w.offset)); err != nil {
		return err
	}

	w.offset += uint64(len(record))
	w.lastKey = append(w.lastKey[:0], key...)
	w.records++

	return nil
}

func (w *KVStoreWriter) Close() error {
	if err := w.dataWriter.Flush(); err != nil {
		_ = w.dataFile.Close()
		_ = w.indexFile.Close()
		return err
	}

	if err := w.dataFile.Close(); err != nil {
		_ = w.indexFile.Close()
		return err
	}

	if err := w.indexWriter.Flush(); err != nil {
		_ = w.indexFile.Close()
		return err
	}

	return w.indexFile.Close()
}

type KVStoreReader struct {
	data  *mappedFile
	index *mappedFile
}

func newKVStoreReader(basename string) (*KVStoreReader, error) {
	data, err := openMappedFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	index, err := openMappedFile(basename + ".index")
	if err != nil {
		_ = data.Close()
		return nil, err
	}

	if len(index.data)%8 != 0 {
		_ = data.Close()
		_ = index.Close()
		return nil, fmt.Errorf("kv store %s: index size %d is not a multiple of 8", basename, len(index.data))
	}

	return &KVStoreReader{data: data, index: index}, nil
}

func (kv *KVStoreReader) Len() int {
	return len(kv.index.data) / 8
}

func (kv *KVStoreReader) record(i int) (key, value []byte) {
	offset := binary.BigEndian.Uint64(kv.index.data[i*8:])
	data := kv.data.data
	keyLength := uint64(binary.BigEndian.Uint32(data[offset:]))
	valueLength := uint64(binary.BigEndian.Uint32(data[offset+4:]))
	keyStart := offset + kvRecordHeaderSize
	return data[keyStart : keyStart+keyLength], data[keyStart+keyLength : keyStart+keyLength+valueLength]
}

// Get returns the value stored under key, or nil. The returned slice points
// into the mapping and is valid until Close.
func (kv *KVStoreReader) Get(key []byte) []byte {
	n := kv.Len()

	i := sort.Search(n, func(i int) bool {
		currentKey, _ := kv.record(i)
		return bytes.Compare(currentKey, key) >= 0
	})

	if i == n {
		return nil
	}

	currentKey, value := kv.record(i)
	if !bytes.Equal(currentKey, key) {
		return nil
	}

	return value
}

func (kv *KVStoreReader) Close() error {
	if err := kv.data.Close(); err != nil {
		_ = kv.index.Close()
		return err
	}

	return kv.index.Close()
}
