package index

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
)

const termInfoSize = 20

type TermInfo struct {
	DocFreq              uint32
	FreqsFileStartOffset uint64
	FreqsFileEndOffset   uint64
}

func (info *TermInfo) encode(buffer []byte) []byte {
	buffer = binary.BigEndian.AppendUint32(buffer[:0], info.DocFreq)
	buffer = binary.BigEndian.AppendUint64(buffer, info.FreqsFileStartOffset)
	return binary.BigEndian.AppendUint64(buffer, info.FreqsFileEndOffset)
}

func decodeTermInfo(value []byte) (*TermInfo, error) {
	if len(value) != termInfoSize {
		return nil, fmt.Errorf("term info: expected %d bytes, got %d", termInfoSize, len(value))
	}

	return &TermInfo{
		DocFreq:              binary.BigEndian.Uint32(value),
		FreqsFileStartOffset: binary.BigEndian.Uint64(value[4:]),
		FreqsFileEndOffset:   binary.BigEndian.Uint64(value[12:]),
	}, nil
}

func dictionaryBasename(directory, segmentId, fieldName string) string {
	return filepath.Join(directory, "segment."+segmentId+"."+fieldName+".dictionary")
}

type DictionaryWriter struct {
	buffer   []byte
	kvWriter *KVStoreWriter
}

func newDictionaryWriter(directory, segmentId, fieldName string) (*DictionaryWriter, error) {
	writer, err := newKVStoreWriter(dictionaryBasename(directory, segmentId, fieldName))
	if err != nil {
		return nil, err
	}

	return &DictionaryWriter{buffer: make([]byte, 0, termInfoSize), kvWriter: writer}, nil
}

// Terms must be written in ascending order.
func (writer *DictionaryWriter) Write(term []byte, termInfo *TermInfo) error {
	writer.buffer = termInfo.encode(writer.buffer)
	return writer.kvWriter.Append(term, writer.buffer)
}

func (writer *DictionaryWriter) Close() error {
	return writer.kvWriter.Close()
}

type DictionaryReader struct {
	kvReader *KVStoreReader
}

func newDictionaryReader(directory, segmentId, fieldName string) (*DictionaryReader, error) {
	kvReader, err := newKVStoreReader(dictionaryBasename(directory, segmentId, fieldName))
	if err != nil {
		return nil, err
	}

	return &DictionaryReader{kvReader: kvReader}, nil
}

// Get returns nil, nil when the term is not in the dictionary.
func (reader *DictionaryReader) Get(term []byte) (*TermInfo, error) {
	value := reader.kvReader.Get(term)
	if value == nil {
		return nil, nil
	}

	termInfo, err := decodeTermInfo(value)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", term, err)
	}

	return termInfo, nil
}

func (reader *DictionaryReader) NumTerms() int {
	return reader.kvReader.Len()
}

func (reader *DictionaryReader) Close() error {
	return reader.kvReader.Close()
}
