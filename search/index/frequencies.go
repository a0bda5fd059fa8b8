package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

/*
Block:
  - Header:
	- [0] num docs (byte)
	- [1] first doc id (uint32)
	- [5] last doc id (uint32)
	- [9] max term freq (uint64)
	- [17] min field length id (byte)
	- [18] length bytes, header included (uint32)
  - Doc ids block (uvarint deltas)
  - Term freq block (uvarint)
*/
const (
	blockHeaderSize = 22
	BlockSize       = 128
)

type blockHeader struct {
	numDocs     int
	firstDocId  DocumentId
	lastDocId   DocumentId
	maxFreq     uint64
	minLengthId byte
	length      uint32
}

func (header *blockHeader) encode(buffer []byte) []byte {
	buffer = append(buffer, byte(header.numDocs))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(header.firstDocId))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(header.lastDocId))
	buffer = binary.BigEndian.AppendUint64(buffer, header.maxFreq)
	buffer = append(buffer, header.minLengthId)
	return binary.BigEndian.AppendUint32(buffer, header.length)
}

// data starts at the header and runs to the end of the posting list
func decodeBlockHeader(data []byte) (blockHeader, error) {
	if len(data) < blockHeaderSize {
		return blockHeader{}, fmt.Errorf("block header: %d bytes left, need %d", len(data), blockHeaderSize)
	}

	header := blockHeader{
		numDocs:     int(data[0]),
		firstDocId:  DocumentId(binary.BigEndian.Uint32(data[1:])),
		lastDocId:   DocumentId(binary.BigEndian.Uint32(data[5:])),
		maxFreq:     binary.BigEndian.Uint64(data[9:]),
		minLengthId: data[17],
		length:      binary.BigEndian.Uint32(data[18:]),
	}

	switch {
	case header.numDocs == 0:
		return blockHeader{}, fmt.Errorf("block header: empty block")
	case header.firstDocId > header.lastDocId:
		return blockHeader{}, fmt.Errorf("block header: first doc %d after last doc %d", header.firstDocId, header.lastDocId)
	case header.length < blockHeaderSize || uint64(header.length) > uint64(len(data)):
		return blockHeader{}, fmt.Errorf("block header: length %d out of bounds %d", header.length, len(data))
	}

	return header, nil
}

func frequenciesFilename(directory, segment, fieldName string) string {
	return filepath.Join(directory, "segment."+segment+"."+fieldName+".frequencies")
}

type FieldFreqsWriter struct {
	buffer []byte
	file   *os.File
	offset int64
	writer *bufio.Writer
}

func newFieldFreqsWriter(directory, segment, fieldName string) (*FieldFreqsWriter, error) {
	file, err := createFile(frequenciesFilename(directory, segment, fieldName))
	if err != nil {
		return nil, err
	}

	return &FieldFreqsWriter{
		buffer: make([]byte, 0, BlockSize*4*2+blockHeaderSize),
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// WriteBlock writes at most BlockSize postings and returns the block's
// [start, end) offsets.
func (writer *FieldFreqsWriter) WriteBlock(docIds []uint32, termFreqs []uint64, minFieldLengthId byte) (uint64, uint64, error) {
	if len(docIds) == 0 || len(docIds) > BlockSize || len(docIds) != len(termFreqs) {
		return 0, 0, fmt.Errorf("invalid block of %d docs and %d freqs", len(docIds), len(termFreqs))
	}

	header := blockHeader{
		numDocs:     len(docIds),
		firstDocId:  DocumentId(docIds[0]),
		lastDocId:   DocumentId(docIds[len(docIds)-1]),
		minLengthId: minFieldLengthId,
	}

	body := writer.buffer[:0]

	previous := uint32(0)
	for i, docId := range docIds {
		if i > 0 && docId <= previous {
			return 0, 0, fmt.Errorf("doc ids not strictly increasing: %d after %d", docId, previous)
		}
		body = binary.AppendUvarint(body, uint64(docId-previous))
		previous = docId
	}

	for _, termFreq := range termFreqs {
		body = binary.AppendUvarint(body, termFreq)
		header.maxFreq = max(header.maxFreq, termFreq)
	}

	header.length = uint32(blockHeaderSize + len(body))
	writer.buffer = body

	headerBytes := header.encode(make([]byte, 0, blockHeaderSize))
	if _, err := writer.writer.Write(headerBytes); err != nil {
		return 0, 0, err
	}

	if _, err := writer.writer.Write(body); err != nil {
		return 0, 0, err
	}

	start := writer.offset
	writer.offset += int64(header.length)

	return uint64(start), uint64(writer.offset), nil
}

func (w *FieldFreqsWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		_ = w.file.Close()
		return err
	}

	return w.file.Close()
}

type FieldFreqsReader struct {
	fileReader *FileReader
}

func newFieldFreqsReader(directory, segment, fieldName string) (*FieldFreqsReader, error) {
	fileReader, err := newFileReader(frequenciesFilename(directory, segment, fieldName))
	if err != nil {
		return nil, err
	}

	return &FieldFreqsReader{
		fileReader: fileReader,
	}, nil
}

// TermFreqsIterator returns a cursor positioned on the first posting of the
// term. The first block is validated here so that a corrupted posting list
// is reported before iteration starts.
func (reader *FieldFreqsReader) TermFreqsIterator(termInfo *TermInfo) (*TermFreqsIterator, error) {
	data, err := reader.fileReader.Slice(termInfo.FreqsFileStartOffset, termInfo.FreqsFileEndOffset)
	if err != nil {
		return nil, err
	}

	return newTermFreqsIterator(data)
}

func (reader *FieldFreqsReader) Close() error {
	return reader.fileReader.Close()
}
