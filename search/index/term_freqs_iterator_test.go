package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestPostings(t *testing.T, docIds []uint32, termFreqs []uint64) *TermFreqsIterator {
	t.Helper()

	directory := t.TempDir()

	writer, err := newFieldFreqsWriter(directory, "1", "body")
	require.NoError(t, err)

	postings := &termPostings{docIds: docIds, termFreqs: termFreqs}
	lengths := make([]uint64, docIds[len(docIds)-1]+1)
	for i := range lengths {
		lengths[i] = uint64(i%7) + 1
	}

	termInfo := &TermInfo{}
	require.NoError(t, writeTermPostings(writer, postings, lengths, termInfo))
	require.NoError(t, writer.Close())

	reader, err := newFieldFreqsReader(directory, "1", "body")
	require.NoError(t, err)
	t.Cleanup(func() { reader.Close() })

	assert.Equal(t, uint32(len(docIds)), termInfo.DocFreq)

	it, err := reader.TermFreqsIterator(termInfo)
	require.NoError(t, err)

	return it
}

func everyThirdDoc(n int) ([]uint32, []uint64) {
	docIds := make([]uint32, n)
	termFreqs := make([]uint64, n)
	for i := range docIds {
		docIds[i] = uint32(i * 3)
		termFreqs[i] = uint64(i%5) + 1
	}

	return docIds, termFreqs
}

func TestTermFreqsIteratorAdvance(t *testing.T) {
	docIds, termFreqs := everyThirdDoc(300)
	it := writeTestPostings(t, docIds, termFreqs)

	visited := make([]uint32, 0, len(docIds))
	freqs := make([]uint64, 0, len(docIds))
	for docId := it.Doc(); docId != Terminated; docId = it.Advance() {
		visited = append(visited, uint32(docId))
		freqs = append(freqs, it.TermFreq())
	}

	assert.Equal(t, docIds, visited)
	assert.Equal(t, termFreqs, freqs)

	assert.Equal(t, Terminated, it.Doc())
	assert.Equal(t, Terminated, it.Advance())
	assert.Equal(t, Terminated, it.Seek(5))
}

func TestTermFreqsIteratorSeek(t *testing.T) {
	docIds, termFreqs := everyThirdDoc(300)
	it := writeTestPostings(t, docIds, termFreqs)

	assert.Equal(t, DocumentId(0), it.Seek(0))
	assert.Equal(t, DocumentId(3), it.Seek(1))
	// Already past the target
	assert.Equal(t, DocumentId(3), it.Seek(2))
	// Across block boundaries
	assert.Equal(t, DocumentId(600), it.Seek(598))
	assert.Equal(t, uint64(200%5+1), it.TermFreq())
	assert.Equal(t, DocumentId(603), it.Advance())
	assert.Equal(t, DocumentId(897), it.Seek(897))
	assert.Equal(t, Terminated, it.Seek(898))
	assert.Equal(t, Terminated, it.Advance())
}

func TestTermFreqsIteratorShallowSeek(t *testing.T) {
	docIds, termFreqs := everyThirdDoc(300)
	it := writeTestPostings(t, docIds, termFreqs)

	// First block holds docs 0..381
	require.True(t, it.ShallowSeek(0))
	assert.Equal(t, DocumentId(381), it.BlockLastDocId())

	// Third block, without moving the cursor
	require.True(t, it.ShallowSeek(800))
	assert.Equal(t, DocumentId(897), it.BlockLastDocId())
	maxFreq, _ := it.BlockMaxFreqMinLengthId()
	assert.Equal(t, uint64(5), maxFreq)
	assert.Equal(t, DocumentId(0), it.Doc())

	// The skip block went past the second block, Seek must not lose it
	assert.Equal(t, DocumentId(384), it.Seek(382))
	require.True(t, it.ShallowSeek(400))
	assert.Equal(t, DocumentId(765), it.BlockLastDocId())

	assert.False(t, it.ShallowSeek(898))
	assert.Equal(t, Terminated, it.BlockLastDocId())
	assert.Equal(t, DocumentId(384), it.Doc())

	// Advance still walks the remaining documents
	count := 0
	for docId := it.Doc(); docId != Terminated; docId = it.Advance() {
		count++
	}
	assert.Equal(t, 300-128, count)
}

func TestTermFreqsIteratorCorruptedFirstBlock(t *testing.T) {
	_, err := newTermFreqsIterator([]byte{1, 2, 3})
	assert.Error(t, err)

	header := blockHeader{numDocs: 2, firstDocId: 1, lastDocId: 5, length: blockHeaderSize + 1}
	_, err = newTermFreqsIterator(append(header.encode(nil), 0x80))
	assert.Error(t, err)
}

func TestTermFreqsIteratorEmpty(t *testing.T) {
	it, err := newTermFreqsIterator(nil)
	require.NoError(t, err)

	assert.Equal(t, Terminated, it.Doc())
	assert.Equal(t, Terminated, it.Advance())
	assert.False(t, it.ShallowSeek(0))
}

func TestFieldLengthToId(t *testing.T) {
	for length := uint64(0); length < exactFieldLengths; length++ {
		assert.Equal(t, byte(length), fieldLengthToId(length))
	}

	previous := byte(0)
	for length := uint64(0); length < 100_000; length += 7 {
		id := fieldLengthToId(length)
		assert.GreaterOrEqual(t, id, previous)
		assert.LessOrEqual(t, uint64(FieldLengthTable[id]), length)
		previous = id
	}

	assert.Equal(t, byte(FieldLengthSize-1), fieldLengthToId(1<<40))
}
