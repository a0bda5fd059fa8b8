package index

import (
	"encoding/binary"
	"fmt"
)

// TermFreqsIterator is a forward only cursor over the posting list of one
// term.
//
// It keeps two positions: the decoded block holding the current document,
// and a skip block, at or after the decoded one, that only has its header
// read. ShallowSeek moves the skip block so block upper bounds can be checked
// without decoding postings.
type TermFreqsIterator struct {
	data []byte
	doc  DocumentId

	blockOffset   int
	block         blockHeader
	blockPrevLast int64
	docIds        []DocumentId
	freqs         []uint64
	position      int

	skipOffset    int
	skip          blockHeader
	skipPrevLast  int64
	skipExhausted bool
}

func newTermFreqsIterator(data []byte) (*TermFreqsIterator, error) {
	it := &TermFreqsIterator{
		data:   data,
		doc:    Terminated,
		docIds: make([]DocumentId, 0, BlockSize),
		freqs:  make([]uint64, 0, BlockSize),
	}

	if len(data) == 0 {
		it.skipExhausted = true
		return it, nil
	}

	header, err := decodeBlockHeader(data)
	if err != nil {
		return nil, err
	}

	if err := it.loadBlock(0, header, -1); err != nil {
		return nil, err
	}

	return it, nil
}

func (it *TermFreqsIterator) loadBlock(offset int, header blockHeader, prevLast int64) error {
	body := it.data[offset+blockHeaderSize : offset+int(header.length)]

	it.docIds = it.docIds[:0]
	it.freqs = it.freqs[:0]

	docId := uint64(0)
	for i := 0; i < header.numDocs; i++ {
		delta, n := binary.Uvarint(body)
		if n <= 0 {
			return fmt.Errorf("block at %d: corrupted doc id %d", offset, i)
		}
		body = body[n:]
		docId += delta
		it.docIds = append(it.docIds, DocumentId(docId))
	}

	for i := 0; i < header.numDocs; i++ {
		freq, n := binary.Uvarint(body)
		if n <= 0 {
			return fmt.Errorf("block at %d: corrupted term freq %d", offset, i)
		}
		body = body[n:]
		it.freqs = append(it.freqs, freq)
	}

	if it.docIds[0] != header.firstDocId || it.docIds[header.numDocs-1] != header.lastDocId {
		return fmt.Errorf("block at %d: doc ids do not match header", offset)
	}

	it.blockOffset = offset
	it.block = header
	it.blockPrevLast = prevLast
	it.position = 0
	it.doc = it.docIds[0]

	if it.skipOffset <= offset {
		it.skipOffset = offset
		it.skip = header
		it.skipPrevLast = prevLast
		it.skipExhausted = false
	}

	return nil
}

func (it *TermFreqsIterator) mustLoadBlock(offset int, header blockHeader, prevLast int64) {
	if err := it.loadBlock(offset, header, prevLast); err != nil {
		panic(fmt.Errorf("corrupted posting list: %w", err))
	}
}

func (it *TermFreqsIterator) nextHeader(offset int, header blockHeader) (int, blockHeader, bool) {
	next := offset + int(header.length)
	if next >= len(it.data) {
		return 0, blockHeader{}, false
	}

	nextHeader, err := decodeBlockHeader(it.data[next:])
	if err != nil {
		panic(fmt.Errorf("corrupted posting list: %w", err))
	}

	return next, nextHeader, true
}

func (it *TermFreqsIterator) Doc() DocumentId {
	return it.doc
}

func (it *TermFreqsIterator) TermFreq() uint64 {
	return it.freqs[it.position]
}

func (it *TermFreqsIterator) Advance() DocumentId {
	if it.doc == Terminated {
		return Terminated
	}

	it.position++
	if it.position < it.block.numDocs {
		it.doc = it.docIds[it.position]
		return it.doc
	}

	next, header, ok := it.nextHeader(it.blockOffset, it.block)
	if !ok {
		it.terminate()
		return Terminated
	}

	it.mustLoadBlock(next, header, int64(it.block.lastDocId))
	return it.doc
}

// Seek positions the cursor on the first document >= target.
func (it *TermFreqsIterator) Seek(target DocumentId) DocumentId {
	if it.doc >= target {
		return it.doc
	}

	if target > it.block.lastDocId {
		if !it.ShallowSeek(target) {
			it.terminate()
			return Terminated
		}
		it.mustLoadBlock(it.skipOffset, it.skip, it.skipPrevLast)
	}

	for it.docIds[it.position] < target {
		it.position++
	}

	it.doc = it.docIds[it.position]
	return it.doc
}

// ShallowSeek moves the skip block to the block that may contain target,
// without decoding it. It returns false when no block has documents >=
// target.
func (it *TermFreqsIterator) ShallowSeek(target DocumentId) bool {
	if it.doc == Terminated {
		it.skipExhausted = true
		return false
	}

	t := int64(target)

	if t <= it.skipPrevLast {
		it.skipOffset, it.skip, it.skipPrevLast = it.blockOffset, it.block, it.blockPrevLast
	}

	for int64(it.skip.lastDocId) < t {
		next, header, ok := it.nextHeader(it.skipOffset, it.skip)
		if !ok {
			it.skipExhausted = true
			return false
		}

		it.skipPrevLast = int64(it.skip.lastDocId)
		it.skipOffset = next
		it.skip = header
	}

	it.skipExhausted = false
	return true
}

// BlockLastDocId is the last document of the skip block, or Terminated.
func (it *TermFreqsIterator) BlockLastDocId() DocumentId {
	if it.skipExhausted {
		return Terminated
	}

	return it.skip.lastDocId
}

// BlockMaxFreqMinLengthId describes the skip block; both are zero once the
// skip block is exhausted.
func (it *TermFreqsIterator) BlockMaxFreqMinLengthId() (uint64, byte) {
	if it.skipExhausted {
		return 0, 0
	}

	return it.skip.maxFreq, it.skip.minLengthId
}

func (it *TermFreqsIterator) terminate() {
	it.doc = Terminated
	it.skipExhausted = true
}
