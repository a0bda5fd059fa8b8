package query

import "github.com/larose/lynxsearch/search/index"

// DocSet is a forward only cursor over the matching documents of one
// segment.
//
// Doc returns the current document, or index.Terminated once exhausted. A
// new DocSet is already positioned on its first match. Advance moves to the
// next match, with a strictly greater id, and keeps returning
// index.Terminated after the last one. A DocSet is single use.
type DocSet interface {
	Doc() index.DocumentId
	Advance() index.DocumentId
	// Seek moves to the first match >= target. It does nothing when the
	// current document is already >= target.
	Seek(target index.DocumentId) index.DocumentId
	// SizeHint is an estimate of the number of remaining matches.
	SizeHint() uint32
	// Count exhausts the DocSet and returns the number of visited documents
	// that are alive.
	Count(alive index.LivenessSet) uint32
	// CountIncludingDeleted exhausts the DocSet and returns the number of
	// visited documents.
	CountIncludingDeleted() uint32
}

// Scorer is a DocSet that scores its current document. Score must not be
// called once the cursor is at index.Terminated.
type Scorer interface {
	DocSet
	Score() float32
}

// BlockMaxScorer exposes upper bounds of its scores, globally and for the
// block of postings at a shallow position, so that pruning traversals can
// skip documents that cannot beat a threshold.
type BlockMaxScorer interface {
	Scorer
	// ShallowSeek moves the block position to the block that may contain
	// target, without moving the cursor. It returns false when no block has
	// documents >= target.
	ShallowSeek(target index.DocumentId) bool
	// BlockMaxDoc is the last document of the current block.
	BlockMaxDoc() index.DocumentId
	// BlockMaxScore bounds the score of every document of the current block.
	BlockMaxScore() float32
	// MaxScore bounds the score of every document.
	MaxScore() float32
}

// SeekByAdvance is the default Seek, advancing one document at a time.
func SeekByAdvance[D DocSet](docSet D, target index.DocumentId) index.DocumentId {
	docId := docSet.Doc()
	for docId < target {
		docId = docSet.Advance()
	}

	return docId
}

// CountAlive is the default Count, a full traversal filtered by alive.
func CountAlive[D DocSet](docSet D, alive index.LivenessSet) uint32 {
	count := uint32(0)
	for docId := docSet.Doc(); docId != index.Terminated; docId = docSet.Advance() {
		if alive.IsAlive(docId) {
			count++
		}
	}

	return count
}

// CountAll is the default CountIncludingDeleted, a full traversal.
func CountAll[D DocSet](docSet D) uint32 {
	count := uint32(0)
	for docId := docSet.Doc(); docId != index.Terminated; docId = docSet.Advance() {
		count++
	}

	return count
}
