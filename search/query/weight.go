package query

import "github.com/larose/lynxsearch/search/index"

// ScorerFactory builds the scorer of a compiled query over one segment.
// Every score of the returned scorer is multiplied by boost.
type ScorerFactory interface {
	Scorer(segment *index.SegmentReader, boost float32) (Scorer, error)
}

// Weight is a query compiled against an index. It is immutable and can be
// shared by goroutines searching different segments; each call builds its
// own short lived scorer.
type Weight interface {
	ScorerFactory

	// Explain returns an error matching ErrNotMatched when the query does not
	// match docId in segment.
	Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error)
	// Count returns the number of alive documents matched in segment.
	Count(segment *index.SegmentReader) (uint32, error)
	ForEach(segment *index.SegmentReader, callback func(docId index.DocumentId, score float32)) error
	ForEachNoScore(segment *index.SegmentReader, callback func(docId index.DocumentId)) error
	ForEachPruning(threshold float32, segment *index.SegmentReader, callback func(docId index.DocumentId, score float32) float32) error
}

// BaseWeight implements the traversal operations of a Weight on top of its
// scorer factory, with a boost of 1. Concrete weights embed it and override
// the operations they can do better:
//
//	w := &MyWeight{}
//	w.BaseWeight = NewBaseWeight(w)
//
// When the scorer cannot be built, the error is returned before any
// callback.
type BaseWeight struct {
	factory ScorerFactory
}

func NewBaseWeight(factory ScorerFactory) BaseWeight {
	return BaseWeight{factory: factory}
}

func (w BaseWeight) Count(segment *index.SegmentReader) (uint32, error) {
	scorer, err := w.factory.Scorer(segment, 1)
	if err != nil {
		return 0, err
	}

	if alive := segment.AliveBitset(); alive != nil {
		return scorer.Count(alive), nil
	}

	return scorer.CountIncludingDeleted(), nil
}

func (w BaseWeight) ForEach(segment *index.SegmentReader, callback func(docId index.DocumentId, score float32)) error {
	scorer, err := w.factory.Scorer(segment, 1)
	if err != nil {
		return err
	}

	ForEachScorer(scorer, callback)
	return nil
}

func (w BaseWeight) ForEachNoScore(segment *index.SegmentReader, callback func(docId index.DocumentId)) error {
	scorer, err := w.factory.Scorer(segment, 1)
	if err != nil {
		return err
	}

	ForEachDocSet[DocSet](scorer, callback)
	return nil
}

func (w BaseWeight) ForEachPruning(threshold float32, segment *index.SegmentReader, callback func(docId index.DocumentId, score float32) float32) error {
	scorer, err := w.factory.Scorer(segment, 1)
	if err != nil {
		return err
	}

	ForEachPruningScorer(scorer, threshold, callback)
	return nil
}

// explainScorer explains the score of docId as reported by scorer.
func explainScorer(scorer Scorer, docId index.DocumentId, description string) (*Explanation, error) {
	if docId == index.Terminated || scorer.Seek(docId) != docId {
		return nil, notMatched(docId)
	}

	return NewExplanation(scorer.Score(), description), nil
}
