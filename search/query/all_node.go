package query

import "github.com/larose/lynxsearch/search/index"

// AllQuery matches every document with a constant score.
type AllQuery struct {
}

func (q *AllQuery) Weight(context *ExecutionContext) (Weight, error) {
	return NewAllWeight(), nil
}

type AllWeight struct {
	BaseWeight
}

func NewAllWeight() *AllWeight {
	w := &AllWeight{}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

func (w *AllWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	return NewAllScorer(segment.MaxDoc(), boost), nil
}

func (w *AllWeight) Count(segment *index.SegmentReader) (uint32, error) {
	return segment.NumDocs(), nil
}

func (w *AllWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	return explainScorer(NewAllScorer(segment.MaxDoc(), 1), docId, "all documents")
}

// AllScorer iterates over every document id of a segment, deleted ones
// included.
type AllScorer struct {
	docId  index.DocumentId
	maxDoc uint32
	score  float32
}

func NewAllScorer(maxDoc uint32, score float32) *AllScorer {
	docId := index.DocumentId(0)
	if maxDoc == 0 {
		docId = index.Terminated
	}

	return &AllScorer{docId: docId, maxDoc: maxDoc, score: score}
}

func (a *AllScorer) Doc() index.DocumentId {
	return a.docId
}

func (a *AllScorer) Advance() index.DocumentId {
	if a.docId == index.Terminated {
		return index.Terminated
	}

	return a.Seek(a.docId + 1)
}

func (a *AllScorer) Seek(target index.DocumentId) index.DocumentId {
	if a.docId >= target {
		return a.docId
	}

	if uint32(target) >= a.maxDoc {
		a.docId = index.Terminated
	} else {
		a.docId = target
	}

	return a.docId
}

func (a *AllScorer) SizeHint() uint32 {
	if a.docId == index.Terminated {
		return 0
	}

	return a.maxDoc - uint32(a.docId)
}

func (a *AllScorer) Count(alive index.LivenessSet) uint32 {
	return CountAlive(a, alive)
}

func (a *AllScorer) CountIncludingDeleted() uint32 {
	count := a.SizeHint()
	a.docId = index.Terminated
	return count
}

func (a *AllScorer) Score() float32 {
	return a.score
}
