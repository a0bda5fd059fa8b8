package query

import "github.com/larose/lynxsearch/search/index"

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Query
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// Query is the user facing description of a search. It is compiled once per
// search into a Weight, using the statistics of every segment.
type Query interface {
	Weight(context *ExecutionContext) (Weight, error)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Empty scorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// EmptyScorer matches nothing. It stands for a term or a field missing from
// a segment.
type EmptyScorer struct {
}

func (e EmptyScorer) Doc() index.DocumentId {
	return index.Terminated
}

func (e EmptyScorer) Advance() index.DocumentId {
	return index.Terminated
}

func (e EmptyScorer) Seek(target index.DocumentId) index.DocumentId {
	return index.Terminated
}

func (e EmptyScorer) SizeHint() uint32 {
	return 0
}

func (e EmptyScorer) Count(alive index.LivenessSet) uint32 {
	return 0
}

func (e EmptyScorer) CountIncludingDeleted() uint32 {
	return 0
}

func (e EmptyScorer) Score() float32 {
	return 0
}
