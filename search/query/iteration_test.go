package query

import (
	"testing"

	"github.com/larose/lynxsearch/search/index"
	"github.com/stretchr/testify/assert"
)

func newTestScorer() *sliceScorer {
	return newSliceScorer([]index.DocumentId{3, 7, 9}, []float32{1.0, 2.0, 0.5})
}

func TestAdvanceIsStrictlyIncreasingAndSticky(t *testing.T) {
	scorer := newTestScorer()

	previous := scorer.Doc()
	assert.Equal(t, index.DocumentId(3), previous)

	for docId := scorer.Advance(); docId != index.Terminated; docId = scorer.Advance() {
		assert.Greater(t, docId, previous)
		previous = docId
	}

	assert.Equal(t, index.Terminated, scorer.Advance())
	assert.Equal(t, index.Terminated, scorer.Advance())
	assert.Equal(t, index.Terminated, scorer.Doc())
}

func TestForEachScorer(t *testing.T) {
	pairs := make([]docScorePair, 0)

	ForEachScorer(newTestScorer(), func(docId index.DocumentId, score float32) {
		pairs = append(pairs, docScorePair{docId, score})
	})

	assert.Equal(t, []docScorePair{{3, 1.0}, {7, 2.0}, {9, 0.5}}, pairs)
}

func TestForEachScorerThroughInterface(t *testing.T) {
	var scorer Scorer = newTestScorer()
	docIds := make([]index.DocumentId, 0)

	ForEachScorer(scorer, func(docId index.DocumentId, score float32) {
		docIds = append(docIds, docId)
	})

	assert.Equal(t, []index.DocumentId{3, 7, 9}, docIds)
}

func TestForEachPruningScorer(t *testing.T) {
	pairs := make([]docScorePair, 0)

	ForEachPruningScorer(newTestScorer(), 1.5, func(docId index.DocumentId, score float32) float32 {
		pairs = append(pairs, docScorePair{docId, score})
		return max(1.5, score)
	})

	assert.Equal(t, []docScorePair{{7, 2.0}}, pairs)
}

func TestForEachPruningScorerIsStrict(t *testing.T) {
	calls := 0

	ForEachPruningScorer(newTestScorer(), 2.0, func(docId index.DocumentId, score float32) float32 {
		calls++
		return 2.0
	})

	assert.Equal(t, 0, calls)
}

func TestForEachPruningScorerAcceptsLowerThreshold(t *testing.T) {
	docIds := make([]index.DocumentId, 0)

	ForEachPruningScorer(newTestScorer(), 1.5, func(docId index.DocumentId, score float32) float32 {
		docIds = append(docIds, docId)
		return 0
	})

	assert.Equal(t, []index.DocumentId{7, 9}, docIds)
}

func TestForEachDocSetNeverScores(t *testing.T) {
	scorer := newTestScorer()
	scorer.onScore = func() {
		panic("score computed")
	}

	docIds := make([]index.DocumentId, 0)
	assert.NotPanics(t, func() {
		ForEachDocSet(scorer, func(docId index.DocumentId) {
			docIds = append(docIds, docId)
		})
	})

	assert.Equal(t, []index.DocumentId{3, 7, 9}, docIds)
}

func TestCount(t *testing.T) {
	alive := deletedSet{7: true}

	assert.Equal(t, uint32(2), newTestScorer().Count(alive))
	assert.Equal(t, uint32(3), newTestScorer().CountIncludingDeleted())
}

func TestSeekByAdvance(t *testing.T) {
	scorer := newTestScorer()

	assert.Equal(t, index.DocumentId(3), scorer.Seek(0))
	assert.Equal(t, index.DocumentId(7), scorer.Seek(4))
	assert.Equal(t, index.DocumentId(7), scorer.Seek(7))
	assert.Equal(t, index.DocumentId(7), scorer.Seek(5))
	assert.Equal(t, index.Terminated, scorer.Seek(10))
}

func TestEmptyScorer(t *testing.T) {
	calls := 0
	ForEachScorer[Scorer](EmptyScorer{}, func(docId index.DocumentId, score float32) {
		calls++
	})

	assert.Equal(t, 0, calls)
	assert.Equal(t, index.Terminated, EmptyScorer{}.Seek(3))
	assert.Equal(t, uint32(0), EmptyScorer{}.CountIncludingDeleted())
}
