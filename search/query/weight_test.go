package query

import (
	"errors"
	"testing"

	"github.com/larose/lynxsearch/search/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenDocsSegment(t *testing.T, deletedIds ...uint64) *index.SegmentReader {
	t.Helper()

	bodies := make([]string, 10)
	for i := range bodies {
		bodies[i] = "alpha"
	}

	directory, writer := writeSegments(t, bodies)
	if len(deletedIds) > 0 {
		deleteIds(t, writer, deletedIds...)
	}

	return openIndex(t, directory).SegmentReaders[0]
}

func newTestWeight() *sliceWeight {
	return newSliceWeight([]index.DocumentId{3, 7, 9}, []float32{1.0, 2.0, 0.5})
}

func TestBaseWeightCount(t *testing.T) {
	count, err := newTestWeight().Count(tenDocsSegment(t))
	require.NoError(t, err)
	assert.Equal(t, uint32(3), count)

	count, err = newTestWeight().Count(tenDocsSegment(t, 7))
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)
}

func TestBaseWeightForEach(t *testing.T) {
	pairs := collectAll(t, newTestWeight(), tenDocsSegment(t))

	assert.Equal(t, []docScorePair{{3, 1.0}, {7, 2.0}, {9, 0.5}}, pairs)
}

func TestBaseWeightForEachDoesNotFilterDeleted(t *testing.T) {
	pairs := collectAll(t, newTestWeight(), tenDocsSegment(t, 7))

	assert.Len(t, pairs, 3)
}

func TestBaseWeightForEachNoScore(t *testing.T) {
	weight := newTestWeight()
	segment := tenDocsSegment(t)

	docIds := make([]index.DocumentId, 0)
	err := weight.ForEachNoScore(segment, func(docId index.DocumentId) {
		docIds = append(docIds, docId)
	})
	require.NoError(t, err)

	assert.Equal(t, []index.DocumentId{3, 7, 9}, docIds)
}

func TestBaseWeightForEachNoScoreNeverScores(t *testing.T) {
	segment := tenDocsSegment(t)
	scored := false

	weight := &noScoreWeight{}
	weight.BaseWeight = NewBaseWeight(weight)
	weight.onScore = func() { scored = true }

	calls := 0
	require.NoError(t, weight.ForEachNoScore(segment, func(docId index.DocumentId) {
		calls++
	}))

	assert.Equal(t, 3, calls)
	assert.False(t, scored)
}

type noScoreWeight struct {
	BaseWeight

	onScore func()
}

func (w *noScoreWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	scorer := newTestScorer()
	scorer.onScore = w.onScore
	return scorer, nil
}

func (w *noScoreWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	return nil, notMatched(docId)
}

func TestBaseWeightForEachPruning(t *testing.T) {
	pairs := make([]docScorePair, 0)

	err := newTestWeight().ForEachPruning(1.5, tenDocsSegment(t), func(docId index.DocumentId, score float32) float32 {
		pairs = append(pairs, docScorePair{docId, score})
		return max(1.5, score)
	})
	require.NoError(t, err)

	assert.Equal(t, []docScorePair{{7, 2.0}}, pairs)
}

func TestBaseWeightScorerFailure(t *testing.T) {
	segment := tenDocsSegment(t)
	weight := newTestWeight()
	weight.err = &SegmentAccessError{SegmentId: segment.Id, Op: "read postings", Err: errors.New("truncated")}

	calls := 0

	err := weight.ForEach(segment, func(docId index.DocumentId, score float32) {
		calls++
	})
	assert.ErrorIs(t, err, ErrSegmentAccess)

	err = weight.ForEachNoScore(segment, func(docId index.DocumentId) {
		calls++
	})
	assert.ErrorIs(t, err, ErrSegmentAccess)

	err = weight.ForEachPruning(0, segment, func(docId index.DocumentId, score float32) float32 {
		calls++
		return 0
	})
	assert.ErrorIs(t, err, ErrSegmentAccess)

	_, err = weight.Count(segment)
	assert.ErrorIs(t, err, ErrSegmentAccess)

	assert.Equal(t, 0, calls)
}

func TestExplainNotMatched(t *testing.T) {
	segment := tenDocsSegment(t)

	explanation, err := newTestWeight().Explain(segment, 4)
	assert.ErrorIs(t, err, ErrNotMatched)
	assert.Nil(t, explanation)

	explanation, err = newTestWeight().Explain(segment, index.Terminated)
	assert.ErrorIs(t, err, ErrNotMatched)
	assert.Nil(t, explanation)

	explanation, err = newTestWeight().Explain(segment, 7)
	require.NoError(t, err)
	assert.Equal(t, float32(2.0), explanation.Value)
}

func TestSegmentAccessError(t *testing.T) {
	cause := errors.New("truncated")
	err := error(&SegmentAccessError{SegmentId: 12, Op: "read postings", Err: cause})

	assert.ErrorIs(t, err, ErrSegmentAccess)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotMatched)
	assert.Equal(t, "segment 12: read postings: truncated", err.Error())
}
