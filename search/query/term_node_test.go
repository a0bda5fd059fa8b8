package query

import (
	"strings"
	"testing"

	"github.com/larose/lynxsearch/search/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docIdsOf(pairs []docScorePair) []index.DocumentId {
	docIds := make([]index.DocumentId, len(pairs))
	for i, pair := range pairs {
		docIds[i] = pair.docId
	}

	return docIds
}

// expectedDocIds returns the ids of the bodies containing every word.
func expectedDocIds(bodies []string, words ...string) []index.DocumentId {
	docIds := make([]index.DocumentId, 0)

next:
	for i, body := range bodies {
		tokens := strings.Fields(body)
		for _, word := range words {
			found := false
			for _, token := range tokens {
				if token == word {
					found = true
					break
				}
			}
			if !found {
				continue next
			}
		}

		docIds = append(docIds, index.DocumentId(i))
	}

	return docIds
}

func TestTermWeight(t *testing.T) {
	directory, _ := writeSegments(t, []string{"alpha bravo", "bravo", "alpha alpha charlie", "delta"})
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	weight := compile(t, indexReader, termQuery("alpha"))

	pairs := collectAll(t, weight, segment)
	assert.Equal(t, []index.DocumentId{0, 2}, docIdsOf(pairs))
	assert.Greater(t, pairs[1].score, pairs[0].score)

	count, err := weight.Count(segment)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)

	missing := compile(t, indexReader, termQuery("zulu"))
	assert.Empty(t, collectAll(t, missing, segment))

	count, err = missing.Count(segment)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), count)

	missingField := compile(t, indexReader, &TermQuery{FieldName: "title", Term: []byte("alpha")})
	assert.Empty(t, collectAll(t, missingField, segment))
}

func TestTermWeightScore(t *testing.T) {
	directory, _ := writeSegments(t, []string{"alpha bravo", "bravo", "alpha alpha charlie", "delta"})
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	pairs := collectAll(t, compile(t, indexReader, termQuery("alpha")), segment)

	// 4 documents with 7 tokens, alpha in 2 of them
	idf := Idf(4, 2)
	norms := index.PrecomputeLengthNorms(float32(7) / float32(4))
	assert.InDelta(t, idf*index.Bm25TermFreqFactor(1, norms[2]), pairs[0].score, 1e-6)
	assert.InDelta(t, idf*index.Bm25TermFreqFactor(2, norms[3]), pairs[1].score, 1e-6)
}

func TestTermWeightCountWithDeletions(t *testing.T) {
	directory, writer := writeSegments(t, []string{"alpha", "alpha", "bravo", "alpha"})
	deleteIds(t, writer, 1)
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	weight := compile(t, indexReader, termQuery("alpha"))

	count, err := weight.Count(segment)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), count)

	// Iteration does not filter deleted documents
	assert.Len(t, collectAll(t, weight, segment), 3)
}

func TestTermWeightExplain(t *testing.T) {
	directory, _ := writeSegments(t, []string{"alpha bravo", "bravo", "alpha alpha charlie"})
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	weight := compile(t, indexReader, termQuery("alpha"))
	pairs := collectAll(t, weight, segment)

	explanation, err := weight.Explain(segment, 2)
	require.NoError(t, err)
	assert.Equal(t, pairs[1].score, explanation.Value)
	assert.Equal(t, "weight(body:alpha in 2), result of:", explanation.Description)
	require.Len(t, explanation.Details, 2)
	assert.Equal(t, Idf(3, 2), explanation.Details[0].Value)

	_, err = weight.Explain(segment, 1)
	assert.ErrorIs(t, err, ErrNotMatched)
}

func TestTermScorerBlockBounds(t *testing.T) {
	bodies := randomBodies(7, 1_000)
	directory, _ := writeSegments(t, bodies)
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	for _, term := range []string{"alpha", "golf", "tango"} {
		weight := compile(t, indexReader, termQuery(term)).(*TermWeight)

		scorer, err := weight.termScorer(segment, 1)
		require.NoError(t, err)
		require.NotNil(t, scorer)

		visited := make([]index.DocumentId, 0)
		for docId := scorer.Doc(); docId != index.Terminated; docId = scorer.Advance() {
			require.True(t, scorer.ShallowSeek(docId))
			assert.GreaterOrEqual(t, scorer.BlockMaxDoc(), docId)

			score := scorer.Score()
			assert.LessOrEqual(t, score, scorer.BlockMaxScore()+1e-6)
			assert.LessOrEqual(t, score, scorer.MaxScore())

			visited = append(visited, docId)
		}

		assert.Equal(t, expectedDocIds(bodies, term), visited, term)
		assert.False(t, scorer.ShallowSeek(index.Terminated))
	}
}

func TestTermScorerSeek(t *testing.T) {
	bodies := randomBodies(11, 1_000)
	directory, _ := writeSegments(t, bodies)
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	expected := expectedDocIds(bodies, "echo")
	require.Greater(t, len(expected), 300)

	scorer, err := compile(t, indexReader, termQuery("echo")).Scorer(segment, 1)
	require.NoError(t, err)

	for i := 0; i < len(expected); i += 97 {
		assert.Equal(t, expected[i], scorer.Seek(expected[i]))
		assert.Equal(t, expected[i], scorer.Seek(expected[i]))
	}

	assert.Equal(t, index.Terminated, scorer.Seek(expected[len(expected)-1]+1))
	assert.Equal(t, index.Terminated, scorer.Advance())
}

func TestTermWeightForEachPruning(t *testing.T) {
	bodies := randomBodies(3, 2_000)
	directory, _ := writeSegments(t, bodies)
	indexReader := openIndex(t, directory)
	segment := indexReader.SegmentReaders[0]

	weight := compile(t, indexReader, termQuery("kilo"))
	all := collectAll(t, weight, segment)
	require.NotEmpty(t, all)

	maxScore := float32(0)
	for _, pair := range all {
		maxScore = max(maxScore, pair.score)
	}

	// A constant threshold reports exactly the documents beating it
	threshold := maxScore * 0.8
	expected := make([]docScorePair, 0)
	for _, pair := range all {
		if pair.score > threshold {
			expected = append(expected, pair)
		}
	}

	pruned := make([]docScorePair, 0)
	err := weight.ForEachPruning(threshold, segment, func(docId index.DocumentId, score float32) float32 {
		pruned = append(pruned, docScorePair{docId, score})
		return threshold
	})
	require.NoError(t, err)

	assert.Equal(t, expected, pruned)
}
