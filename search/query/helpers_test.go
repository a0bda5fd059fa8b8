package query

import (
	"fmt"
	"strings"
	"testing"

	"github.com/larose/lynxsearch/search/index"
	"github.com/larose/lynxsearch/search/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// sliceScorer matches a fixed list of documents.
type sliceScorer struct {
	docIds   []index.DocumentId
	scores   []float32
	position int
	onScore  func()
}

func newSliceScorer(docIds []index.DocumentId, scores []float32) *sliceScorer {
	return &sliceScorer{docIds: docIds, scores: scores}
}

func (s *sliceScorer) Doc() index.DocumentId {
	if s.position >= len(s.docIds) {
		return index.Terminated
	}

	return s.docIds[s.position]
}

func (s *sliceScorer) Advance() index.DocumentId {
	if s.position < len(s.docIds) {
		s.position++
	}

	return s.Doc()
}

func (s *sliceScorer) Seek(target index.DocumentId) index.DocumentId {
	return SeekByAdvance(s, target)
}

func (s *sliceScorer) SizeHint() uint32 {
	return uint32(len(s.docIds) - s.position)
}

func (s *sliceScorer) Count(alive index.LivenessSet) uint32 {
	return CountAlive(s, alive)
}

func (s *sliceScorer) CountIncludingDeleted() uint32 {
	return CountAll(s)
}

func (s *sliceScorer) Score() float32 {
	if s.onScore != nil {
		s.onScore()
	}

	return s.scores[s.position]
}

// sliceWeight builds sliceScorers, or fails with err.
type sliceWeight struct {
	BaseWeight

	docIds []index.DocumentId
	scores []float32
	err    error
}

func newSliceWeight(docIds []index.DocumentId, scores []float32) *sliceWeight {
	w := &sliceWeight{docIds: docIds, scores: scores}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

func (w *sliceWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	if w.err != nil {
		return nil, w.err
	}

	scores := make([]float32, len(w.scores))
	for i, score := range w.scores {
		scores[i] = score * boost
	}

	return newSliceScorer(w.docIds, scores), nil
}

func (w *sliceWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	scorer, err := w.Scorer(segment, 1)
	if err != nil {
		return nil, err
	}

	return explainScorer(scorer, docId, "slice")
}

type deletedSet map[index.DocumentId]bool

func (d deletedSet) IsAlive(docId index.DocumentId) bool {
	return !d[docId]
}

func idField(id uint64) index.Field {
	return index.Field{Name: "id", FieldType: index.ByteFieldType, Value: utils.Uint64ToBytes(id)}
}

// writeSegments writes one segment per batch of bodies. Documents get
// consecutive ids starting at 0, so in the first segment the local id of a
// document is its id.
func writeSegments(t *testing.T, batches ...[]string) (string, *index.IndexWriter) {
	t.Helper()

	directory := t.TempDir()
	writer := index.NewIndexWriter(directory)

	id := uint64(0)
	for _, bodies := range batches {
		docs := make([]index.Document, 0, len(bodies))
		for _, body := range bodies {
			docs = append(docs, index.Document{
				idField(id),
				{Name: "body", FieldType: index.TextFieldType, Value: []byte(body)},
			})
			id++
		}

		require.NoError(t, writer.AddDocuments(docs))
	}

	return directory, writer
}

func openIndex(t *testing.T, directory string) *index.IndexReader {
	t.Helper()

	indexReader, err := index.NewIndexReader(directory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = indexReader.Close() })

	return indexReader
}

func deleteIds(t *testing.T, writer *index.IndexWriter, ids ...uint64) {
	t.Helper()

	values := make([][]byte, 0, len(ids))
	for _, id := range ids {
		values = append(values, utils.Uint64ToBytes(id))
	}

	require.NoError(t, writer.DeleteDocuments("id", values))
}

var vocabulary = strings.Fields("alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima mike november oscar papa quebec romeo sierra tango")

// randomBodies draws bodies from a skewed vocabulary, so that the first
// words are frequent and the last ones rare.
func randomBodies(seed uint64, count int) []string {
	r := rand.New(rand.NewSource(seed))
	zipf := rand.NewZipf(r, 1.2, 1, uint64(len(vocabulary)-1))

	bodies := make([]string, count)
	for i := range bodies {
		length := 1 + r.Intn(60)
		words := make([]string, length)
		for j := range words {
			words[j] = vocabulary[zipf.Uint64()]
		}
		bodies[i] = strings.Join(words, " ")
	}

	return bodies
}

func termQuery(term string) *TermQuery {
	return &TermQuery{FieldName: "body", Term: []byte(term)}
}

func compile(t *testing.T, indexReader *index.IndexReader, q Query) Weight {
	t.Helper()

	weight, err := q.Weight(NewExecutionContext(indexReader.SegmentReaders))
	require.NoError(t, err)

	return weight
}

type docScorePair struct {
	docId index.DocumentId
	score float32
}

func collectAll(t *testing.T, weight Weight, segment *index.SegmentReader) []docScorePair {
	t.Helper()

	pairs := make([]docScorePair, 0)
	require.NoError(t, weight.ForEach(segment, func(docId index.DocumentId, score float32) {
		pairs = append(pairs, docScorePair{docId, score})
	}))

	return pairs
}

func (p docScorePair) String() string {
	return fmt.Sprintf("(%d, %g)", p.docId, p.score)
}
