package query

import (
	"fmt"

	"github.com/larose/lynxsearch/search/index"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermQuery
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// TermQuery matches the documents whose field contains term, scored with
// BM25.
type TermQuery struct {
	FieldName string
	Term      []byte
}

func (t *TermQuery) Weight(context *ExecutionContext) (Weight, error) {
	stats, err := context.FieldStats(t.FieldName)
	if err != nil {
		return nil, err
	}

	docFreq, err := context.DocFreq(t.FieldName, t.Term)
	if err != nil {
		return nil, err
	}

	averageFieldLength, err := context.AverageFieldLength(t.FieldName)
	if err != nil {
		return nil, err
	}

	norms, err := context.FieldNorms(t.FieldName)
	if err != nil {
		return nil, err
	}

	return newTermWeight(t.FieldName, t.Term, termStats{
		averageFieldLength: averageFieldLength,
		docCount:           uint64(stats.DocCount),
		docFreq:            docFreq,
		idf:                Idf(uint64(stats.DocCount), docFreq),
		norms:              norms,
	}), nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermWeight
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type termStats struct {
	averageFieldLength float32
	docCount           uint64
	docFreq            uint64
	idf                float32
	// norms[lengthId]
	norms []float32
}

type TermWeight struct {
	BaseWeight

	fieldName string
	term      []byte
	stats     termStats
}

func newTermWeight(fieldName string, term []byte, stats termStats) *TermWeight {
	w := &TermWeight{fieldName: fieldName, term: term, stats: stats}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

// termScorer returns nil when the segment does not have the term.
func (w *TermWeight) termScorer(segment *index.SegmentReader, boost float32) (*TermScorer, error) {
	termInfo, err := w.termInfo(segment)
	if err != nil || termInfo == nil {
		return nil, err
	}

	fieldFreqsReader, err := segment.FieldFreqsReader(w.fieldName)
	if err != nil {
		return nil, segmentAccessError(segment, "open freqs", err)
	}

	freqsIterator, err := fieldFreqsReader.TermFreqsIterator(termInfo)
	if err != nil {
		return nil, segmentAccessError(segment, "read postings", err)
	}

	fieldLengthReader, err := segment.FieldLengthReader(w.fieldName)
	if err != nil {
		return nil, segmentAccessError(segment, "open field lengths", err)
	}

	return newTermScorer(freqsIterator, fieldLengthReader, w.stats.norms, w.stats.idf*boost, termInfo.DocFreq), nil
}

func (w *TermWeight) termInfo(segment *index.SegmentReader) (*index.TermInfo, error) {
	termInfo, err := segment.TermInfo(w.fieldName, w.term)
	if index.IsFieldNotIndexed(err) {
		return nil, nil
	}
	if err != nil {
		return nil, segmentAccessError(segment, "term info", err)
	}

	return termInfo, nil
}

func (w *TermWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	scorer, err := w.termScorer(segment, boost)
	if err != nil {
		return nil, err
	}

	if scorer == nil {
		return EmptyScorer{}, nil
	}

	return scorer, nil
}

// Count reads the document frequency from the dictionary when nothing is
// deleted in the segment.
func (w *TermWeight) Count(segment *index.SegmentReader) (uint32, error) {
	if segment.AliveBitset() != nil {
		return w.BaseWeight.Count(segment)
	}

	termInfo, err := w.termInfo(segment)
	if err != nil || termInfo == nil {
		return 0, err
	}

	return termInfo.DocFreq, nil
}

// ForEachPruning skips the posting blocks whose best score cannot beat the
// threshold.
func (w *TermWeight) ForEachPruning(threshold float32, segment *index.SegmentReader, callback func(docId index.DocumentId, score float32) float32) error {
	scorer, err := w.termScorer(segment, 1)
	if err != nil || scorer == nil {
		return err
	}

	blockMaxWand([]BlockMaxScorer{scorer}, threshold, callback)
	return nil
}

func (w *TermWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	scorer, err := w.termScorer(segment, 1)
	if err != nil {
		return nil, err
	}

	if scorer == nil || docId == index.Terminated || scorer.Seek(docId) != docId {
		return nil, notMatched(docId)
	}

	termFreq := scorer.freqsIterator.TermFreq()
	lengthId := scorer.fieldLengthReader.LengthId(docId)

	idf := NewExplanation(w.stats.idf, "idf, computed as log(1 + (N - n + 0.5) / (n + 0.5)) from:").
		AddDetail(NewExplanation(float32(w.stats.docFreq), "n, number of documents containing term")).
		AddDetail(NewExplanation(float32(w.stats.docCount), "N, total number of documents with field"))

	tf := NewExplanation(index.Bm25TermFreqFactor(float32(termFreq), w.stats.norms[lengthId]), "tf, computed as freq * (k1 + 1) / (freq + k1 * (1 - b + b * dl / avgdl)) from:").
		AddDetail(NewExplanation(float32(termFreq), "freq, occurrences of term within document")).
		AddDetail(NewExplanation(index.Bm25K1, "k1, term saturation parameter")).
		AddDetail(NewExplanation(index.Bm25B, "b, length normalization parameter")).
		AddDetail(NewExplanation(float32(index.FieldLengthTable[lengthId]), "dl, length of field")).
		AddDetail(NewExplanation(w.stats.averageFieldLength, "avgdl, average length of field"))

	return NewExplanation(scorer.Score(), fmt.Sprintf("weight(%s:%s in %d), result of:", w.fieldName, w.term, docId)).
		AddDetail(idf).
		AddDetail(tf), nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type TermScorer struct {
	docFreq           uint32
	fieldLengthReader *index.FieldLengthReader
	freqsIterator     *index.TermFreqsIterator
	maxScore          float32
	// precomputedFieldLengthNorms[lengthId]
	precomputedFieldLengthNorms []float32
	// idf times boost
	weight float32
}

func newTermScorer(freqsIterator *index.TermFreqsIterator, fieldLengthReader *index.FieldLengthReader, precomputedFieldLengthNorms []float32, weight float32, docFreq uint32) *TermScorer {
	return &TermScorer{
		docFreq:                     docFreq,
		fieldLengthReader:           fieldLengthReader,
		freqsIterator:               freqsIterator,
		maxScore:                    weight * (index.Bm25K1 + 1),
		precomputedFieldLengthNorms: precomputedFieldLengthNorms,
		weight:                      weight,
	}
}

func (t *TermScorer) Doc() index.DocumentId {
	return t.freqsIterator.Doc()
}

func (t *TermScorer) Advance() index.DocumentId {
	return t.freqsIterator.Advance()
}

func (t *TermScorer) Seek(target index.DocumentId) index.DocumentId {
	return t.freqsIterator.Seek(target)
}

func (t *TermScorer) SizeHint() uint32 {
	return t.docFreq
}

func (t *TermScorer) Count(alive index.LivenessSet) uint32 {
	return CountAlive(t, alive)
}

func (t *TermScorer) CountIncludingDeleted() uint32 {
	return CountAll(t)
}

func (t *TermScorer) Score() float32 {
	lengthId := t.fieldLengthReader.LengthId(t.freqsIterator.Doc())
	return t.computeScore(t.freqsIterator.TermFreq(), lengthId)
}

func (t *TermScorer) computeScore(freq uint64, lengthId byte) float32 {
	lengthNorm := t.precomputedFieldLengthNorms[lengthId]
	return t.weight * index.Bm25TermFreqFactor(float32(freq), lengthNorm)
}

func (t *TermScorer) ShallowSeek(target index.DocumentId) bool {
	return t.freqsIterator.ShallowSeek(target)
}

func (t *TermScorer) BlockMaxDoc() index.DocumentId {
	return t.freqsIterator.BlockLastDocId()
}

// BlockMaxScore scores the highest frequency of the block with its shortest
// field length, which bounds every score of the block.
func (t *TermScorer) BlockMaxScore() float32 {
	maxFreq, minLengthId := t.freqsIterator.BlockMaxFreqMinLengthId()
	return t.computeScore(maxFreq, minLengthId)
}

func (t *TermScorer) MaxScore() float32 {
	return t.maxScore
}
