package query

import (
	"math"

	"github.com/larose/lynxsearch/search/index"
)

// ExecutionContext gathers the statistics a query is compiled with. They are
// computed over every segment, deleted documents included, so that a
// document gets the same score whatever segment it lives in. Values are
// memoized; a context is used by one compilation at a time.
type ExecutionContext struct {
	segmentReaders []*index.SegmentReader

	// fieldStats[fieldName]
	fieldStats map[string]index.FieldStats

	// fieldNorms[fieldName][lengthId]
	fieldNorms map[string][]float32

	// docFreqs[fieldName][term]
	docFreqs map[string]map[string]uint64
}

func NewExecutionContext(segmentReaders []*index.SegmentReader) *ExecutionContext {
	return &ExecutionContext{
		segmentReaders: segmentReaders,
		fieldStats:     make(map[string]index.FieldStats),
		fieldNorms:     make(map[string][]float32),
		docFreqs:       make(map[string]map[string]uint64),
	}
}

func (c *ExecutionContext) SegmentReaders() []*index.SegmentReader {
	return c.segmentReaders
}

// FieldStats sums the statistics of fieldName over the segments that index
// it.
func (c *ExecutionContext) FieldStats(fieldName string) (index.FieldStats, error) {
	if stats, exists := c.fieldStats[fieldName]; exists {
		return stats, nil
	}

	total := index.FieldStats{}
	for _, segmentReader := range c.segmentReaders {
		stats, err := segmentReader.FieldStats(fieldName)
		if index.IsFieldNotIndexed(err) {
			continue
		}
		if err != nil {
			return index.FieldStats{}, segmentAccessError(segmentReader, "field stats", err)
		}

		total.DocCount += stats.DocCount
		total.SumTermFreq += stats.SumTermFreq
	}

	c.fieldStats[fieldName] = total
	return total, nil
}

func (c *ExecutionContext) AverageFieldLength(fieldName string) (float32, error) {
	stats, err := c.FieldStats(fieldName)
	if err != nil {
		return 0, err
	}

	if stats.DocCount == 0 {
		return 0, nil
	}

	return float32(stats.SumTermFreq) / float32(stats.DocCount), nil
}

// FieldNorms returns the BM25 length normalization of fieldName indexed by
// field length id.
func (c *ExecutionContext) FieldNorms(fieldName string) ([]float32, error) {
	if norms, exists := c.fieldNorms[fieldName]; exists {
		return norms, nil
	}

	averageFieldLength, err := c.AverageFieldLength(fieldName)
	if err != nil {
		return nil, err
	}

	norms := index.PrecomputeLengthNorms(averageFieldLength)
	c.fieldNorms[fieldName] = norms
	return norms, nil
}

// DocFreq is the number of documents containing term in fieldName.
func (c *ExecutionContext) DocFreq(fieldName string, term []byte) (uint64, error) {
	fieldDocFreqs, exists := c.docFreqs[fieldName]
	if !exists {
		fieldDocFreqs = make(map[string]uint64)
		c.docFreqs[fieldName] = fieldDocFreqs
	}

	if docFreq, exists := fieldDocFreqs[string(term)]; exists {
		return docFreq, nil
	}

	docFreq := uint64(0)
	for _, segmentReader := range c.segmentReaders {
		termInfo, err := segmentReader.TermInfo(fieldName, term)
		if index.IsFieldNotIndexed(err) {
			continue
		}
		if err != nil {
			return 0, segmentAccessError(segmentReader, "term info", err)
		}

		if termInfo != nil {
			docFreq += uint64(termInfo.DocFreq)
		}
	}

	fieldDocFreqs[string(term)] = docFreq
	return docFreq, nil
}

// TermIdf is the BM25 inverse document frequency of term in fieldName.
func (c *ExecutionContext) TermIdf(fieldName string, term []byte) (float32, error) {
	stats, err := c.FieldStats(fieldName)
	if err != nil {
		return 0, err
	}

	docFreq, err := c.DocFreq(fieldName, term)
	if err != nil {
		return 0, err
	}

	return Idf(uint64(stats.DocCount), docFreq), nil
}

func Idf(docCount, docFreq uint64) float32 {
	return float32(math.Log(float64(1 + (float32(docCount)-float32(docFreq)+0.5)/(float32(docFreq)+0.5))))
}
