package query

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/larose/lynxsearch/search/index"
)

// Collector aggregates the matches of a query. It hands out one
// SegmentCollector per segment, each used by a single goroutine, and merges
// them once every segment has been searched.
type Collector interface {
	ForSegment(segment *index.SegmentReader) SegmentCollector
	// Merge receives the segment collectors in the order of the segments.
	Merge(segmentCollectors []SegmentCollector) error
}

type SegmentCollector interface {
	Collect(weight Weight) error
}

func unexpectedSegmentCollector(segmentCollector SegmentCollector) error {
	return fmt.Errorf("unexpected segment collector %T", segmentCollector)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TopNCollector
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type DocScore struct {
	DocId uint64
	Score float32
}

// compareDocScores orders by score descending, then doc id ascending.
func compareDocScores(a, b DocScore) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}

	return cmp.Compare(a.DocId, b.DocId)
}

// TopNCollector keeps the topN best scored alive documents.
type TopNCollector struct {
	results []DocScore
	topN    int
}

func NewTopNCollector(topN int) *TopNCollector {
	return &TopNCollector{topN: topN}
}

func (c *TopNCollector) ForSegment(segment *index.SegmentReader) SegmentCollector {
	return &topNSegmentCollector{
		minHeap: NewHeap(func(a, b DocScore) bool {
			return compareDocScores(a, b) > 0
		}),
		segment: segment,
		topN:    c.topN,
	}
}

func (c *TopNCollector) Merge(segmentCollectors []SegmentCollector) error {
	results := make([]DocScore, 0)

	for _, segmentCollector := range segmentCollectors {
		topNSegmentCollector, ok := segmentCollector.(*topNSegmentCollector)
		if !ok {
			return unexpectedSegmentCollector(segmentCollector)
		}

		results = append(results, topNSegmentCollector.minHeap.items...)
	}

	slices.SortFunc(results, compareDocScores)

	if len(results) > c.topN {
		results = results[:c.topN]
	}

	c.results = results
	return nil
}

// Get returns the merged results, best first.
func (c *TopNCollector) Get() []DocScore {
	return c.results
}

type topNSegmentCollector struct {
	// worst kept document on top
	minHeap *Heap[DocScore]
	segment *index.SegmentReader
	topN    int
}

func (c *topNSegmentCollector) threshold() float32 {
	if c.minHeap.Len() < c.topN {
		return float32(math.Inf(-1))
	}

	return c.minHeap.Top().Score
}

func (c *topNSegmentCollector) Collect(weight Weight) error {
	if c.topN <= 0 {
		return nil
	}

	alive := c.segment.AliveBitset()

	return weight.ForEachPruning(c.threshold(), c.segment, func(docId index.DocumentId, score float32) float32 {
		if alive != nil && !alive.IsAlive(docId) {
			return c.threshold()
		}

		docScore := DocScore{DocId: index.ToGlobalDocId(c.segment.Id, docId), Score: score}

		if c.minHeap.Len() < c.topN {
			c.minHeap.PushItem(docScore)
		} else if compareDocScores(docScore, c.minHeap.Top()) < 0 {
			c.minHeap.ReplaceTop(docScore)
		}

		return c.threshold()
	})
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// CountCollector
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// CountCollector counts the alive documents matched.
type CountCollector struct {
	count uint64
}

func NewCountCollector() *CountCollector {
	return &CountCollector{}
}

func (c *CountCollector) ForSegment(segment *index.SegmentReader) SegmentCollector {
	return &countSegmentCollector{segment: segment}
}

func (c *CountCollector) Merge(segmentCollectors []SegmentCollector) error {
	count := uint64(0)

	for _, segmentCollector := range segmentCollectors {
		countSegmentCollector, ok := segmentCollector.(*countSegmentCollector)
		if !ok {
			return unexpectedSegmentCollector(segmentCollector)
		}

		count += uint64(countSegmentCollector.count)
	}

	c.count = count
	return nil
}

func (c *CountCollector) Count() uint64 {
	return c.count
}

type countSegmentCollector struct {
	count   uint32
	segment *index.SegmentReader
}

func (c *countSegmentCollector) Collect(weight Weight) error {
	count, err := weight.Count(c.segment)
	if err != nil {
		return err
	}

	c.count = count
	return nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// DocSetCollector
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// DocSetCollector gathers the global ids of the alive documents matched,
// without scoring them.
type DocSetCollector struct {
	docIds *roaring64.Bitmap
}

func NewDocSetCollector() *DocSetCollector {
	return &DocSetCollector{docIds: roaring64.New()}
}

func (c *DocSetCollector) ForSegment(segment *index.SegmentReader) SegmentCollector {
	return &docSetSegmentCollector{docIds: roaring.New(), segment: segment}
}

func (c *DocSetCollector) Merge(segmentCollectors []SegmentCollector) error {
	docIds := roaring64.New()

	for _, segmentCollector := range segmentCollectors {
		docSetSegmentCollector, ok := segmentCollector.(*docSetSegmentCollector)
		if !ok {
			return unexpectedSegmentCollector(segmentCollector)
		}

		segmentId := docSetSegmentCollector.segment.Id
		it := docSetSegmentCollector.docIds.Iterator()
		for it.HasNext() {
			docIds.Add(index.ToGlobalDocId(segmentId, index.DocumentId(it.Next())))
		}
	}

	c.docIds = docIds
	return nil
}

func (c *DocSetCollector) DocIds() *roaring64.Bitmap {
	return c.docIds
}

type docSetSegmentCollector struct {
	docIds  *roaring.Bitmap
	segment *index.SegmentReader
}

func (c *docSetSegmentCollector) Collect(weight Weight) error {
	alive := c.segment.AliveBitset()

	return weight.ForEachNoScore(c.segment, func(docId index.DocumentId) {
		if alive == nil || alive.IsAlive(docId) {
			c.docIds.Add(uint32(docId))
		}
	})
}
