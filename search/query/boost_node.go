package query

import (
	"fmt"
	"math"

	"github.com/larose/lynxsearch/search/index"
)

// BoostQuery multiplies every score of Query by Boost.
type BoostQuery struct {
	Query Query
	Boost float32
}

func (q *BoostQuery) Weight(context *ExecutionContext) (Weight, error) {
	weight, err := q.Query.Weight(context)
	if err != nil {
		return nil, err
	}

	return NewBoostWeight(weight, q.Boost), nil
}

// BoostWeight delegates to the weight it wraps, keeping its specialized
// traversals. A boosted score is always the wrapped score times boost, so
// scorers, traversals and explanations agree on every document.
type BoostWeight struct {
	BaseWeight

	boost  float32
	weight Weight
}

func NewBoostWeight(weight Weight, boost float32) *BoostWeight {
	w := &BoostWeight{boost: boost, weight: weight}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

func (w *BoostWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	scorer, err := w.weight.Scorer(segment, boost)
	if err != nil {
		return nil, err
	}

	return newBoostScorer(scorer, w.boost), nil
}

func (w *BoostWeight) Count(segment *index.SegmentReader) (uint32, error) {
	return w.weight.Count(segment)
}

func (w *BoostWeight) ForEach(segment *index.SegmentReader, callback func(docId index.DocumentId, score float32)) error {
	return w.weight.ForEach(segment, func(docId index.DocumentId, score float32) {
		callback(docId, score*w.boost)
	})
}

func (w *BoostWeight) ForEachNoScore(segment *index.SegmentReader, callback func(docId index.DocumentId)) error {
	return w.weight.ForEachNoScore(segment, callback)
}

// ForEachPruning runs the wrapped traversal with the threshold scaled back
// to unboosted scores. Scores are compared again once boosted, so the
// callback sees exactly the documents beating the threshold.
func (w *BoostWeight) ForEachPruning(threshold float32, segment *index.SegmentReader, callback func(docId index.DocumentId, score float32) float32) error {
	if w.boost <= 0 {
		return w.BaseWeight.ForEachPruning(threshold, segment, callback)
	}

	return w.weight.ForEachPruning(unboostedThreshold(threshold, w.boost), segment, func(docId index.DocumentId, score float32) float32 {
		if boosted := score * w.boost; boosted > threshold {
			threshold = callback(docId, boosted)
		}

		return unboostedThreshold(threshold, w.boost)
	})
}

// unboostedThreshold returns a threshold t with float32(t*boost) <= threshold.
// Rounding is monotonic, so every score s with float32(s*boost) > threshold
// satisfies s > t. boost must be positive.
func unboostedThreshold(threshold float32, boost float32) float32 {
	t := threshold / boost
	for float32(t*boost) > threshold {
		t = math.Nextafter32(t, float32(math.Inf(-1)))
	}

	return t
}

func (w *BoostWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	explanation, err := w.weight.Explain(segment, docId)
	if err != nil {
		return nil, err
	}

	return NewExplanation(explanation.Value*w.boost, fmt.Sprintf("product of boost %g and:", w.boost)).
		AddDetail(explanation), nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// boostScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type boostScorer struct {
	Scorer

	boost float32
}

// newBoostScorer keeps the block upper bounds of scorer when boost is
// positive, since multiplying by it preserves the order of scores.
func newBoostScorer(scorer Scorer, boost float32) Scorer {
	if _, ok := scorer.(EmptyScorer); ok {
		return scorer
	}

	if blockMaxScorer, ok := scorer.(BlockMaxScorer); ok && boost > 0 {
		return &blockMaxBoostScorer{BlockMaxScorer: blockMaxScorer, boost: boost}
	}

	return &boostScorer{Scorer: scorer, boost: boost}
}

func (b *boostScorer) Score() float32 {
	return b.Scorer.Score() * b.boost
}

type blockMaxBoostScorer struct {
	BlockMaxScorer

	boost float32
}

func (b *blockMaxBoostScorer) Score() float32 {
	return b.BlockMaxScorer.Score() * b.boost
}

func (b *blockMaxBoostScorer) BlockMaxScore() float32 {
	return b.BlockMaxScorer.BlockMaxScore() * b.boost
}

func (b *blockMaxBoostScorer) MaxScore() float32 {
	return b.BlockMaxScorer.MaxScore() * b.boost
}
