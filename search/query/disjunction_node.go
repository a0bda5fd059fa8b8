package query

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/larose/lynxsearch/search/index"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// DisjunctionWeight
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// DisjunctionWeight matches the documents matched by at least one child,
// scored with the sum of the scores of the children matching them.
type DisjunctionWeight struct {
	BaseWeight

	weights []Weight
}

func NewDisjunctionWeight(weights []Weight) *DisjunctionWeight {
	w := &DisjunctionWeight{weights: weights}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

// scorers returns the scorers of the children that match at least one
// document of segment.
func (w *DisjunctionWeight) scorers(segment *index.SegmentReader, boost float32) ([]Scorer, error) {
	scorers := make([]Scorer, 0, len(w.weights))

	for _, weight := range w.weights {
		scorer, err := weight.Scorer(segment, boost)
		if err != nil {
			return nil, err
		}

		if scorer.Doc() != index.Terminated {
			scorers = append(scorers, scorer)
		}
	}

	return scorers, nil
}

func (w *DisjunctionWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	scorers, err := w.scorers(segment, boost)
	if err != nil {
		return nil, err
	}

	switch len(scorers) {
	case 0:
		return EmptyScorer{}, nil
	case 1:
		return scorers[0], nil
	}

	return NewDisjunctionScorer(scorers), nil
}

// ForEachPruning runs block-max WAND when every child exposes block upper
// bounds, and the exhaustive traversal otherwise.
func (w *DisjunctionWeight) ForEachPruning(threshold float32, segment *index.SegmentReader, callback func(docId index.DocumentId, score float32) float32) error {
	scorers, err := w.scorers(segment, 1)
	if err != nil {
		return err
	}

	blockMaxScorers := make([]BlockMaxScorer, 0, len(scorers))
	for _, scorer := range scorers {
		blockMaxScorer, ok := scorer.(BlockMaxScorer)
		if !ok {
			ForEachPruningScorer[Scorer](NewDisjunctionScorer(scorers), threshold, callback)
			return nil
		}

		blockMaxScorers = append(blockMaxScorers, blockMaxScorer)
	}

	blockMaxWand(blockMaxScorers, threshold, callback)
	return nil
}

func (w *DisjunctionWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	explanation := NewExplanation(0, "sum of:")

	for _, weight := range w.weights {
		detail, err := weight.Explain(segment, docId)
		if errors.Is(err, ErrNotMatched) {
			continue
		}
		if err != nil {
			return nil, err
		}

		explanation.Value += detail.Value
		explanation.AddDetail(detail)
	}

	if len(explanation.Details) == 0 {
		return nil, notMatched(docId)
	}

	explanation.Description = fmt.Sprintf("sum of %d matching clauses out of %d:", len(explanation.Details), len(w.weights))
	return explanation, nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// DisjunctionScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type DisjunctionScorer struct {
	docId index.DocumentId
	// children not yet terminated
	scorers []Scorer
}

func NewDisjunctionScorer(scorers []Scorer) *DisjunctionScorer {
	d := &DisjunctionScorer{scorers: scorers}
	d.scorers = removeTerminated(d.scorers)
	d.docId = d.minDoc()
	return d
}

func removeElement[D DocSet](docSets []D, position int) []D {
	last := len(docSets) - 1
	if position != last {
		docSets[position] = docSets[last]
	}

	return docSets[:last]
}

func removeTerminated[D DocSet](docSets []D) []D {
	for i := 0; i < len(docSets); {
		if docSets[i].Doc() == index.Terminated {
			docSets = removeElement(docSets, i)
			continue
		}
		i++
	}

	return docSets
}

func (d *DisjunctionScorer) minDoc() index.DocumentId {
	docId := index.Terminated
	for _, scorer := range d.scorers {
		docId = min(docId, scorer.Doc())
	}

	return docId
}

func (d *DisjunctionScorer) Doc() index.DocumentId {
	return d.docId
}

func (d *DisjunctionScorer) Advance() index.DocumentId {
	if d.docId == index.Terminated {
		return index.Terminated
	}

	for _, scorer := range d.scorers {
		if scorer.Doc() == d.docId {
			scorer.Advance()
		}
	}

	d.scorers = removeTerminated(d.scorers)
	d.docId = d.minDoc()
	return d.docId
}

func (d *DisjunctionScorer) Seek(target index.DocumentId) index.DocumentId {
	if d.docId >= target {
		return d.docId
	}

	for _, scorer := range d.scorers {
		scorer.Seek(target)
	}

	d.scorers = removeTerminated(d.scorers)
	d.docId = d.minDoc()
	return d.docId
}

func (d *DisjunctionScorer) SizeHint() uint32 {
	sizeHint := uint64(0)
	for _, scorer := range d.scorers {
		sizeHint += uint64(scorer.SizeHint())
	}

	return uint32(min(sizeHint, math.MaxUint32))
}

func (d *DisjunctionScorer) Count(alive index.LivenessSet) uint32 {
	return CountAlive(d, alive)
}

func (d *DisjunctionScorer) CountIncludingDeleted() uint32 {
	return CountAll(d)
}

func (d *DisjunctionScorer) Score() float32 {
	score := float32(0)
	for _, scorer := range d.scorers {
		if scorer.Doc() == d.docId {
			score += scorer.Score()
		}
	}

	return score
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// Block-max WAND
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// blockMaxWand calls callback for every document matched by at least one
// scorer whose summed score is strictly greater than threshold, in
// increasing document order, and replaces threshold with the value callback
// returns. Documents whose upper bounds cannot beat the threshold are
// skipped without being scored.
//
// Reference: Shuai Ding and Torsten Suel. 2011. Faster top-k document
// retrieval using block-max indexes. SIGIR '11, 993-1002.
func blockMaxWand(scorers []BlockMaxScorer, threshold float32, callback func(docId index.DocumentId, score float32) float32) {
	scorers = removeTerminated(scorers)

	for len(scorers) > 0 {
		// Sort scorers by doc id
		slices.SortFunc(scorers, func(a, b BlockMaxScorer) int {
			return cmp.Compare(a.Doc(), b.Doc())
		})

		// The pivot is the first scorer whose document could beat the
		// threshold with the best scores of the scorers before it.
		upperBound := float32(0)
		pivot := -1
		for i, scorer := range scorers {
			upperBound += scorer.MaxScore()
			if upperBound > threshold {
				pivot = i
				break
			}
		}

		if pivot == -1 {
			return
		}

		pivotDocId := scorers[pivot].Doc()
		for pivot+1 < len(scorers) && scorers[pivot+1].Doc() == pivotDocId {
			pivot++
		}

		terminated := false
		for _, scorer := range scorers[:pivot+1] {
			if !scorer.ShallowSeek(pivotDocId) {
				scorer.Seek(index.Terminated)
				terminated = true
			}
		}

		if terminated {
			scorers = removeTerminated(scorers)
			continue
		}

		blockUpperBound := float32(0)
		for _, scorer := range scorers[:pivot+1] {
			blockUpperBound += scorer.BlockMaxScore()
		}

		// The current blocks cannot make it, jump past the first of them to
		// end, or to the next scorer when it comes first.
		if blockUpperBound <= threshold {
			nextDocId := index.Terminated
			for _, scorer := range scorers[:pivot+1] {
				if blockMaxDocId := scorer.BlockMaxDoc(); blockMaxDocId != index.Terminated {
					nextDocId = min(nextDocId, blockMaxDocId+1)
				}
			}
			if pivot+1 < len(scorers) {
				nextDocId = min(nextDocId, scorers[pivot+1].Doc())
			}

			leader := bestScorer(scorers[:pivot+1], index.Terminated)
			if scorers[leader].Seek(nextDocId) == index.Terminated {
				scorers = removeElement(scorers, leader)
			}
			continue
		}

		// Some scorers before the pivot are behind, move one of them
		if scorers[0].Doc() != pivotDocId {
			leader := bestScorer(scorers[:pivot], pivotDocId)
			if scorers[leader].Seek(pivotDocId) == index.Terminated {
				scorers = removeElement(scorers, leader)
			}
			continue
		}

		score := float32(0)
		for _, scorer := range scorers[:pivot+1] {
			score += scorer.Score()
		}

		if score > threshold {
			threshold = callback(pivotDocId, score)
		}

		for _, scorer := range scorers[:pivot+1] {
			scorer.Advance()
		}

		scorers = removeTerminated(scorers)
	}
}

// bestScorer returns the position of the scorer with the highest max score
// among the ones before docId.
func bestScorer(scorers []BlockMaxScorer, docId index.DocumentId) int {
	best := -1
	for i, scorer := range scorers {
		if scorer.Doc() >= docId {
			continue
		}

		if best == -1 || scorer.MaxScore() > scorers[best].MaxScore() {
			best = i
		}
	}

	return best
}
