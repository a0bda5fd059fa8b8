package query

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/larose/lynxsearch/search/index"
)

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// ConjunctionWeight
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// ConjunctionWeight matches the documents matched by every child, scored
// with the sum of their scores.
type ConjunctionWeight struct {
	BaseWeight

	weights []Weight
}

func NewConjunctionWeight(weights []Weight) *ConjunctionWeight {
	w := &ConjunctionWeight{weights: weights}
	w.BaseWeight = NewBaseWeight(w)
	return w
}

func (w *ConjunctionWeight) Scorer(segment *index.SegmentReader, boost float32) (Scorer, error) {
	scorers := make([]Scorer, 0, len(w.weights))

	for _, weight := range w.weights {
		scorer, err := weight.Scorer(segment, boost)
		if err != nil {
			return nil, err
		}

		if scorer.Doc() == index.Terminated {
			return EmptyScorer{}, nil
		}

		scorers = append(scorers, scorer)
	}

	if len(scorers) == 0 {
		return EmptyScorer{}, nil
	}

	return NewConjunctionScorer(scorers), nil
}

func (w *ConjunctionWeight) Explain(segment *index.SegmentReader, docId index.DocumentId) (*Explanation, error) {
	if len(w.weights) == 0 {
		return nil, notMatched(docId)
	}

	explanation := NewExplanation(0, fmt.Sprintf("sum of %d required clauses:", len(w.weights)))

	for _, weight := range w.weights {
		detail, err := weight.Explain(segment, docId)
		if err != nil {
			return nil, err
		}

		explanation.Value += detail.Value
		explanation.AddDetail(detail)
	}

	return explanation, nil
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// ConjunctionScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type ConjunctionScorer struct {
	docId index.DocumentId
	// sorted by size hint, the first one leads
	scorers []Scorer
}

func NewConjunctionScorer(scorers []Scorer) *ConjunctionScorer {
	slices.SortFunc(scorers, func(a, b Scorer) int {
		return cmp.Compare(a.SizeHint(), b.SizeHint())
	})

	c := &ConjunctionScorer{scorers: scorers}
	c.docId = c.align(scorers[0].Doc())
	return c
}

// align returns the first document >= candidate matched by every scorer,
// leaving all of them on it.
func (c *ConjunctionScorer) align(candidate index.DocumentId) index.DocumentId {
next:
	for candidate != index.Terminated {
		for _, scorer := range c.scorers {
			docId := scorer.Seek(candidate)
			if docId != candidate {
				candidate = docId
				continue next
			}
		}

		return candidate
	}

	return index.Terminated
}

func (c *ConjunctionScorer) Doc() index.DocumentId {
	return c.docId
}

func (c *ConjunctionScorer) Advance() index.DocumentId {
	if c.docId == index.Terminated {
		return index.Terminated
	}

	c.docId = c.align(c.scorers[0].Advance())
	return c.docId
}

func (c *ConjunctionScorer) Seek(target index.DocumentId) index.DocumentId {
	if c.docId >= target {
		return c.docId
	}

	c.docId = c.align(c.scorers[0].Seek(target))
	return c.docId
}

func (c *ConjunctionScorer) SizeHint() uint32 {
	return c.scorers[0].SizeHint()
}

func (c *ConjunctionScorer) Count(alive index.LivenessSet) uint32 {
	return CountAlive(c, alive)
}

func (c *ConjunctionScorer) CountIncludingDeleted() uint32 {
	return CountAll(c)
}

func (c *ConjunctionScorer) Score() float32 {
	score := float32(0)
	for _, scorer := range c.scorers {
		score += scorer.Score()
	}

	return score
}
