package query

import "errors"

var (
	ErrEmptyBooleanQuery = errors.New("boolean query without clauses")
	ErrMixedClauses      = errors.New("boolean query clauses must be either all should or all must")
)

type MatchType byte

const (
	Should MatchType = iota
	Must
)

type BooleanClause struct {
	Type  MatchType
	Query Query
}

type BooleanQuery struct {
	Clauses []*BooleanClause
}

func (q *BooleanQuery) Weight(context *ExecutionContext) (Weight, error) {
	if len(q.Clauses) == 0 {
		return nil, ErrEmptyBooleanQuery
	}

	if len(q.Clauses) == 1 {
		return q.Clauses[0].Query.Weight(context)
	}

	weights := make([]Weight, 0, len(q.Clauses))

	allMust := true
	allShould := true

	for _, clause := range q.Clauses {
		allMust = allMust && clause.Type == Must
		allShould = allShould && clause.Type == Should

		weight, err := clause.Query.Weight(context)
		if err != nil {
			return nil, err
		}

		weights = append(weights, weight)
	}

	if allMust {
		return NewConjunctionWeight(weights), nil
	}

	if allShould {
		return NewDisjunctionWeight(weights), nil
	}

	return nil, ErrMixedClauses
}
