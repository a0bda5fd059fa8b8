package query

// Explanation describes how the score of one document was computed.
type Explanation struct {
	Value       float32        `json:"value"`
	Description string         `json:"description"`
	Details     []*Explanation `json:"details,omitempty"`
}

func NewExplanation(value float32, description string) *Explanation {
	return &Explanation{Value: value, Description: description}
}

func (e *Explanation) AddDetail(detail *Explanation) *Explanation {
	e.Details = append(e.Details, detail)
	return e
}
