package query

import (
	"errors"
	"fmt"

	"github.com/larose/lynxsearch/search/index"
)

var (
	// ErrNotMatched is returned by Explain for a document the query does not
	// match.
	ErrNotMatched = errors.New("document not matched")
	// ErrSegmentAccess is matched by every SegmentAccessError.
	ErrSegmentAccess = errors.New("segment access")
)

// SegmentAccessError reports segment data that could not be read or
// decoded.
type SegmentAccessError struct {
	SegmentId uint32
	Op        string
	Err       error
}

func (e *SegmentAccessError) Error() string {
	return fmt.Sprintf("segment %d: %s: %v", e.SegmentId, e.Op, e.Err)
}

func (e *SegmentAccessError) Unwrap() error {
	return e.Err
}

func (e *SegmentAccessError) Is(target error) bool {
	return target == ErrSegmentAccess
}

func segmentAccessError(segment *index.SegmentReader, op string, err error) error {
	var accessErr *SegmentAccessError
	if errors.As(err, &accessErr) {
		return err
	}

	return &SegmentAccessError{SegmentId: segment.Id, Op: op, Err: err}
}

func notMatched(docId index.DocumentId) error {
	return fmt.Errorf("%w: doc %d", ErrNotMatched, docId)
}
