package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/larose/lynxsearch/search/index"
	"github.com/larose/lynxsearch/search/query"
	"golang.org/x/sync/errgroup"
)

// Searcher runs queries over the segments of an index reader, several
// segments at a time.
type Searcher struct {
	concurrency int
	indexReader *index.IndexReader
	logger      *slog.Logger
	metrics     *Metrics
}

type Option func(*Searcher)

// WithConcurrency bounds the number of segments searched at the same time.
func WithConcurrency(concurrency int) Option {
	return func(s *Searcher) {
		if concurrency > 0 {
			s.concurrency = concurrency
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger.With("component", "searcher")
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(s *Searcher) {
		s.metrics = metrics
	}
}

func NewSearcher(indexReader *index.IndexReader, opts ...Option) *Searcher {
	s := &Searcher{
		concurrency: runtime.GOMAXPROCS(0),
		indexReader: indexReader,
		logger:      slog.Default().With("component", "searcher"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Search compiles q once and feeds every segment to collector. The first
// segment failure, or the end of ctx, stops scheduling the remaining
// segments; a segment already being searched runs to completion.
func (s *Searcher) Search(ctx context.Context, q query.Query, collector query.Collector) error {
	start := time.Now()

	err := s.search(ctx, q, collector)
	duration := time.Since(start)

	switch {
	case err == nil:
		s.metrics.observeQuery(outcomeSuccess, duration)
		s.logger.Info("query executed",
			"segments", len(s.indexReader.SegmentReaders),
			"duration", duration,
		)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		s.metrics.observeQuery(outcomeCanceled, duration)
		s.logger.Warn("query canceled", "error", err)
	default:
		s.metrics.observeQuery(outcomeError, duration)
		s.logger.Error("query failed", "error", err)
	}

	return err
}

func (s *Searcher) search(ctx context.Context, q query.Query, collector query.Collector) error {
	segmentReaders := s.indexReader.SegmentReaders

	weight, err := q.Weight(query.NewExecutionContext(segmentReaders))
	if err != nil {
		return fmt.Errorf("compile query: %w", err)
	}

	segmentCollectors := make([]query.SegmentCollector, len(segmentReaders))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i, segmentReader := range segmentReaders {
		if groupCtx.Err() != nil {
			break
		}

		segmentCollector := collector.ForSegment(segmentReader)
		segmentCollectors[i] = segmentCollector

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			s.logger.Debug("searching segment", "segment", segmentReader.IdString)
			s.metrics.observeSegment()

			if err := segmentCollector.Collect(weight); err != nil {
				return fmt.Errorf("segment %s: %w", segmentReader.IdString, err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return collector.Merge(segmentCollectors)
}

// Count returns the number of alive documents matched by q.
func (s *Searcher) Count(ctx context.Context, q query.Query) (uint64, error) {
	collector := query.NewCountCollector()

	if err := s.Search(ctx, q, collector); err != nil {
		return 0, err
	}

	return collector.Count(), nil
}

// Explain describes the score of the document with global id docId. It
// returns an error matching query.ErrNotMatched when q does not match it,
// or when the document is deleted.
func (s *Searcher) Explain(q query.Query, docId uint64) (*query.Explanation, error) {
	segmentReader, exists := s.indexReader.SegmentReader(index.ToSegmentId(docId))
	if !exists {
		return nil, fmt.Errorf("%w: unknown segment %d", query.ErrNotMatched, index.ToSegmentId(docId))
	}

	localDocId := index.ToLocalDocId(docId)
	if segmentReader.IsDeleted(localDocId) {
		return nil, fmt.Errorf("%w: doc %d is deleted", query.ErrNotMatched, docId)
	}

	weight, err := q.Weight(query.NewExecutionContext(s.indexReader.SegmentReaders))
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	return weight.Explain(segmentReader, localDocId)
}

func Search(q query.Query, indexReader *index.IndexReader, collector query.Collector) error {
	return NewSearcher(indexReader).Search(context.Background(), q, collector)
}
