package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/larose/lynxsearch/search"
	"github.com/larose/lynxsearch/search/index"
	"github.com/larose/lynxsearch/search/query"
)

func buildQuery(terms []string, matchType query.MatchType) query.Query {
	clauses := make([]*query.BooleanClause, 0, len(terms))

	for _, term := range terms {
		clauses = append(clauses, &query.BooleanClause{
			Type:  matchType,
			Query: &query.TermQuery{FieldName: "body", Term: []byte(term)},
		})
	}

	return &query.BooleanQuery{Clauses: clauses}
}

func _search(cfg *Config, logger *slog.Logger, metrics *search.Metrics) (err error) {
	stopProfiler, err := startCpuProfiler("search.cpu.pprof")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stopProfiler())
	}()

	indexReader, err := index.NewIndexReader(cfg.Directory)
	if err != nil {
		return err
	}
	defer indexReader.Close()

	// Per query logs would dominate the timings
	searcher := search.NewSearcher(indexReader,
		search.WithConcurrency(cfg.Search.Concurrency),
		search.WithLogger(slog.New(slog.DiscardHandler)),
		search.WithMetrics(metrics),
	)

	ctx := context.Background()

	for _, terms := range cfg.Search.Queries {
		for _, matchType := range []query.MatchType{query.Should, query.Must} {
			q := buildQuery(terms, matchType)

			hits, err := searcher.Count(ctx, q)
			if err != nil {
				return err
			}

			best := time.Duration(math.MaxInt64)
			for range max(cfg.Search.Repetitions, 1) {
				start := time.Now()

				collector := query.NewTopNCollector(cfg.Search.TopN)
				if err := searcher.Search(ctx, q, collector); err != nil {
					return err
				}

				_ = collector.Get()

				best = min(best, time.Since(start))
			}

			matchTypeName := "should"
			if matchType == query.Must {
				matchTypeName = "must"
			}

			logger.Debug("query benchmarked", "terms", terms, "matchType", matchTypeName, "hits", hits)
			fmt.Printf("[%s] %s: %d us (%d hits)\n", strings.Join(terms, " "), matchTypeName, best.Microseconds(), hits)
		}
	}

	return nil
}
