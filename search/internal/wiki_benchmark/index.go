package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/larose/lynxsearch/search/index"
)

type Article struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

type ArticleIterator struct {
	file   *os.File
	reader *bufio.Reader
	logger *slog.Logger
}

func newArticleIterator(filePath string, logger *slog.Logger) (*ArticleIterator, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	return &ArticleIterator{
		file:   file,
		reader: bufio.NewReader(file),
		logger: logger,
	}, nil
}

// NextBatch reads up to maxItems articles, one JSON object per line. Lines
// that do not parse are skipped. An empty batch means the file is exhausted.
func (it *ArticleIterator) NextBatch(maxItems int) ([]Article, error) {
	var batch []Article

	for len(batch) < maxItems {
		lineBytes, err := it.reader.ReadBytes('\n')
		eof := errors.Is(err, io.EOF)
		if err != nil && !eof {
			return nil, err
		}

		if len(lineBytes) > 0 {
			var article Article
			if err := json.Unmarshal(lineBytes, &article); err != nil {
				it.logger.Warn("skipping article", "error", err)
			} else {
				batch = append(batch, article)
			}
		}

		if eof {
			break
		}
	}

	return batch, nil
}

func (it *ArticleIterator) Close() error {
	return it.file.Close()
}

func convertArticleToDocument(article Article) index.Document {
	return index.Document{
		index.Field{
			FieldType: index.ByteFieldType,
			Name:      "url",
			Value:     []byte(article.URL),
		},
		index.Field{
			FieldType: index.TextFieldType,
			Name:      "title",
			Value:     []byte(article.Title),
		},
		index.Field{
			FieldType: index.TextFieldType,
			Name:      "body",
			Value:     []byte(article.Body),
		},
	}
}

func _index(cfg *Config, logger *slog.Logger) (err error) {
	stopProfiler, err := startCpuProfiler("index.cpu.pprof")
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, stopProfiler())
	}()

	if err := os.RemoveAll(cfg.Directory); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Directory, 0700); err != nil {
		return err
	}

	indexWriter := index.NewIndexWriter(cfg.Directory)

	iterator, err := newArticleIterator(cfg.ArticlesPath, logger)
	if err != nil {
		return err
	}
	defer iterator.Close()

	totalProcessed := 0
	docs := make([]index.Document, 0, cfg.Index.BatchSize)

	for {
		logger.Info("indexing", "totalProcessed", totalProcessed)

		remaining := cfg.Index.NumberOfArticles - totalProcessed
		if remaining <= 0 {
			break
		}

		articles, err := iterator.NextBatch(min(cfg.Index.BatchSize, remaining))
		if err != nil {
			return err
		}

		if len(articles) == 0 {
			break
		}

		for _, article := range articles {
			docs = append(docs, convertArticleToDocument(article))
		}

		totalProcessed += len(articles)

		if err := indexWriter.AddDocuments(docs); err != nil {
			return fmt.Errorf("add documents: %w", err)
		}
		docs = docs[:0]
	}

	if totalProcessed != cfg.Index.NumberOfArticles {
		return fmt.Errorf("expected %d articles, but processed %d", cfg.Index.NumberOfArticles, totalProcessed)
	}

	return nil
}
