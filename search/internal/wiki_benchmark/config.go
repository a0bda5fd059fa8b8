package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Directory    string        `yaml:"directory"`
	ArticlesPath string        `yaml:"articlesPath"`
	Index        IndexConfig   `yaml:"index"`
	Search       SearchConfig  `yaml:"search"`
	Logging      LoggingConfig `yaml:"logging"`
	Metrics      MetricsConfig `yaml:"metrics"`
}

type IndexConfig struct {
	BatchSize        int `yaml:"batchSize"`
	NumberOfArticles int `yaml:"numberOfArticles"`
}

// SearchConfig describes the benchmarked queries. Each query is a list of
// body terms, run once as a disjunction and once as a conjunction.
type SearchConfig struct {
	Concurrency int        `yaml:"concurrency"`
	TopN        int        `yaml:"topN"`
	Repetitions int        `yaml:"repetitions"`
	Queries     [][]string `yaml:"queries"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads the YAML file at path, when not empty, over the defaults and
// then applies the LYNX_* environment variables.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Index.BatchSize <= 0 {
		return nil, fmt.Errorf("index.batchSize must be positive, got %d", cfg.Index.BatchSize)
	}
	if cfg.Search.TopN <= 0 {
		return nil, fmt.Errorf("search.topN must be positive, got %d", cfg.Search.TopN)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Directory:    "directory",
		ArticlesPath: "wiki-articles.jsonl",
		Index: IndexConfig{
			BatchSize:        100_000,
			NumberOfArticles: 1_000_000,
		},
		Search: SearchConfig{
			Concurrency: 0,
			TopN:        10,
			Repetitions: 10,
			Queries: [][]string{
				{"the"},
				{"griffith", "observatory"},
				{"bowel", "obstruction"},
				{"vicenza", "italy"},
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LYNX_DIRECTORY"); v != "" {
		cfg.Directory = v
	}
	if v := os.Getenv("LYNX_ARTICLES_PATH"); v != "" {
		cfg.ArticlesPath = v
	}
	if v := os.Getenv("LYNX_INDEX_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.BatchSize = n
		}
	}
	if v := os.Getenv("LYNX_INDEX_NUMBER_OF_ARTICLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Index.NumberOfArticles = n
		}
	}
	if v := os.Getenv("LYNX_SEARCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Concurrency = n
		}
	}
	if v := os.Getenv("LYNX_SEARCH_TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.TopN = n
		}
	}
	if v := os.Getenv("LYNX_SEARCH_QUERIES"); v != "" {
		// Queries are separated by ";" and their terms by spaces
		queries := make([][]string, 0)
		for _, q := range strings.Split(v, ";") {
			if terms := strings.Fields(q); len(terms) > 0 {
				queries = append(queries, terms)
			}
		}
		cfg.Search.Queries = queries
	}
	if v := os.Getenv("LYNX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LYNX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("LYNX_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("LYNX_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
		}
	}
}

func setupLogger(cfg LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
