package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/larose/lynxsearch/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	mode := flag.String("mode", "", "Mode to run: index or search")
	configPath := flag.String("config", "", "Path to a YAML config file")

	flag.Parse()

	cfg, err := Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := setupLogger(cfg.Logging)

	switch *mode {
	case "index":
		if err := _index(cfg, logger); err != nil {
			log.Fatal(err)
		}
	case "search":
		metrics := startMetrics(cfg.Metrics, logger)
		if err := _search(cfg, logger, metrics); err != nil {
			log.Fatal(err)
		}
	default:
		fmt.Println("Usage: go run . -mode=index|search [-config=config.yaml]")
		os.Exit(1)
	}
}

// startMetrics serves the searcher metrics on /metrics when enabled, and
// returns nil otherwise.
func startMetrics(cfg MetricsConfig, logger *slog.Logger) *search.Metrics {
	if !cfg.Enabled {
		return nil
	}

	registry := prometheus.NewRegistry()
	metrics := search.NewMetrics(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		logger.Info("metrics server started", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return metrics
}
