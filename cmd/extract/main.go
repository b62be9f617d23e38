package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entityxtract/entityxtract/internal/config"
	"github.com/entityxtract/entityxtract/internal/convert"
	"github.com/entityxtract/entityxtract/internal/document"
	"github.com/entityxtract/entityxtract/internal/export"
	"github.com/entityxtract/entityxtract/internal/extractor"
	"github.com/entityxtract/entityxtract/internal/llm/openai"
	"github.com/entityxtract/entityxtract/internal/message"
	"github.com/entityxtract/entityxtract/internal/pricing"
	"github.com/entityxtract/entityxtract/internal/schema"
)

func main() {
	_ = godotenv.Load()

	var (
		filePath    = flag.String("file", "", "document to extract from (pdf, image, text, docx)")
		entityPath  = flag.String("entities", "", "entity declaration file (yaml)")
		configPath  = flag.String("config", "config.yaml", "config file (yaml)")
		outPath     = flag.String("out", "", "write the JSON result set here instead of stdout")
		xlsxPath    = flag.String("xlsx", "", "also write an XLSX workbook of the results")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "path", *configPath, "error", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if *filePath == "" || *entityPath == "" {
		logger.Error("usage: extract -file <document> -entities <entities.yaml> [-config config.yaml] [-xlsx out.xlsx]")
		os.Exit(2)
	}
	if cfg.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics listener failed", "addr", *metricsAddr, "error", err)
			}
		}()
	}

	entities, err := schema.LoadFile(*entityPath)
	if err != nil {
		logger.Error("load entities", "path", *entityPath, "error", err)
		os.Exit(2)
	}

	modes, err := message.ParseModes(cfg.InputModes)
	if err != nil {
		logger.Error("parse input modes", "modes", strings.Join(cfg.InputModes, ","), "error", err)
		os.Exit(2)
	}

	conv := convert.NewService(convert.Config{
		Pdftoppm:    cfg.Pdftoppm,
		DPI:         cfg.RasterDPI,
		MaxPages:    cfg.MaxPages,
		MaxImageDim: cfg.MaxImageDim,
	}, nil, logger)

	doc, err := document.New(*filePath, conv, logger)
	if err != nil {
		logger.Error("load document", "path", *filePath, "error", err)
		os.Exit(1)
	}

	provider := openai.NewClient(openai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}, logger)

	engine := extractor.NewEngine(provider, pricing.DefaultTable(), logger)

	// Budget scales with the work: every entity may retry with backoff.
	budget := time.Duration(len(entities)) * time.Duration(cfg.MaxRetries) * 2 * time.Minute
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	results, err := engine.Run(ctx, extractor.Job{
		Document: doc,
		Entities: entities,
		Config: extractor.Config{
			Model:            cfg.Model,
			Temperature:      cfg.Temperature,
			MaxRetries:       cfg.MaxRetries,
			BackoffBase:      cfg.BackoffBase,
			BackoffFactor:    cfg.BackoffFactor,
			ParallelRequests: cfg.ParallelRequests,
			InputModes:       modes,
			TrackCost:        cfg.TrackCost,
		},
	})
	if err != nil {
		logger.Error("run extraction", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.Error("encode results", "error", err)
		os.Exit(1)
	}
	if *outPath != "" {
		if err := os.WriteFile(*outPath, out, 0o644); err != nil {
			logger.Error("write results", "path", *outPath, "error", err)
			os.Exit(1)
		}
	} else {
		os.Stdout.Write(append(out, '\n'))
	}

	if *xlsxPath != "" {
		book, err := export.ResultsXLSX(results, logger)
		if err != nil {
			logger.Error("build workbook", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsxPath, book, 0o644); err != nil {
			logger.Error("write workbook", "path", *xlsxPath, "error", err)
			os.Exit(1)
		}
	}

	if !results.Success {
		logger.Warn("extraction finished with failures", "message", results.Message)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
