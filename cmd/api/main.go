package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bigquerylib "cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-assistant/internal/agent"
	"github.com/dvloznov/finance-assistant/internal/api/handlers"
	"github.com/dvloznov/finance-assistant/internal/api/middleware"
	"github.com/dvloznov/finance-assistant/internal/assistant"
	"github.com/dvloznov/finance-assistant/internal/llm"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/router"
	"github.com/dvloznov/finance-assistant/internal/store"
	"github.com/dvloznov/finance-assistant/internal/store/bq"
	"github.com/dvloznov/finance-assistant/internal/store/inmemory"
)

func main() {
	var (
		port      = flag.String("port", "8080", "HTTP server port")
		model     = flag.String("model", os.Getenv("FA_MODEL"), "Gemini model name (or set FA_MODEL env)")
		backend   = flag.String("store", os.Getenv("FA_STORE"), "record store backend: memory or bigquery (or set FA_STORE env)")
		bqProject = flag.String("bq-project", os.Getenv("FA_BQ_PROJECT"), "BigQuery project for the bigquery backend")
		bqDataset = flag.String("bq-dataset", os.Getenv("FA_BQ_DATASET"), "BigQuery dataset for the bigquery backend")
	)
	flag.Parse()

	log := logger.New()
	ctx := context.Background()

	gen, err := llm.NewClient(ctx, *model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	var recordStore store.Store
	switch *backend {
	case "", "memory":
		recordStore = inmemory.New()
		log.Info().Msg("Using in-memory record store")
	case "bigquery":
		if *bqProject == "" || *bqDataset == "" {
			log.Fatal().Msg("--bq-project and --bq-dataset are required for the bigquery backend")
		}
		client, err := bigquerylib.NewClient(ctx, *bqProject)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer client.Close()
		recordStore = bq.New(client, *bqDataset)
		log.Info().Str("project", *bqProject).Str("dataset", *bqDataset).Msg("Using BigQuery record store")
	default:
		log.Fatal().Str("store", *backend).Msg("Unknown record store backend")
	}

	handler := handlers.NewAssistantHandler(
		agent.New(gen, recordStore, log),
		router.New(gen, recordStore, log),
		assistant.NewClassifier(gen),
		recordStore,
		log,
	)

	mux := http.NewServeMux()
	handler.Register(mux)

	// Middleware chain: recovery first, then logging, then CORS.
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logger(log)(h)
	h = middleware.Recovery(log)(h)

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	log.Info().Str("port", *port).Msg("Starting API server")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
