package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"writeflow/internal/analysis"
	"writeflow/internal/chat"
	"writeflow/internal/config"
	"writeflow/internal/llm"
	"writeflow/internal/llmclient"
	"writeflow/internal/parse"
	"writeflow/internal/pipeline"
	"writeflow/internal/scrape"
	"writeflow/internal/search"
	"writeflow/internal/server"
	"writeflow/internal/server/handler"
	"writeflow/internal/session"
)

// Provider retries after transient failures: 3 more attempts with 2s, 4s, 8s
// waits between them.
const (
	llmMaxRetries = 3
	llmRetryBase  = 2 * time.Second
)

type App struct {
	server *server.Server
	llm    llmclient.Client
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	// Dependencies. The limiter sits innermost so every retry attempt waits
	// for a token.
	mws := []llm.Middleware{
		llm.WithLogging(logger),
		llm.Retry(llmMaxRetries, llmRetryBase),
	}
	if cfg.LLMRPS > 0 {
		mws = append(mws, llm.RateLimit(cfg.LLMRPS, cfg.LLMBurst))
	}
	client := llm.Wrap(llmclient.NewSolarClient(cfg.LLM), mws...)
	searchClient := search.NewClient(cfg.Search, logger)

	refiner := &pipeline.SectionRefiner{LLM: client}
	writer := &pipeline.SectionWriter{LLM: client, Search: searchClient, Log: logger}
	coherence := &pipeline.CoherenceRefiner{LLM: client}

	h := &handler.Handler{
		Orchestrator: &pipeline.Orchestrator{
			Refiner:   refiner,
			Writer:    writer,
			Coherence: coherence,
			Log:       logger,
		},
		Refiner:   refiner,
		Writer:    writer,
		Coherence: coherence,
		Assistant: &chat.Assistant{LLM: client},
		Analyzer:  &analysis.Analyzer{LLM: client, Log: logger},
		Parser:    parse.NewClient(cfg.Parse),
		Scraper:   scrape.NewClient(cfg.Scrape),
		Runs:      session.NewStore(),
		Log:       logger,
	}

	// Routing & Server
	srv := server.New(cfg.Port, server.NewMux(h))

	return &App{server: srv, llm: client}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.llm.Close(); err == nil {
		err = cerr
	}
	return err
}
