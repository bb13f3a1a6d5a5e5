package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/async"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/classify"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/compare"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/export"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/extract"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/llm"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/llm/openai"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/llm/vertex"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/ocr"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/pipeline"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/repository"
)

// app owns every long-lived resource a command needs.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	proc     *pipeline.Processor
	runs     repository.RunRepository
	exporter *export.Service
	closers  []func()
}

func newApp(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	reasoner, closeReasoner, err := selectReasoner(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	if closeReasoner != nil {
		a.closers = append(a.closers, closeReasoner)
	}

	ocrOpts := []ocr.Option{}
	if cfg.OCR.CacheDir != "" {
		cache, err := ocr.OpenBadgerCache(cfg.OCR.CacheDir, cfg.OCR.CacheTTL)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := cache.Close(); err != nil {
				logger.Warn("ocr.cache.close_failed", "error", err)
			}
		})
		ocrOpts = append(ocrOpts, ocr.WithCache(cache))
	}
	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:    cfg.OCR.Pdftotext,
		MinTextChars: cfg.OCR.MinTextChars,
	}, logger, ocrOpts...)

	engine := compare.NewEngine(compare.Config{Reasoner: reasoner, Logger: logger})
	a.proc = pipeline.NewProcessor(logger, engine,
		pipeline.WithClassifier(classify.New(classify.WithMixedDetection(cfg.Classifier.DetectMixed))),
		pipeline.WithTextExtractor(extract.NewOCRAdapter(extractor, logger)),
	)

	runs, closeDB, err := openHistory(ctx, cfg.Database, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if closeDB != nil {
		a.closers = append(a.closers, closeDB)
	}
	a.runs = runs
	a.exporter = export.NewService(runs, logger)

	logger.Info("app.ready", "reasoner", engine.ReasonerName(), "history", cfg.Database.Driver,
		"text_cache", cfg.OCR.CacheDir != "")
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// record stores a finished request when history is enabled.
func (a *app) record(ctx context.Context, res *pipeline.Result, err error) {
	if a.runs == nil {
		return
	}
	run := pipeline.NewRun(res, err)
	if saveErr := a.runs.Save(ctx, &run); saveErr != nil {
		a.logger.Warn("app.history.save_failed", "req_id", run.RequestID, "error", saveErr)
	}
}

func (a *app) newQueue(handle async.ResultHandler) *async.ProcessorQueue {
	return async.NewProcessorQueue(a.proc, a.logger,
		async.WithWorkers(a.cfg.Queue.Workers),
		async.WithQueueSize(a.cfg.Queue.Size),
		async.WithProcessTimeout(a.cfg.Queue.ProcessTimeout),
		async.WithResultHandler(handle),
	)
}

// selectReasoner picks the reasoning collaborator once at startup. A nil
// reasoner means the deterministic fallback.
func selectReasoner(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Reasoner, func(), error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "auto" {
		provider = "none"
		if openai.KeyLooksValid(cfg.APIKey) {
			provider = "openai"
		}
	}

	switch provider {
	case "none", "":
		logger.Warn("llm.disabled", "reason", "no reasoning provider configured, using fallback comparison")
		return nil, nil, nil
	case "openai":
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, logger)
		return c, nil, nil
	case "vertex":
		c, err := vertex.NewClient(ctx, vertex.Config{
			ProjectID:   cfg.VertexProject,
			Region:      cfg.VertexRegion,
			Model:       cfg.VertexModel,
			Temperature: cfg.Temperature,
			MaxTokens:   int32(cfg.MaxTokens),
		}, logger)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "vertex client", err)
		}
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Warn("llm.vertex.close_failed", "error", err)
			}
		}, nil
	default:
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown llm provider %q", cfg.Provider), nil)
	}
}

// openHistory opens the configured run store. Driver "none" disables history.
func openHistory(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (repository.RunRepository, func(), error) {
	switch cfg.Driver {
	case "none", "":
		return nil, nil, nil
	case "sqlite":
		db, err := repository.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "open sqlite history", err)
		}
		return repository.NewSQLiteRunRepository(db, logger), func() { repository.Close(nil, db, logger) }, nil
	case "postgres":
		pool, err := repository.OpenPostgres(ctx, repository.Config{
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "open postgres history", err)
		}
		if err := repository.HealthCheck(ctx, pool, cfg.DialTimeout, logger); err != nil {
			pool.Close()
			return nil, nil, common.NewAppError(common.CodeConfig, "postgres health check", err)
		}
		return repository.NewPostgresRunRepository(pool, logger), func() { repository.Close(pool, nil, logger) }, nil
	default:
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown database driver %q", cfg.Driver), nil)
	}
}
