package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/async"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/export"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/ingest"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/pipeline"
)

var (
	poFlag      = &cli.StringFlag{Name: "po", Usage: "purchase order file", Required: true}
	invoiceFlag = &cli.StringFlag{Name: "invoice", Usage: "invoice file", Required: true}
	xlsxFlag    = &cli.StringFlag{Name: "xlsx", Usage: "write an XLSX report to this path"}
	saveFlag    = &cli.BoolFlag{Name: "save", Usage: "store the run in the history database"}
	dirFlag     = &cli.StringFlag{Name: "dir", Usage: "directory of <name>.po.<ext> / <name>.invoice.<ext> pairs", Required: true}
)

// withApp loads configuration, builds the app and tears it down afterwards.
func withApp(run func(ctx context.Context, c *cli.Context, a *app) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		logger := slog.Default()
		cfg, err := common.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, c, a)
	}
}

func compareTextCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare-text",
		Usage: "compare two plain text documents",
		Flags: []cli.Flag{poFlag, invoiceFlag, xlsxFlag, saveFlag},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			po, err := os.ReadFile(c.String("po"))
			if err != nil {
				return fmt.Errorf("read PO: %w", err)
			}
			inv, err := os.ReadFile(c.String("invoice"))
			if err != nil {
				return fmt.Errorf("read Invoice: %w", err)
			}
			res, cmpErr := a.proc.CompareText(ctx, string(po), string(inv))
			return a.finish(ctx, c, "text", res, cmpErr)
		}),
	}
}

func compareFilesCommand() *cli.Command {
	return &cli.Command{
		Name:    "compare-pdfs",
		Aliases: []string{"compare-files"},
		Usage:   "extract and compare a PO file and an Invoice file (.pdf or .txt)",
		Flags:   []cli.Flag{poFlag, invoiceFlag, xlsxFlag, saveFlag},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			res, cmpErr := a.proc.CompareFiles(ctx, c.String("po"), c.String("invoice"))
			return a.finish(ctx, c, "files", res, cmpErr)
		}),
	}
}

// finish prints the response, then optionally saves and exports the run.
func (a *app) finish(ctx context.Context, c *cli.Context, name string, res *pipeline.Result, cmpErr error) error {
	if c.Bool("save") {
		a.record(ctx, res, cmpErr)
	}
	if out := c.String("xlsx"); out != "" {
		if err := a.writeXLSX(out, []export.Outcome{{Name: name, Result: res, Err: cmpErr}}); err != nil {
			return err
		}
	}
	if err := printJSON(pipeline.BuildResponse(res, cmpErr)); err != nil {
		return err
	}
	if cmpErr != nil {
		return cli.Exit("", 2)
	}
	return nil
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "compare every PO/Invoice pair found under a directory",
		Flags: []cli.Flag{
			dirFlag,
			xlsxFlag,
			&cli.IntFlag{Name: "workers", Usage: "worker pool size (default from config)"},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			if n := c.Int("workers"); n > 0 {
				a.cfg.Queue.Workers = n
			}
			pairs, orphans, stats, err := ingest.FindPairs(c.String("dir"), true)
			if err != nil {
				return err
			}
			for _, o := range orphans {
				a.logger.Warn("batch.orphan", "path", o)
			}
			a.logger.Info("batch.scan.ok", "pairs", stats.Paired, "orphans", stats.Orphans, "scanned", stats.Scanned)

			var (
				mu       sync.Mutex
				outcomes = map[string]export.Outcome{}
			)
			q := a.newQueue(func(jobCtx context.Context, job async.Job, res *pipeline.Result, err error) {
				a.record(jobCtx, res, err)
				mu.Lock()
				outcomes[job.ID] = export.Outcome{Name: job.POPath, Result: res, Err: err}
				mu.Unlock()
			})

			ids := make([]string, 0, len(pairs))
			for _, p := range pairs {
				job := async.Job{ID: uuid.NewString(), POPath: p.POPath, InvoicePath: p.InvoicePath}
				if err := q.Enqueue(ctx, job); err != nil {
					return err
				}
				ids = append(ids, job.ID)
			}
			q.Shutdown(ctx)

			mu.Lock()
			defer mu.Unlock()
			ordered := make([]export.Outcome, 0, len(ids))
			responses := make([]pipeline.Response, 0, len(ids))
			failed := 0
			for i, id := range ids {
				o, ok := outcomes[id]
				if !ok {
					continue
				}
				o.Name = pairs[i].Name
				ordered = append(ordered, o)
				responses = append(responses, pipeline.BuildResponse(o.Result, o.Err))
				if o.Err != nil {
					failed++
				}
			}
			if out := c.String("xlsx"); out != "" {
				if err := a.writeXLSX(out, ordered); err != nil {
					return err
				}
			}
			a.logger.Info("batch.done", "pairs", len(ids), "completed", len(ordered), "failed", failed)
			return printJSON(responses)
		}),
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch an inbox directory and compare each pair once both files arrive",
		Flags: []cli.Flag{
			dirFlag,
			&cli.DurationFlag{Name: "debounce", Usage: "wait for writes to settle", Value: 2 * time.Second},
			&cli.BoolFlag{Name: "initial-scan", Usage: "also compare pairs already in the directory", Value: true},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       []string{c.String("dir")},
				InitialScan: c.Bool("initial-scan"),
				Debounce:    c.Duration("debounce"),
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}

			var printMu sync.Mutex
			q := a.newQueue(func(jobCtx context.Context, _ async.Job, res *pipeline.Result, err error) {
				a.record(jobCtx, res, err)
				printMu.Lock()
				defer printMu.Unlock()
				if pErr := printJSON(pipeline.BuildResponse(res, err)); pErr != nil {
					a.logger.Error("watch.print_failed", "error", pErr)
				}
			})
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Queue.ProcessTimeout)
				defer cancel()
				q.Shutdown(shutdownCtx)
			}()

			tracker := ingest.NewPairTracker()
			a.logger.Info("watch.started", "dir", c.String("dir"))
			for {
				select {
				case <-ctx.Done():
					a.logger.Info("watch.stopping")
					return nil
				case path, ok := <-events:
					if !ok {
						return nil
					}
					pair, complete := tracker.Observe(path)
					if !complete {
						continue
					}
					job := async.Job{ID: uuid.NewString(), POPath: pair.POPath, InvoicePath: pair.InvoicePath}
					if err := q.Enqueue(ctx, job); err != nil {
						return err
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watch.error", "error", err)
				}
			}
		}),
	}
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list stored comparison runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
			xlsxFlag,
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			if a.runs == nil {
				return common.NewAppError(common.CodeConfig, "run history is disabled (database.driver=none)", nil)
			}
			if out := c.String("xlsx"); out != "" {
				b, err := a.exporter.HistoryXLSX(ctx, c.Int("limit"))
				if err != nil {
					return err
				}
				if err := writeFile(out, b); err != nil {
					return err
				}
			}
			runs, err := a.runs.List(ctx, c.Int("limit"))
			if err != nil {
				return err
			}
			return printJSON(runs)
		}),
	}
}

func (a *app) writeXLSX(path string, outcomes []export.Outcome) error {
	b, err := a.exporter.ComparisonXLSX(outcomes)
	if err != nil {
		return err
	}
	return writeFile(path, b)
}

func writeFile(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
