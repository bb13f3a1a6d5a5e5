package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/joseph-ayodele/po-invoice-matcher/constants"
)

// extractCommand runs only the text source and the per-document extractors,
// which is handy when a layout is not being picked up.
func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     "print the text, type, line items and totals found in one file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "as", Usage: "skip classification and treat the file as this type (po, invoice)"},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("usage: po-matcher extract <file>", 2)
			}
			var override constants.DocType
			if as := c.String("as"); as != "" {
				dt, ok := constants.ParseDocType(as)
				if !ok {
					return cli.Exit(fmt.Sprintf("unknown document type %q, want one of %s",
						as, strings.Join(constants.DocTypesAsStrings(), ", ")), 2)
				}
				override = dt
			}

			start := time.Now()
			res, err := a.proc.Text.Extract(ctx, path)
			if err != nil {
				a.logger.Error("extract.failed", "path", path, "error", err,
					"elapsed_ms", time.Since(start).Milliseconds())
				return err
			}

			docType := override
			if docType == "" {
				docType = a.proc.Classifier.Classify(res.Text)
			}
			return printJSON(map[string]any{
				"path":       path,
				"method":     res.Method,
				"pages":      res.Pages,
				"cached":     res.Cached,
				"warnings":   res.Warnings,
				"type":       docType,
				"items":      a.proc.Items.Extract(res.Text, docType),
				"financials": a.proc.Financials.Extract(res.Text),
				"text":       res.Text,
			})
		}),
	}
}

// dbHealthCommand pings the configured history store.
func dbHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "dbhealth",
		Usage: "check that the run history database is reachable",
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app) error {
			if a.runs == nil {
				a.logger.Info("dbhealth.skipped", "driver", a.cfg.Database.Driver)
				return printJSON(map[string]any{"driver": a.cfg.Database.Driver, "ok": true})
			}
			runs, err := a.runs.List(ctx, 1)
			if err != nil {
				a.logger.Error("dbhealth.failed", "driver", a.cfg.Database.Driver, "error", err)
				return err
			}
			return printJSON(map[string]any{
				"driver":   a.cfg.Database.Driver,
				"ok":       true,
				"has_runs": len(runs) > 0,
			})
		}),
	}
}

