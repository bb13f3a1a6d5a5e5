package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	app := &cli.App{
		Name:  "po-matcher",
		Usage: "compare a Purchase Order with its Invoice",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "directory holding po-matcher.yaml", Value: "."},
			&cli.StringFlag{Name: "log-level", Usage: "debug | info | warn | error", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: parseLevel(c.String("log-level")),
			}))
			slog.SetDefault(logger)
			return nil
		},
		Commands: []*cli.Command{
			compareTextCommand(),
			compareFilesCommand(),
			batchCommand(),
			watchCommand(),
			historyCommand(),
			extractCommand(),
			dbHealthCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
