// quizgen-batch runs a single folder scan and exits. With -out it also
// writes an XLSX status report of every tracked document.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/core"
	"github.com/joseph-ayodele/transcript-quizgen/internal/export"
	"github.com/joseph-ayodele/transcript-quizgen/internal/setup"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		out       = flag.String("out", "", "write an XLSX status report to this path")
		questions = flag.Int("questions", 0, "questions per quiz (default from SCAN_QUESTION_COUNT)")
		timeout   = flag.Duration("timeout", 30*time.Minute, "overall scan deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *questions > 0 {
		cfg.Scanner.QuestionCount = *questions
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, closeStore, err := setup.NewRecordStore(ctx, cfg, logger)
	if err != nil {
		printError("Error: store init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	proc, contents, err := setup.NewProcessor(ctx, cfg, logger, records)
	if err != nil {
		printError("Error: pipeline init failed: %v\n", err)
		os.Exit(1)
	}

	scanner := core.NewScanner(logger, contents, records, proc, cfg.Source.FolderID, cfg.Scanner.QuestionCount)
	result, err := scanner.Scan(ctx)
	if err != nil {
		printError("Error: scan failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("scan complete: processed=%d skipped=%d errors=%d\n",
		result.Processed, result.Skipped, result.Errors)

	if *out != "" {
		data, err := export.NewService(records, logger).ExportWorkItemsXLSX(ctx)
		if err != nil {
			printError("Error: export failed: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			printError("Error: write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("report written to %s\n", *out)
	}

	if result.Errors > 0 {
		os.Exit(2)
	}
}
