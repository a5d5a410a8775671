// runquiz processes a single document id end to end and prints the
// resulting form URL. Useful for debugging one transcript without a scan.
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
	"github.com/joseph-ayodele/transcript-quizgen/internal/setup"
)

func main() {
	var (
		force     = flag.Bool("force", false, "re-run the pipeline even if the document already succeeded")
		questions = flag.Int("questions", 0, "questions to generate (default from SCAN_QUESTION_COUNT)")
		timeout   = flag.Duration("timeout", 5*time.Minute, "processing deadline")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "runquiz [-force] [-questions n] <document-id>")
		os.Exit(2)
	}
	docID := flag.Arg(0)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, closeStore, err := setup.NewRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	proc, _, err := setup.NewProcessor(ctx, cfg, logger, records)
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	item, err := proc.Process(ctx, docID, core.ProcessOptions{
		Force:         *force,
		QuestionCount: *questions,
	})
	if err != nil {
		logger.Error("processing failed", "doc_id", docID, "error", err)
		os.Exit(1)
	}

	fmt.Printf("status=%s title=%q questions=%d\nform: %s\n",
		item.Status, item.Title, item.QuestionCount, item.FormURL)
}
