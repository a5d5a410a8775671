// quizgend watches a transcript folder and turns new or changed documents
// into graded quiz forms. It runs a periodic scan, an optional filesystem
// watcher for local sources, and a bounded worker queue for enqueued work.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/core"
	coreasync "github.com/joseph-ayodele/transcript-quizgen/internal/core/async"
	"github.com/joseph-ayodele/transcript-quizgen/internal/setup"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source/localdir"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, closeStore, err := setup.NewRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = closeStore() }()

	proc, contents, err := setup.NewProcessor(ctx, cfg, logger, records)
	if err != nil {
		logger.Error("pipeline init failed", "error", err)
		os.Exit(1)
	}

	queue := coreasync.NewProcessorQueue(proc, logger,
		coreasync.WithWorkers(cfg.Queue.Workers),
		coreasync.WithQueueSize(cfg.Queue.Size),
		coreasync.WithProcessTimeout(cfg.Queue.ProcessTimeout),
	)
	proc.AttachQueue(queue)

	scanner := core.NewScanner(logger, contents, records, proc, cfg.Source.FolderID, cfg.Scanner.QuestionCount)

	if cfg.Scanner.Watch {
		if local, ok := contents.(*localdir.Source); ok {
			startWatcher(ctx, local, proc, cfg, logger)
		} else {
			logger.Warn("SOURCE_WATCH requires the localdir backend; ignoring")
		}
	}

	logger.Info("quizgend started",
		"source", cfg.Source.Backend,
		"store", cfg.Store.Backend,
		"scan_interval", cfg.Scanner.Interval.String(),
	)

	ticker := time.NewTicker(cfg.Scanner.Interval)
	defer ticker.Stop()

	runScan := func() {
		result, err := scanner.Scan(ctx)
		if err != nil {
			logger.Error("scan failed", "error", err)
			return
		}
		logger.Info("scan complete",
			"processed", result.Processed,
			"skipped", result.Skipped,
			"errors", result.Errors,
		)
	}

	runScan()
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			return
		case <-ticker.C:
			runScan()
		}
	}
}

// startWatcher feeds filesystem events into the processing queue so edits
// show up as quizzes without waiting for the next scan tick.
func startWatcher(ctx context.Context, local *localdir.Source, proc *core.Processor, cfg *common.Config, logger *slog.Logger) {
	events, errs, err := local.Watch(ctx, localdir.WatchConfig{
		Debounce: cfg.Scanner.WatchDebounce,
	}, logger)
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-events:
				if !ok {
					return
				}
				if _, err := proc.Enqueue(ctx, id, core.ProcessOptions{QuestionCount: cfg.Scanner.QuestionCount}); err != nil {
					logger.Error("enqueue from watcher failed", "doc_id", id, "error", err)
				}
			case err, ok := <-errs:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
			}
		}
	}()
}
