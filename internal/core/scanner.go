package core

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store"
)

// ScanResult aggregates one folder scan.
type ScanResult struct {
	Processed int
	Skipped   int
	Errors    int
}

// Scanner enumerates the documents at a source location and reprocesses the
// ones whose upstream content drifted since the last successful run.
type Scanner struct {
	logger        *slog.Logger
	contents      source.ContentSource
	records       store.RecordStore
	proc          *Processor
	locationID    string
	questionCount int
}

func NewScanner(
	logger *slog.Logger,
	contents source.ContentSource,
	records store.RecordStore,
	proc *Processor,
	locationID string,
	questionCount int,
) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		logger:        logger,
		contents:      contents,
		records:       records,
		proc:          proc,
		locationID:    locationID,
		questionCount: questionCount,
	}
}

// Scan lists the source location and runs the processor for every document
// that is new, failed, or drifted. A document whose stored version marker
// matches the source's current marker is skipped without touching the
// processor. Errors are isolated per document; one broken transcript never
// aborts the rest of the scan.
func (s *Scanner) Scan(ctx context.Context) (ScanResult, error) {
	docs, err := s.contents.ListAll(ctx, s.locationID)
	if err != nil {
		return ScanResult{}, err
	}
	s.logger.Info("scanner.start", "location_id", s.locationID, "documents", len(docs))

	var result ScanResult
	for _, meta := range docs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		record, err := s.records.Get(ctx, meta.ID)
		if err != nil {
			s.logger.Error("scanner.record_load_failed", "doc_id", meta.ID, "error", err)
			result.Errors++
			continue
		}

		// Drift check. A missing marker on either side counts as changed:
		// fail open toward reprocessing, never toward skipping silently.
		unchanged := record != nil &&
			record.Succeeded() &&
			record.SourceVersionMarker != "" &&
			meta.VersionMarker != "" &&
			record.SourceVersionMarker == meta.VersionMarker
		if unchanged {
			result.Skipped++
			continue
		}

		// A succeeded record that reaches this point drifted, so Process
		// must be forced past its success short-circuit. New and failed
		// records run unforced.
		force := record != nil && record.Succeeded()
		if force {
			s.logger.Info("scanner.drift",
				"doc_id", meta.ID,
				"stored_marker", record.SourceVersionMarker,
				"source_marker", meta.VersionMarker,
			)
		}
		meta := meta
		_, err = s.proc.Process(ctx, meta.ID, ProcessOptions{
			Force:         force,
			QuestionCount: s.questionCount,
			Metadata:      &meta,
		})
		if err != nil {
			s.logger.Error("scanner.process_failed", "doc_id", meta.ID, "error", err)
			result.Errors++
			continue
		}
		result.Processed++
	}

	s.logger.Info("scanner.done",
		"location_id", s.locationID,
		"processed", result.Processed,
		"skipped", result.Skipped,
		"errors", result.Errors,
	)
	return result, nil
}
