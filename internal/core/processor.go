package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
	"github.com/joseph-ayodele/transcript-quizgen/internal/async"
	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
	"github.com/joseph-ayodele/transcript-quizgen/internal/publisher"
	"github.com/joseph-ayodele/transcript-quizgen/internal/quizgen"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store"
)

// Processor drives a document through metadata resolution, transcript
// export, quiz generation, answer shuffling, and form publishing, persisting
// a checkpoint after every stage.
type Processor struct {
	logger               *slog.Logger
	records              store.RecordStore
	contents             source.ContentSource
	generator            quizgen.Generator
	forms                publisher.FormPublisher
	queue                async.Queue
	defaultQuestionCount int
	extraInstructions    string
}

func NewProcessor(
	logger *slog.Logger,
	records store.RecordStore,
	contents source.ContentSource,
	generator quizgen.Generator,
	forms publisher.FormPublisher,
	defaultQuestionCount int,
	extraInstructions string,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultQuestionCount <= 0 {
		defaultQuestionCount = constants.DefaultQuestionCount
	}
	return &Processor{
		logger:               logger,
		records:              records,
		contents:             contents,
		generator:            generator,
		forms:                forms,
		defaultQuestionCount: defaultQuestionCount,
		extraInstructions:    extraInstructions,
	}
}

// AttachQueue wires the background queue used by Enqueue. The queue is
// constructed after the processor because its workers call back into it.
func (p *Processor) AttachQueue(q async.Queue) { p.queue = q }

// ProcessOptions tune a single processing request.
type ProcessOptions struct {
	// Force re-runs the pipeline even when a succeeded record exists.
	Force bool
	// QuestionCount overrides the configured default when positive.
	QuestionCount int
	// Metadata, when non-nil, skips the metadata fetch (scan path).
	Metadata *source.Metadata
}

func (p *Processor) questionCount(opts ProcessOptions) int {
	if opts.QuestionCount > 0 {
		return opts.QuestionCount
	}
	return p.defaultQuestionCount
}

// Process runs the full pipeline for one document and returns the persisted
// record. Successful results are never recomputed unless opts.Force is set:
// a request against a succeeded item returns it unchanged with zero
// collaborator calls.
func (p *Processor) Process(ctx context.Context, id string, opts ProcessOptions) (*entity.WorkItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", common.ErrInvalidInput)
	}
	existing, err := p.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Succeeded() && !opts.Force {
		p.logger.Info("processor.dedup", "doc_id", id)
		return existing, nil
	}

	if err := p.runPipeline(ctx, id, opts); err != nil {
		p.recordFailure(ctx, id, err)
		return nil, err
	}

	// Re-read so callers see exactly what was persisted, not what we think
	// was persisted.
	final, err := p.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if final == nil {
		return nil, fmt.Errorf("%w: record for %s vanished after success", common.ErrStoreUnavailable, id)
	}
	return final, nil
}

// Enqueue writes an immediate processing/queued checkpoint and submits the
// document to the background queue. Failures in the detached run are
// persisted by the workers, never dropped.
func (p *Processor) Enqueue(ctx context.Context, id string, opts ProcessOptions) (*entity.WorkItem, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty document id", common.ErrInvalidInput)
	}
	if p.queue == nil {
		return nil, fmt.Errorf("%w: no queue attached", common.ErrInvalidInput)
	}
	existing, err := p.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Succeeded() && !opts.Force {
		p.logger.Info("processor.dedup", "doc_id", id)
		return existing, nil
	}

	count := p.questionCount(opts)
	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Status:        entity.Status(constants.StatusProcessing),
		QuestionCount: entity.Int(count),
		Progress: &entity.Progress{
			Step:    constants.StepQueued,
			Message: "Queued for processing",
			Percent: constants.PercentQueued,
		},
	})
	if err != nil {
		return nil, err
	}
	err = p.queue.Enqueue(ctx, async.Job{
		DocID:         id,
		Force:         opts.Force,
		QuestionCount: count,
		SubmittedAt:   time.Now().UTC(),
		TraceID:       uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}
	return p.records.Get(ctx, id)
}

// GetStatus is a pure read for polling callers; absent records return
// (nil, nil).
func (p *Processor) GetStatus(ctx context.Context, id string) (*entity.WorkItem, error) {
	return p.records.Get(ctx, id)
}

func (p *Processor) runPipeline(ctx context.Context, id string, opts ProcessOptions) error {
	count := p.questionCount(opts)

	// Clear every prior-attempt field up front so a stale form URL or error
	// message can never leak into this attempt's intermediate states.
	err := p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Status:              entity.Status(constants.StatusProcessing),
		Title:               entity.String(entity.ClearField),
		SourceVersionMarker: entity.String(entity.ClearField),
		FormID:              entity.String(entity.ClearField),
		FormURL:             entity.String(entity.ClearField),
		Summary:             entity.String(entity.ClearField),
		ErrorMessage:        entity.String(entity.ClearField),
		QuestionCount:       entity.Int(count),
		Progress: &entity.Progress{
			Step:    constants.StepMetadata,
			Message: "Fetching metadata",
			Percent: constants.PercentMetadataFetching,
		},
	})
	if err != nil {
		return err
	}

	meta, err := p.resolveMetadata(ctx, id, opts)
	if err != nil {
		return err
	}
	title := meta.Name
	if title == "" {
		title = "Transcript " + id
	}
	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Title:               entity.String(title),
		SourceVersionMarker: entity.String(meta.VersionMarker),
		Progress: &entity.Progress{
			Step:    constants.StepMetadata,
			Message: "Metadata resolved",
			Percent: constants.PercentMetadataDone,
		},
	})
	if err != nil {
		return err
	}

	// An empty transcript is not an error; it is passed through.
	text, err := p.contents.ExportText(ctx, id)
	if err != nil {
		return err
	}
	if len(text) > constants.MaxTranscriptBytes {
		p.logger.Warn("processor.transcript.truncated", "doc_id", id, "bytes", len(text))
		text = truncateUTF8(text, constants.MaxTranscriptBytes)
	}
	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Progress: &entity.Progress{
			Step:    constants.StepTranscript,
			Message: "Transcript fetched",
			Percent: constants.PercentTranscript,
		},
	})
	if err != nil {
		return err
	}

	quiz, _, err := p.generator.Generate(ctx, quizgen.GenerateRequest{
		Title:             title,
		Text:              text,
		QuestionCount:     count,
		ExtraInstructions: p.extraInstructions,
	})
	if err != nil {
		return err
	}
	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Progress: &entity.Progress{
			Step:    constants.StepQuiz,
			Message: "Quiz generated",
			Percent: constants.PercentQuiz,
		},
	})
	if err != nil {
		return err
	}

	shuffled := ShuffleAnswers(rand.New(rand.NewSource(time.Now().UnixNano())), quiz)

	result, err := p.forms.Publish(ctx, shuffled)
	if err != nil {
		return err
	}
	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Progress: &entity.Progress{
			Step:    constants.StepForm,
			Message: "Form created",
			Percent: constants.PercentForm,
		},
	})
	if err != nil {
		return err
	}

	err = p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Status:        entity.Status(constants.StatusSucceeded),
		FormID:        entity.String(result.FormID),
		FormURL:       entity.String(result.ShareURL),
		Summary:       entity.String(shuffled.Summary),
		QuestionCount: entity.Int(len(shuffled.Questions)),
		Progress: &entity.Progress{
			Step:    constants.StepDone,
			Message: "Completed",
			Percent: constants.PercentDone,
		},
	})
	if err != nil {
		return err
	}

	p.logger.Info("processor.ok",
		"doc_id", id,
		"title", title,
		"questions", len(shuffled.Questions),
		"form_id", result.FormID,
	)
	return nil
}

// truncateUTF8 cuts s to at most max bytes without splitting a rune.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (p *Processor) resolveMetadata(ctx context.Context, id string, opts ProcessOptions) (source.Metadata, error) {
	if opts.Metadata != nil {
		return *opts.Metadata, nil
	}
	return p.contents.GetMetadata(ctx, id)
}

// recordFailure converts a pipeline error into a persisted failed record.
// Intermediate fields already written (title, version marker) stay visible
// for diagnostics. A store failure here is the one unrecoverable case: the
// error is logged and the record is left as-is.
func (p *Processor) recordFailure(ctx context.Context, id string, cause error) {
	p.logger.Error("processor.failed", "doc_id", id, "error", cause)
	msg := cause.Error()
	err := p.records.MergeSet(ctx, id, entity.WorkItemPatch{
		Status:       entity.Status(constants.StatusFailed),
		ErrorMessage: entity.String(msg),
		Progress: &entity.Progress{
			Step:    constants.StepError,
			Message: msg,
			Percent: constants.PercentDone,
		},
	})
	if err != nil {
		p.logger.Error("processor.failure_write_failed", "doc_id", id, "error", err)
	}
}
