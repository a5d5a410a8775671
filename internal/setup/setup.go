// Package setup builds the collaborator graph from configuration. Each
// binary calls into it instead of repeating adapter wiring.
package setup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/core"
	"github.com/joseph-ayodele/transcript-quizgen/internal/publisher"
	"github.com/joseph-ayodele/transcript-quizgen/internal/publisher/gforms"
	"github.com/joseph-ayodele/transcript-quizgen/internal/quizgen"
	"github.com/joseph-ayodele/transcript-quizgen/internal/quizgen/openai"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source/gdrive"
	"github.com/joseph-ayodele/transcript-quizgen/internal/source/localdir"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store/memstore"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store/redisstore"
	"github.com/joseph-ayodele/transcript-quizgen/internal/store/sqlstore"
)

// NewRecordStore selects the persistence backend. The returned closer is a
// no-op for backends without connection state.
func NewRecordStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (store.RecordStore, func() error, error) {
	switch cfg.Store.Backend {
	case "sqlite", "postgres":
		s, err := sqlstore.Open(ctx, cfg.Store.Backend, cfg.Store.DSN, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.Store.RedisAddr,
			DB:          cfg.Store.RedisDB,
			DialTimeout: cfg.Store.DialTimeout,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("%w: ping redis: %v", common.ErrStoreUnavailable, err)
		}
		return redisstore.New(client), client.Close, nil
	case "memory":
		return memstore.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// NewContentSource selects the transcript source backend.
func NewContentSource(ctx context.Context, cfg *common.Config, logger *slog.Logger) (source.ContentSource, error) {
	switch cfg.Source.Backend {
	case "gdrive":
		return gdrive.NewWithCredentialsFile(ctx, cfg.Source.CredentialsFile, logger)
	case "localdir":
		return localdir.New(cfg.Source.FolderID), nil
	default:
		return nil, fmt.Errorf("unknown source backend: %s", cfg.Source.Backend)
	}
}

// NewGenerator builds the OpenAI-backed quiz generator.
func NewGenerator(cfg *common.Config, logger *slog.Logger) quizgen.Generator {
	return openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
}

// NewPublisher builds the Google Forms publisher.
func NewPublisher(ctx context.Context, cfg *common.Config, logger *slog.Logger) (publisher.FormPublisher, error) {
	return gforms.NewWithCredentialsFile(ctx, cfg.Forms.CredentialsFile, logger)
}

// NewProcessor wires the full pipeline.
func NewProcessor(ctx context.Context, cfg *common.Config, logger *slog.Logger, records store.RecordStore) (*core.Processor, source.ContentSource, error) {
	contents, err := NewContentSource(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	forms, err := NewPublisher(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	proc := core.NewProcessor(
		logger,
		records,
		contents,
		NewGenerator(cfg, logger),
		forms,
		cfg.Scanner.QuestionCount,
		cfg.LLM.ExtraInstructions,
	)
	return proc, contents, nil
}
