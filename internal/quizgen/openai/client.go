package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
	"github.com/joseph-ayodele/transcript-quizgen/internal/quizgen"
)

// Generate implements quizgen.Generator using chat/completions with a JSON
// response format. The model output is validated against the quiz schema
// before it is trusted; any shape mismatch surfaces as GenerationFailed.
func (c *Client) Generate(ctx context.Context, req quizgen.GenerateRequest) (*entity.QuizPayload, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"title", req.Title,
		"text_len", len(req.Text),
		"question_count", req.QuestionCount,
	)

	schema := quizgen.BuildQuizJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": quizgen.BuildSystemPrompt(req)},
			{"role": "user", "content": quizgen.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, err := quizgen.SendJSON(ctx, c.http, endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, c.logger)
	if err != nil {
		c.logger.Error("llm.generate.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, raw, fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.generate.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, raw, fmt.Errorf("%w: decode response: %v", common.ErrGenerationFailed, err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.generate.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return nil, raw, fmt.Errorf("%w: no choices in response", common.ErrGenerationFailed)
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	if err := quizgen.ValidateJSONAgainstSchema(schema, content); err != nil {
		c.logger.Error("llm.generate.schema_validation_failed",
			"req_id", rid, "error", err, "content", string(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}

	var quiz entity.QuizPayload
	if err := json.Unmarshal(content, &quiz); err != nil {
		c.logger.Error("llm.generate.unmarshal_failed", "req_id", rid, "error", err)
		return nil, content, fmt.Errorf("%w: unmarshal quiz: %v", common.ErrGenerationFailed, err)
	}
	if quiz.Title == "" {
		quiz.Title = req.Title
	}
	if err := quiz.Validate(); err != nil {
		c.logger.Error("llm.generate.invalid_payload", "req_id", rid, "error", err)
		return nil, content, fmt.Errorf("%w: %v", common.ErrGenerationFailed, err)
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"title", quiz.Title,
		"questions", len(quiz.Questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &quiz, content, nil
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
