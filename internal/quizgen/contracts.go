package quizgen

import (
	"context"

	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

// GenerateRequest carries everything the generator needs for one quiz.
type GenerateRequest struct {
	Title         string
	Text          string
	QuestionCount int
	// ExtraInstructions is operator-supplied prompt text appended verbatim.
	ExtraInstructions string
}

// Generator is the interface the pipeline depends on. The raw JSON returned
// alongside the payload is kept for diagnostics on validation failures.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*entity.QuizPayload, []byte /*rawJSON*/, error)
}
