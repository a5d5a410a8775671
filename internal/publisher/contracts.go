// Package publisher abstracts turning a quiz payload into a shareable form.
package publisher

import (
	"context"

	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
)

// PublishResult identifies the created form.
type PublishResult struct {
	FormID   string
	ShareURL string
}

// FormPublisher creates a graded multiple-choice form from a quiz payload.
// Fails with common.ErrPublishFailed on any creation error.
type FormPublisher interface {
	Publish(ctx context.Context, quiz *entity.QuizPayload) (PublishResult, error)
}
