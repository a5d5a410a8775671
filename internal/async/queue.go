package async

import (
	"context"
	"time"
)

// Job is the smallest useful unit. Extend as needed later (trace, retry, priority).
type Job struct {
	DocID         string
	Force         bool
	QuestionCount int
	SubmittedAt   time.Time
	TraceID       string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
