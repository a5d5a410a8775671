// Package gforms publishes quizzes as auto-graded Google Forms.
package gforms

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/transcript-quizgen/internal/common"
	"github.com/joseph-ayodele/transcript-quizgen/internal/entity"
	"github.com/joseph-ayodele/transcript-quizgen/internal/publisher"
)

const pointsPerQuestion = 1

type Publisher struct {
	svc *forms.Service
	log *slog.Logger
}

// New builds a Forms-backed publisher from an OAuth token source.
func New(ctx context.Context, ts oauth2.TokenSource, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := forms.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, common.WrapError(err, "create forms service")
	}
	return &Publisher{svc: svc, log: logger}, nil
}

// NewWithCredentialsFile builds a Forms-backed publisher from a
// service-account credentials file.
func NewWithCredentialsFile(ctx context.Context, path string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := forms.NewService(ctx,
		option.WithCredentialsFile(path),
		option.WithScopes(forms.FormsBodyScope))
	if err != nil {
		return nil, common.WrapError(err, "create forms service")
	}
	return &Publisher{svc: svc, log: logger}, nil
}

// Publish creates the form, switches it into quiz mode, and appends one
// graded radio question per quiz question.
func (p *Publisher) Publish(ctx context.Context, quiz *entity.QuizPayload) (publisher.PublishResult, error) {
	start := time.Now()
	if err := quiz.Validate(); err != nil {
		return publisher.PublishResult{}, fmt.Errorf("%w: %v", common.ErrPublishFailed, err)
	}

	form, err := p.svc.Forms.Create(&forms.Form{
		Info: &forms.Info{Title: quiz.Title},
	}).Context(ctx).Do()
	if err != nil {
		return publisher.PublishResult{}, fmt.Errorf("%w: create form: %v", common.ErrPublishFailed, err)
	}

	requests := []*forms.Request{
		{
			UpdateSettings: &forms.UpdateSettingsRequest{
				Settings: &forms.FormSettings{
					QuizSettings: &forms.QuizSettings{IsQuiz: true},
				},
				UpdateMask: "quizSettings.isQuiz",
			},
		},
	}
	if quiz.Summary != "" {
		requests = append(requests, &forms.Request{
			UpdateFormInfo: &forms.UpdateFormInfoRequest{
				Info:       &forms.Info{Description: quiz.Summary},
				UpdateMask: "description",
			},
		})
	}
	for i, q := range quiz.Questions {
		requests = append(requests, createQuestionRequest(i, q))
	}

	_, err = p.svc.Forms.BatchUpdate(form.FormId, &forms.BatchUpdateFormRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return publisher.PublishResult{}, fmt.Errorf("%w: batch update form %s: %v", common.ErrPublishFailed, form.FormId, err)
	}

	p.log.Info("forms.publish.ok",
		"form_id", form.FormId,
		"questions", len(quiz.Questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return publisher.PublishResult{
		FormID:   form.FormId,
		ShareURL: form.ResponderUri,
	}, nil
}

func createQuestionRequest(index int, q entity.QuizQuestion) *forms.Request {
	options := make([]*forms.Option, len(q.Options))
	for i, opt := range q.Options {
		options[i] = &forms.Option{Value: opt}
	}

	grading := &forms.Grading{
		PointValue: pointsPerQuestion,
		CorrectAnswers: &forms.CorrectAnswers{
			Answers: []*forms.CorrectAnswer{{Value: q.Options[q.CorrectIndex]}},
		},
	}
	if q.Rationale != "" {
		grading.WhenWrong = &forms.Feedback{Text: q.Rationale}
		grading.WhenRight = &forms.Feedback{Text: q.Rationale}
	}

	return &forms.Request{
		CreateItem: &forms.CreateItemRequest{
			Item: &forms.Item{
				Title: q.Question,
				QuestionItem: &forms.QuestionItem{
					Question: &forms.Question{
						Required: true,
						Grading:  grading,
						ChoiceQuestion: &forms.ChoiceQuestion{
							Type:    "RADIO",
							Options: options,
						},
					},
				},
			},
			Location: &forms.Location{
				Index:           int64(index),
				ForceSendFields: []string{"Index"},
			},
		},
	}
}
