package entity

import (
	"time"

	"github.com/joseph-ayodele/transcript-quizgen/constants"
)

// Progress is the most recent lifecycle checkpoint of a work item.
type Progress struct {
	Step    constants.ProgressStep `json:"step"`
	Message string                 `json:"message"`
	Percent int                    `json:"percent"`
}

// WorkItem tracks one document's conversion state. Exactly one record exists
// per document id; it is mutated exclusively by the processor.
type WorkItem struct {
	ID                  string               `json:"id"`
	Status              constants.WorkStatus `json:"status"`
	Title               string               `json:"title,omitempty"`
	SourceVersionMarker string               `json:"source_version_marker,omitempty"`
	QuestionCount       int                  `json:"question_count,omitempty"`
	FormID              string               `json:"form_id,omitempty"`
	FormURL             string               `json:"form_url,omitempty"`
	Summary             string               `json:"summary,omitempty"`
	ErrorMessage        string               `json:"error_message,omitempty"`
	Progress            Progress             `json:"progress"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// Succeeded reports whether the item reached terminal success.
func (w *WorkItem) Succeeded() bool {
	return w.Status == constants.StatusSucceeded
}

// Clone returns a deep copy so that store implementations can hand out
// records without aliasing their internal state.
func (w *WorkItem) Clone() *WorkItem {
	cp := *w
	return &cp
}
