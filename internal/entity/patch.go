package entity

import "github.com/joseph-ayodele/transcript-quizgen/constants"

// ClearField is the delete sentinel for string fields in a WorkItemPatch.
// Assigning it marks the field for deletion rather than for an empty write.
const ClearField = "\x00clear"

// WorkItemPatch is an explicit partial update: a nil pointer leaves the
// stored field untouched, a non-nil pointer overwrites it, and a string
// pointer to ClearField deletes it. Stores must apply the patch as a merge,
// never as a full replace.
type WorkItemPatch struct {
	Status              *constants.WorkStatus
	Title               *string
	SourceVersionMarker *string
	QuestionCount       *int
	FormID              *string
	FormURL             *string
	Summary             *string
	ErrorMessage        *string
	Progress            *Progress
}

// String returns a pointer for patch assignment.
func String(s string) *string { return &s }

// Int returns a pointer for patch assignment.
func Int(n int) *int { return &n }

// Status returns a pointer for patch assignment.
func Status(s constants.WorkStatus) *constants.WorkStatus { return &s }

// Cleared reports whether p marks a string field for deletion.
func Cleared(p *string) bool { return p != nil && *p == ClearField }

// ApplyString merges a patched string field into its stored value.
func ApplyString(dst *string, p *string) {
	if p == nil {
		return
	}
	if Cleared(p) {
		*dst = ""
		return
	}
	*dst = *p
}

// Apply merges the patch into w field by field. Timestamps are the store's
// responsibility and are not touched here.
func (w *WorkItem) Apply(p WorkItemPatch) {
	if p.Status != nil {
		w.Status = *p.Status
	}
	ApplyString(&w.Title, p.Title)
	ApplyString(&w.SourceVersionMarker, p.SourceVersionMarker)
	ApplyString(&w.FormID, p.FormID)
	ApplyString(&w.FormURL, p.FormURL)
	ApplyString(&w.Summary, p.Summary)
	ApplyString(&w.ErrorMessage, p.ErrorMessage)
	if p.QuestionCount != nil {
		w.QuestionCount = *p.QuestionCount
	}
	if p.Progress != nil {
		w.Progress = *p.Progress
	}
}
