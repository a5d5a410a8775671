package entity

import "fmt"

// QuizQuestion is a single multiple-choice question with exactly one
// correct option, identified by index into Options.
type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Rationale    string   `json:"rationale,omitempty"`
}

// QuizPayload is the structured quiz produced by the generator. It is
// transient: only the publish result and summary are persisted.
type QuizPayload struct {
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	Questions []QuizQuestion `json:"questions"`
}

// Validate enforces the structural invariants the publisher relies on.
func (q *QuizPayload) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz has no questions")
	}
	for i, qq := range q.Questions {
		if len(qq.Options) < 2 {
			return fmt.Errorf("question %d: need at least 2 options, got %d", i, len(qq.Options))
		}
		if qq.CorrectIndex < 0 || qq.CorrectIndex >= len(qq.Options) {
			return fmt.Errorf("question %d: correct index %d out of range [0,%d)", i, qq.CorrectIndex, len(qq.Options))
		}
	}
	return nil
}
