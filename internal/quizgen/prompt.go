package quizgen

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt composes the system message: quiz shape, grading rules,
// and any operator-supplied extra instructions.
func BuildSystemPrompt(req GenerateRequest) string {
	parts := []string{
		"You are a quiz writer for meeting transcripts. Return ONLY JSON that matches the provided JSON Schema.",
		fmt.Sprintf("Write exactly %d multiple-choice questions about the transcript's content.", req.QuestionCount),
		"Each question has 3 or 4 options with exactly one correct answer; set 'correct_index' to its zero-based position.",
		"Questions must be answerable from the transcript alone. Do not invent facts.",
		"Include a short 'rationale' for each correct answer and a 2-3 sentence 'summary' of the transcript.",
		"Use the transcript's language for all text.",
	}
	if extra := strings.TrimSpace(req.ExtraInstructions); extra != "" {
		parts = append(parts, "Additional instructions: "+extra)
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt composes the user message with the document title and the
// transcript body.
func BuildUserPrompt(req GenerateRequest) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(req.Title)
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(req.Text)
	if strings.TrimSpace(req.Text) == "" {
		b.WriteString("(the transcript is empty; write general questions about the meeting named in the title)")
	}
	return b.String()
}
