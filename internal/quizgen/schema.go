package quizgen

// BuildQuizJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it
// locally to validate: a payload that does not match is rejected as
// GenerationFailed rather than trusted.
func BuildQuizJSONSchema() map[string]any {
	question := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"question": map[string]any{"type": "string", "minLength": 1},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string", "minLength": 1},
				"minItems": 2,
			},
			"correct_index": map[string]any{"type": "integer", "minimum": 0},
			"rationale":     map[string]any{"type": "string"},
		},
		"required": []string{"question", "options", "correct_index"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title":   map[string]any{"type": "string", "minLength": 1},
			"summary": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type":     "array",
				"items":    question,
				"minItems": 1,
			},
		},
		"required": []string{"title", "questions"},
	}
}
