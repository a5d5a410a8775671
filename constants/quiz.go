package constants

// DefaultQuestionCount is used when a caller does not request a specific
// number of questions.
const DefaultQuestionCount = 5

// MinOptionsPerQuestion is the smallest option list the pipeline accepts
// from the generator.
const MinOptionsPerQuestion = 2

// MaxTranscriptBytes caps the transcript text handed to the generator.
const MaxTranscriptBytes = 512 * 1024
