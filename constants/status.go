package constants

// WorkStatus is the canonical status for persisted work items.
type WorkStatus string

// Stable values (store these exact strings).
const (
	StatusPending    WorkStatus = "pending"    // implicit: no record exists yet
	StatusProcessing WorkStatus = "processing" // pipeline in progress
	StatusSucceeded  WorkStatus = "succeeded"  // terminal success
	StatusFailed     WorkStatus = "failed"     // terminal failure, retryable
)

// ProgressStep names the most recent lifecycle checkpoint of a work item.
type ProgressStep string

const (
	StepQueued     ProgressStep = "queued"
	StepMetadata   ProgressStep = "metadata"
	StepTranscript ProgressStep = "transcript"
	StepQuiz       ProgressStep = "quiz"
	StepForm       ProgressStep = "form"
	StepDone       ProgressStep = "done"
	StepError      ProgressStep = "error"
)

// Checkpoint percentages for each pipeline stage.
const (
	PercentQueued           = 0
	PercentMetadataFetching = 5
	PercentMetadataDone     = 10
	PercentTranscript       = 40
	PercentQuiz             = 70
	PercentForm             = 90
	PercentDone             = 100
)
