package jobs

import (
	"math"
	"time"
)

const (
	StepAnalyzingQuestion       = "analyzing_question"
	StepCheckingFiles           = "checking_files"
	StepAnalyzingStructure      = "analyzing_structure"
	StepCalculatingMetrics      = "calculating_metrics"
	StepGeneratingScenarios     = "generating_scenarios"
	StepCreatingRecommendations = "creating_recommendations"
)

// runningCredit is added while a step is in flight so the bar moves as
// soon as a step starts.
const runningCredit = 5

// restartProgress is what progress resets to when a paused job resumes.
const restartProgress = 10

var stepTemplate = []struct {
	name  string
	label string
}{
	{StepAnalyzingQuestion, "Analyzing the question"},
	{StepCheckingFiles, "Checking data files"},
	{StepAnalyzingStructure, "Analyzing data structure"},
	{StepCalculatingMetrics, "Calculating metrics"},
	{StepGeneratingScenarios, "Generating scenarios"},
	{StepCreatingRecommendations, "Creating recommendations"},
}

// NewSteps returns the fixed pipeline step template, all pending.
func NewSteps() []Step {
	out := make([]Step, 0, len(stepTemplate))
	for _, def := range stepTemplate {
		out = append(out, Step{
			Name:   def.name,
			Label:  def.label,
			Status: StepStatusPending,
		})
	}
	return out
}

// DeriveProgress computes progress from step completion: the rounded
// completed fraction plus a running credit when a step is in flight,
// capped at 99. Terminal completion sets 100 outside this function.
func DeriveProgress(steps []Step) int {
	if len(steps) == 0 {
		return 0
	}
	completed := 0
	running := false
	for _, step := range steps {
		switch step.Status {
		case StepStatusCompleted:
			completed++
		case StepStatusInProgress:
			running = true
		}
	}
	progress := int(math.Round(100 * float64(completed) / float64(len(steps))))
	if running {
		progress += runningCredit
	}
	if progress > 99 {
		progress = 99
	}
	return progress
}

func startStep(steps []Step, idx int, now time.Time) []Step {
	if idx < 0 || idx >= len(steps) {
		return steps
	}
	steps[idx].Status = StepStatusInProgress
	steps[idx].StartedAt = &now
	return steps
}

func completeStep(steps []Step, idx int, message string, now time.Time) []Step {
	if idx < 0 || idx >= len(steps) {
		return steps
	}
	steps[idx].Status = StepStatusCompleted
	if message != "" {
		steps[idx].Message = message
	}
	steps[idx].CompletedAt = &now
	return steps
}

func failStep(steps []Step, idx int, message string, now time.Time) []Step {
	if idx < 0 || idx >= len(steps) {
		return steps
	}
	steps[idx].Status = StepStatusError
	steps[idx].Message = message
	steps[idx].CompletedAt = &now
	return steps
}
