package jobs

import (
	"encoding/json"
	"time"
)

const (
	StatusPending        = "pending"
	StatusInProgress     = "in_progress"
	StatusWaitingForData = "waiting_for_data"
	StatusCompleted      = "completed"
	StatusError          = "error"
)

const (
	StepStatusPending    = "pending"
	StepStatusInProgress = "in_progress"
	StepStatusCompleted  = "completed"
	StepStatusError      = "error"
)

// Job is one analysis run over a decision question.
type Job struct {
	ID           string            `json:"id"`
	OwnerID      string            `json:"-"`
	ProjectID    string            `json:"projectId"`
	Question     string            `json:"question"`
	InputFileIDs []string          `json:"inputFileIds"`
	Status       string            `json:"status"`
	CurrentStep  string            `json:"currentStep"`
	Progress     int               `json:"progress"`
	Steps        []Step            `json:"steps"`
	MissingData  []MissingDataItem `json:"missingData"`
	Hypotheses   []Hypothesis      `json:"hypotheses"`
	Result       json.RawMessage   `json:"result,omitempty"`
	ErrorCode    string            `json:"errorCode,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	// Retryable is derived from ErrorCode when the job is read, not stored.
	Retryable   bool       `json:"retryable,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Step is one stage of the analysis pipeline.
type Step struct {
	Name        string     `json:"name"`
	Label       string     `json:"label"`
	Status      string     `json:"status"`
	Message     string     `json:"message,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MissingDataItem is a data point the analysis asked the owner for.
// Kind is one of number, text, date or file.
type MissingDataItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Kind        string `json:"kind"`
}

// Hypothesis is one assumption the analysis rests on. Kind is one of
// number, text or date; Value carries the typed value rendered as a string.
type Hypothesis struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// Terminal reports whether the status is a final one.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusError
}

// ValidStatus reports whether the status is one of the job statuses.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusWaitingForData, StatusCompleted, StatusError:
		return true
	}
	return false
}
