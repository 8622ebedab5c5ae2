package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// JobUpdate names the fields a write touches. Nil fields are left as
// stored; pointer-to-slice fields and Result distinguish "clear" from
// "untouched". ClearCompletedAt nulls the completion timestamp, which a
// plain pointer field cannot express.
type JobUpdate struct {
	Status           *string
	CurrentStep      *string
	Progress         *int
	Steps            *[]Step
	MissingData      *[]MissingDataItem
	Hypotheses       *[]Hypothesis
	Result           *json.RawMessage
	ErrorCode        *string
	ErrorMessage     *string
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// Empty reports whether the update names no fields.
func (u JobUpdate) Empty() bool {
	return u.Status == nil && u.CurrentStep == nil && u.Progress == nil &&
		u.Steps == nil && u.MissingData == nil && u.Hypotheses == nil &&
		u.Result == nil && u.ErrorCode == nil && u.ErrorMessage == nil &&
		u.StartedAt == nil && u.CompletedAt == nil && !u.ClearCompletedAt
}

// Repo defines persistence operations for jobs. Update writes only the
// fields the update names; UpdateIfStatus additionally requires the stored
// status to match and returns ErrStaleOperation when it does not.
type Repo interface {
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	Update(ctx context.Context, jobID string, update JobUpdate) error
	UpdateIfStatus(ctx context.Context, jobID, expectedStatus string, update JobUpdate) error
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Job, error)
	Delete(ctx context.Context, jobID string) error
}

func stringPtr(s string) *string { return &s }
func intPtr(n int) *int          { return &n }
func stepsPtr(s []Step) *[]Step  { return &s }
func resultPtr(raw json.RawMessage) *json.RawMessage {
	return &raw
}
func missingPtr(m []MissingDataItem) *[]MissingDataItem {
	return &m
}
func hypothesesPtr(h []Hypothesis) *[]Hypothesis {
	return &h
}
