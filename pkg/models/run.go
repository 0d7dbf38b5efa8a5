package models

import "time"

// RunStatus is the state of a sequence execution run.
type RunStatus string

const (
	RunNotStarted       RunStatus = "not_started"
	RunRunningSetup     RunStatus = "running_setup"
	RunRunningStoryLoop RunStatus = "running_story_loop"
	RunCompleted        RunStatus = "completed"
	RunFailed           RunStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s RunStatus) Valid() bool {
	switch s {
	case RunNotStarted, RunRunningSetup, RunRunningStoryLoop, RunCompleted, RunFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the run can make no further progress.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// FailingStep identifies where a run failed.
type FailingStep struct {
	// Workflow is the workflow name of the failing step.
	Workflow string `json:"workflow"`
	// Epic is the 1-based epic index, 0 during setup.
	Epic int `json:"epic,omitempty"`
	// Story is the 1-based story index, 0 during setup.
	Story int `json:"story,omitempty"`
}

// WorkflowResult is the aggregate outcome of executing a sequence.
type WorkflowResult struct {
	Status      RunStatus    `json:"status"`
	Artifacts   []Document   `json:"artifacts"`
	FailingStep *FailingStep `json:"failing_step,omitempty"`
	Error       string       `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	StoriesRun  int          `json:"stories_run"`
	TokensUsed  int64        `json:"tokens_used"`
	Cost        float64      `json:"cost"`
}
