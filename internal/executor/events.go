package executor

import (
	"time"

	"github.com/gao-dev/gao/pkg/models"
)

// EventType represents the type of executor event.
type EventType string

const (
	// EventRunStarted indicates a sequence execution has begun.
	EventRunStarted EventType = "run_started"
	// EventStepStarted indicates a workflow step is about to execute.
	EventStepStarted EventType = "step_started"
	// EventStepCompleted indicates a workflow step finished successfully.
	EventStepCompleted EventType = "step_completed"
	// EventStoryCompleted indicates one create/implement/close cycle finished.
	EventStoryCompleted EventType = "story_completed"
	// EventEpicStarted indicates the story loop entered a new epic.
	EventEpicStarted EventType = "epic_started"
	// EventAgentOutput carries streamed agent text for display.
	EventAgentOutput EventType = "agent_output"
	// EventRunCompleted indicates the whole sequence finished.
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed indicates the run halted on a failure.
	EventRunFailed EventType = "run_failed"
)

// Event is emitted while a sequence executes. Events update the CLI and
// track progress; execution never depends on them being consumed.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// Workflow is the related workflow name, if applicable.
	Workflow string
	// Epic is the 1-based epic index, 0 during setup.
	Epic int
	// Story is the 1-based story index, 0 during setup.
	Story int
	// Message provides additional context about the event.
	Message string
	// Artifacts lists documents registered by the step, if any.
	Artifacts []models.Document
	// Error contains error details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
