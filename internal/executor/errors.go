package executor

import (
	"fmt"
	"time"
)

// StepKind identifies which phase of the step cycle failed.
type StepKind string

const (
	StepKindVariables StepKind = "variables"
	StepKindAgent     StepKind = "agent"
	StepKindDetect    StepKind = "detect"
	StepKindRegister  StepKind = "register"
)

// StepExecutionError wraps a step failure with workflow, epic, and story
// context. Epic and Story are zero for setup steps.
type StepExecutionError struct {
	Workflow string
	Kind     StepKind
	Epic     int
	Story    int
	Err      error
}

func (e *StepExecutionError) Error() string {
	if e.Story > 0 {
		return fmt.Sprintf("workflow %q failed (%s, epic %d, story %d): %v", e.Workflow, e.Kind, e.Epic, e.Story, e.Err)
	}
	return fmt.Sprintf("workflow %q failed (%s): %v", e.Workflow, e.Kind, e.Err)
}

func (e *StepExecutionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a step that exceeded its execution budget. It is
// distinct from StepExecutionError so callers can pick a retry policy.
type TimeoutError struct {
	Workflow string
	Epic     int
	Story    int
	Timeout  time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Story > 0 {
		return fmt.Sprintf("workflow %q timed out after %s (epic %d, story %d)", e.Workflow, e.Timeout, e.Epic, e.Story)
	}
	return fmt.Sprintf("workflow %q timed out after %s", e.Workflow, e.Timeout)
}
