package agentrunner

import (
	"context"
	"encoding/json"
)

// StreamEventType classifies events emitted while a runner works.
type StreamEventType string

const (
	StreamEventText       StreamEventType = "text"
	StreamEventToolUse    StreamEventType = "tool_use"
	StreamEventToolResult StreamEventType = "tool_result"
	StreamEventDone       StreamEventType = "done"
	StreamEventError      StreamEventType = "error"
)

// StreamEvent is one unit of runner output.
type StreamEvent struct {
	Type    StreamEventType
	Content string
	Tool    string
	Input   json.RawMessage
}

// Runner executes rendered workflow instructions in a working directory.
// The engine only consumes the event stream and the terminal status from
// Wait; everything else about execution is the collaborator's business.
type Runner interface {
	// Start begins executing instructions rooted at workDir. The tool
	// allow list restricts which tools the agent may call; nil means all.
	Start(ctx context.Context, instructions, workDir string, toolAllowList []string) error

	// Output returns the event stream. The channel is closed when
	// execution completes.
	Output() <-chan StreamEvent

	// Wait blocks until execution completes and returns its terminal
	// status.
	Wait() error

	// Kill terminates execution immediately.
	Kill() error
}

// Factory creates Runner instances, one per step execution.
type Factory interface {
	NewRunner() Runner
}

// Compile-time verification of the API-backed implementations.
var (
	_ Runner  = (*APIRunner)(nil)
	_ Factory = (*APIRunnerFactory)(nil)
)
