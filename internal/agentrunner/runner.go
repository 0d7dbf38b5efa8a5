package agentrunner

import (
	"context"
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
)

const (
	maxTokensPerTurn = 8192
	maxAgentTurns    = 50
)

const runnerSystemPrompt = `You are a software delivery agent executing one workflow step inside a project directory. Follow the instructions exactly, use the provided tools to read and write project files, and produce the requested output document. Keep file paths relative to the project root. When the step output is written and complete, stop.`

// APIRunner executes workflow instructions through the Anthropic Messages
// API, cycling tool calls against the working directory until the model
// ends its turn.
type APIRunner struct {
	client *Client

	mu     sync.Mutex
	output chan StreamEvent
	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// APIRunnerFactory creates API-backed runners sharing one client.
type APIRunnerFactory struct {
	Client *Client
}

// NewRunner returns a fresh runner for a single step execution.
func (f *APIRunnerFactory) NewRunner() Runner {
	return &APIRunner{client: f.Client}
}

// Start begins the agent loop. It returns immediately; progress is
// reported on Output and the terminal status through Wait.
func (r *APIRunner) Start(ctx context.Context, instructions, workDir string, toolAllowList []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.output != nil {
		return fmt.Errorf("runner already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.output = make(chan StreamEvent, 64)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(runCtx, instructions, workDir, toolAllowList)
	return nil
}

// Output returns the event stream for this execution.
func (r *APIRunner) Output() <-chan StreamEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.output
}

// Wait blocks until the agent loop finishes and returns its error, if any.
func (r *APIRunner) Wait() error {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()
	if done == nil {
		return fmt.Errorf("runner not started")
	}
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runErr
}

// Kill cancels the agent loop. Wait will report the cancellation.
func (r *APIRunner) Kill() error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return fmt.Errorf("runner not started")
	}
	cancel()
	return nil
}

func (r *APIRunner) run(ctx context.Context, instructions, workDir string, toolAllowList []string) {
	defer func() {
		r.mu.Lock()
		close(r.output)
		close(r.done)
		r.mu.Unlock()
	}()

	err := r.loop(ctx, instructions, workDir, toolAllowList)
	if err != nil {
		r.emit(StreamEvent{Type: StreamEventError, Content: err.Error()})
		r.mu.Lock()
		r.runErr = err
		r.mu.Unlock()
		return
	}
	r.emit(StreamEvent{Type: StreamEventDone})
}

func (r *APIRunner) loop(ctx context.Context, instructions, workDir string, toolAllowList []string) error {
	executor := NewToolExecutor(workDir)
	tools := ToolDefinitions(toolAllowList)

	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(instructions)),
	}

	for turn := 0; turn < maxAgentTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		resp, err := r.client.sdk().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     r.client.Model(),
			MaxTokens: maxTokensPerTurn,
			System: []anthropic.TextBlockParam{
				{Text: runnerSystemPrompt},
			},
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		r.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResults []anthropic.ContentBlockParamUnion

		for _, block := range resp.Content {
			switch b := block.AsAny().(type) {
			case anthropic.TextBlock:
				if b.Text != "" {
					r.emit(StreamEvent{Type: StreamEventText, Content: b.Text})
				}
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(b.Text))
			case anthropic.ToolUseBlock:
				assistantBlocks = append(assistantBlocks, anthropic.NewToolUseBlock(b.ID, b.Input, b.Name))
				r.emit(StreamEvent{Type: StreamEventToolUse, Tool: b.Name, Input: b.Input})

				result := executor.Execute(b.Name, b.Input)
				r.emit(StreamEvent{Type: StreamEventToolResult, Tool: b.Name, Content: result.Content})
				toolResults = append(toolResults, anthropic.NewToolResultBlock(b.ID, result.Content, result.IsError))
			}
		}

		if resp.StopReason == anthropic.StopReasonEndTurn || len(toolResults) == 0 {
			return nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		messages = append(messages, anthropic.NewUserMessage(toolResults...))
	}

	return fmt.Errorf("agent exceeded %d turns without finishing", maxAgentTurns)
}

func (r *APIRunner) emit(ev StreamEvent) {
	select {
	case r.output <- ev:
	default:
		// Slow consumers drop intermediate events rather than stall the loop.
	}
}
