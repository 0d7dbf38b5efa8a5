// Package executor runs a selected workflow sequence: setup workflows
// once, then the iterative story loop, delegating each step to an agent
// runner and registering detected artifacts into the document catalog.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gao-dev/gao/internal/agentrunner"
	"github.com/gao-dev/gao/internal/artifact"
	"github.com/gao-dev/gao/internal/docstore"
	"github.com/gao-dev/gao/internal/variables"
	"github.com/gao-dev/gao/pkg/models"
)

// hardStoryCap bounds the story loop regardless of estimates or
// configuration. A runaway estimate must never run unbounded.
const hardStoryCap = 100

// UsageReporter reports accumulated token usage for a run.
// *agentrunner.TokenTracker satisfies it.
type UsageReporter interface {
	Total() (input, output int64)
	Cost() float64
}

// Options configures sequence execution.
type Options struct {
	// StepTimeout is the per-step execution budget. Zero means no timeout.
	StepTimeout time.Duration
	// MaxStories caps the story loop below the hard cap. Zero means the
	// hard cap alone applies.
	MaxStories int
	// Author is recorded on registered documents.
	Author string
	// ToolAllowList restricts agent tools. Nil permits all tools.
	ToolAllowList []string
	// Usage, when set, feeds token totals into the run result.
	Usage UsageReporter
}

// Request describes one sequence execution.
type Request struct {
	// ProjectRoot is the directory all steps operate in.
	ProjectRoot string
	// Prompt is the original user request, exposed to templates as
	// {{request}}.
	Prompt string
	// Sequence is the selected execution plan.
	Sequence models.WorkflowSequence
	// Runtime supplies caller-provided variable overrides.
	Runtime map[string]string
}

// Executor drives the two-phase execution state machine:
// NOT_STARTED → RUNNING_SETUP → RUNNING_STORY_LOOP → COMPLETED | FAILED.
type Executor struct {
	store    docstore.Registry
	factory  agentrunner.Factory
	resolver *variables.Resolver
	opts     Options

	mu     sync.Mutex
	status models.RunStatus

	events chan Event
	logger *log.Logger
}

// New creates an Executor over the given collaborators.
func New(store docstore.Registry, factory agentrunner.Factory, resolver *variables.Resolver, opts Options) *Executor {
	if opts.Author == "" {
		opts.Author = "gao"
	}
	return &Executor{
		store:    store,
		factory:  factory,
		resolver: resolver,
		opts:     opts,
		status:   models.RunNotStarted,
		events:   make(chan Event, 128),
	}
}

// Events returns the event stream for this run. The channel is closed
// when Execute returns.
func (e *Executor) Events() <-chan Event {
	return e.events
}

// Status returns the current run status.
func (e *Executor) Status() models.RunStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Executor) setStatus(s models.RunStatus) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Execute runs the sequence to completion or first failure. Cancelling
// ctx prevents any further step from starting; completed steps keep
// their registered documents.
func (e *Executor) Execute(ctx context.Context, req Request) (*models.WorkflowResult, error) {
	defer close(e.events)

	if req.Sequence.NeedsClarification() {
		return nil, fmt.Errorf("execute sequence: sequence needs clarification, not execution")
	}
	if len(req.Sequence.Workflows) == 0 {
		return nil, fmt.Errorf("execute sequence: empty sequence")
	}

	e.openLog(req.ProjectRoot)
	start := time.Now()

	result := &models.WorkflowResult{Status: models.RunFailed}
	finish := func(err error) (*models.WorkflowResult, error) {
		result.Duration = time.Since(start)
		if e.opts.Usage != nil {
			in, out := e.opts.Usage.Total()
			result.TokensUsed = in + out
			result.Cost = e.opts.Usage.Cost()
		}
		if err != nil {
			e.setStatus(models.RunFailed)
			result.Status = models.RunFailed
			result.Error = err.Error()
			e.emit(Event{Type: EventRunFailed, Error: err})
			e.logf("run failed: %v", err)
			return result, err
		}
		e.setStatus(models.RunCompleted)
		result.Status = models.RunCompleted
		e.emit(Event{Type: EventRunCompleted, Artifacts: result.Artifacts,
			Message: fmt.Sprintf("%d artifacts, %d stories", len(result.Artifacts), result.StoriesRun)})
		e.logf("run completed: %d artifacts, %d stories, %s", len(result.Artifacts), result.StoriesRun, result.Duration)
		return result, nil
	}

	setup, triad, perEpicSpec := partition(req.Sequence)

	e.setStatus(models.RunRunningSetup)
	e.emit(Event{Type: EventRunStarted, Message: req.Sequence.Rationale})
	e.logf("run started: %s", req.Sequence.Rationale)

	for _, def := range setup {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		docs, err := e.runStep(ctx, req, def, 1, 0)
		if err != nil {
			result.FailingStep = &models.FailingStep{Workflow: def.Name}
			return finish(err)
		}
		result.Artifacts = append(result.Artifacts, docs...)
	}

	if len(triad) == 0 {
		return finish(nil)
	}

	e.setStatus(models.RunRunningStoryLoop)

	stories := storyCount(req.Sequence.EstimatedStories, e.opts.MaxStories)
	epics := req.Sequence.EstimatedEpics
	if epics < 1 {
		epics = 1
	}
	perEpic := (stories + epics - 1) / epics

	currentEpic := 0
	for story := 1; story <= stories; story++ {
		epic := (story-1)/perEpic + 1

		if epic != currentEpic {
			currentEpic = epic
			e.emit(Event{Type: EventEpicStarted, Epic: epic})
			e.logf("epic %d started", epic)

			if perEpicSpec != nil {
				if err := ctx.Err(); err != nil {
					return finish(err)
				}
				docs, err := e.runStep(ctx, req, *perEpicSpec, epic, 0)
				if err != nil {
					result.FailingStep = &models.FailingStep{Workflow: perEpicSpec.Name, Epic: epic}
					return finish(err)
				}
				result.Artifacts = append(result.Artifacts, docs...)
			}
		}

		for _, def := range triad {
			if err := ctx.Err(); err != nil {
				return finish(err)
			}
			docs, err := e.runStep(ctx, req, def, epic, story)
			if err != nil {
				result.FailingStep = &models.FailingStep{Workflow: def.Name, Epic: epic, Story: story}
				return finish(err)
			}
			result.Artifacts = append(result.Artifacts, docs...)
		}

		result.StoriesRun++
		e.emit(Event{Type: EventStoryCompleted, Epic: epic, Story: story})
		e.logf("story %d/%d completed (epic %d)", story, stories, epic)
	}

	return finish(nil)
}

// partition splits a sequence into setup workflows and the story triad.
// When the sequence generates tech specs per epic, the tech-spec workflow
// moves out of setup and is returned separately.
func partition(seq models.WorkflowSequence) (setup []models.WorkflowDefinition, triad []models.WorkflowDefinition, perEpicSpec *models.WorkflowDefinition) {
	for _, def := range seq.Workflows {
		if def.IsStoryStep() {
			triad = append(triad, def)
			continue
		}
		if seq.PerEpicTechSpec && def.Name == models.WorkflowTechSpec {
			d := def
			perEpicSpec = &d
			continue
		}
		setup = append(setup, def)
	}
	return setup, triad, perEpicSpec
}

// storyCount applies the configured cap and the hard cap to an estimate.
func storyCount(estimated, maxStories int) int {
	n := estimated
	if n < 1 {
		n = 1
	}
	if maxStories > 0 && n > maxStories {
		n = maxStories
	}
	if n > hardStoryCap {
		n = hardStoryCap
	}
	return n
}

// runStep executes one workflow: resolve and render variables, snapshot,
// delegate to the agent runner under the step timeout, snapshot again,
// and register every added or modified file as a document.
func (e *Executor) runStep(ctx context.Context, req Request, def models.WorkflowDefinition, epic, story int) ([]models.Document, error) {
	e.emit(Event{Type: EventStepStarted, Workflow: def.Name, Epic: epic, Story: story})
	e.logf("step %s started (epic %d, story %d)", def.Name, epic, story)

	runtime := make(map[string]string, len(req.Runtime)+3)
	for k, v := range req.Runtime {
		runtime[k] = v
	}
	runtime["request"] = req.Prompt
	runtime["epic_number"] = strconv.Itoa(epic)
	if story > 0 {
		runtime["story_number"] = strconv.Itoa(story)
	}

	vars, err := e.resolver.Resolve(def, runtime)
	if err != nil {
		return nil, &StepExecutionError{Workflow: def.Name, Kind: StepKindVariables, Epic: epic, Story: story, Err: err}
	}
	instructions, err := variables.Render(def.Instructions, vars)
	if err != nil {
		return nil, &StepExecutionError{Workflow: def.Name, Kind: StepKindVariables, Epic: epic, Story: story, Err: err}
	}

	before, err := artifact.Take(req.ProjectRoot)
	if err != nil {
		return nil, &StepExecutionError{Workflow: def.Name, Kind: StepKindDetect, Epic: epic, Story: story, Err: err}
	}

	// The watcher is a hint for progress reporting; detection correctness
	// rests on the snapshot diff.
	watcher, werr := artifact.Watch(req.ProjectRoot)
	if werr != nil {
		e.logf("step %s: watcher unavailable: %v", def.Name, werr)
	}

	stepErr := e.delegate(ctx, def, instructions, req.ProjectRoot, epic, story)

	if watcher != nil {
		touched := watcher.Touched()
		watcher.Close()
		e.logf("step %s: watcher saw %d touched paths", def.Name, len(touched))
	}

	if stepErr != nil {
		return nil, stepErr
	}

	after, err := artifact.Take(req.ProjectRoot)
	if err != nil {
		return nil, &StepExecutionError{Workflow: def.Name, Kind: StepKindDetect, Epic: epic, Story: story, Err: err}
	}

	var docs []models.Document
	for _, path := range artifact.Diff(before, after) {
		doc, err := e.store.Register(docstore.RegisterInput{
			Path:        path,
			Type:        InferDocumentType(def.Name, path),
			Author:      e.opts.Author,
			ContentHash: after[path],
			Epic:        epic,
			Story:       story,
			Metadata:    map[string]string{"workflow": def.Name},
		})
		if err != nil {
			return nil, &StepExecutionError{Workflow: def.Name, Kind: StepKindRegister, Epic: epic, Story: story, Err: err}
		}
		docs = append(docs, *doc)
	}

	e.emit(Event{Type: EventStepCompleted, Workflow: def.Name, Epic: epic, Story: story, Artifacts: docs})
	e.logf("step %s completed: %d artifacts", def.Name, len(docs))
	return docs, nil
}

// delegate hands the rendered instructions to a fresh runner under the
// per-step deadline.
func (e *Executor) delegate(ctx context.Context, def models.WorkflowDefinition, instructions, projectRoot string, epic, story int) error {
	stepCtx := ctx
	var cancel context.CancelFunc
	if e.opts.StepTimeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, e.opts.StepTimeout)
		defer cancel()
	}

	runner := e.factory.NewRunner()
	if err := runner.Start(stepCtx, instructions, projectRoot, e.opts.ToolAllowList); err != nil {
		return &StepExecutionError{Workflow: def.Name, Kind: StepKindAgent, Epic: epic, Story: story, Err: err}
	}

	for ev := range runner.Output() {
		if ev.Type == agentrunner.StreamEventText {
			e.emit(Event{Type: EventAgentOutput, Workflow: def.Name, Epic: epic, Story: story, Message: ev.Content})
		}
	}

	if err := runner.Wait(); err != nil {
		// A deadline hit on the step context, not the run context, is a
		// step timeout.
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return &TimeoutError{Workflow: def.Name, Epic: epic, Story: story, Timeout: e.opts.StepTimeout}
		}
		return &StepExecutionError{Workflow: def.Name, Kind: StepKindAgent, Epic: epic, Story: story, Err: err}
	}
	return nil
}

// emit delivers an event without ever blocking execution.
func (e *Executor) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
	}
}

// openLog creates the per-run log file under .gao-dev/logs/.
func (e *Executor) openLog(projectRoot string) {
	logDir := filepath.Join(projectRoot, ".gao-dev", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}
	name := fmt.Sprintf("run-%s.log", time.Now().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(logDir, name))
	if err != nil {
		return
	}
	e.logger = log.New(f, "", log.LstdFlags)
}

func (e *Executor) logf(format string, args ...any) {
	if e.logger != nil {
		e.logger.Printf(format, args...)
	}
}
