package models

// Phase is the development phase a workflow belongs to.
type Phase string

const (
	PhaseDiscovery    Phase = "discovery"
	PhasePlanning     Phase = "planning"
	PhaseArchitecture Phase = "architecture"
	PhaseStory        Phase = "story"
)

// VariableSpec describes a single variable a workflow accepts.
type VariableSpec struct {
	// Name is the variable name as referenced by {{name}} tokens.
	Name string `yaml:"name"`
	// Required marks the variable as mandatory after resolution.
	Required bool `yaml:"required"`
	// Default is the workflow-declared default value, if any.
	Default string `yaml:"default"`
	// Description documents the variable for workflow authors.
	Description string `yaml:"description"`
}

// WorkflowDefinition is a named unit of work with a variable schema and
// template instructions mapped to one development phase.
type WorkflowDefinition struct {
	// Name uniquely identifies the workflow (e.g. "tech-spec").
	Name string `yaml:"name"`
	// Phase is the development phase this workflow belongs to.
	Phase Phase `yaml:"phase"`
	// Variables is the variable schema for this workflow.
	Variables []VariableSpec `yaml:"variables"`
	// OutputPath is a template for the primary artifact path
	// (e.g. "docs/tech-spec-epic-{{epic_number}}.md").
	OutputPath string `yaml:"output_path"`
	// Instructions is the prompt template delegated to the agent executor
	// after variable rendering.
	Instructions string `yaml:"instructions"`
}

// IsStoryStep returns true if this workflow is part of the
// create/implement/close story triad.
func (w WorkflowDefinition) IsStoryStep() bool {
	switch w.Name {
	case WorkflowCreateStory, WorkflowImplementStory, WorkflowCloseStory:
		return true
	default:
		return false
	}
}

// Well-known workflow names. The selector composes sequences from these
// and the executor partitions on the story triad.
const (
	WorkflowDocumentProject = "document-project"
	WorkflowGameBrief       = "game-brief"
	WorkflowGameDesignDoc   = "game-design-doc"
	WorkflowRequirementsDoc = "requirements-doc"
	WorkflowArchitectureDoc = "architecture-doc"
	WorkflowTechSpec        = "tech-spec"
	WorkflowCreateStory     = "create-story"
	WorkflowImplementStory  = "implement-story"
	WorkflowCloseStory      = "close-story"
)

// WorkflowSequence is an ordered list of workflows plus story and epic
// estimates selected for a request.
type WorkflowSequence struct {
	// Workflows is the ordered execution plan. Empty when clarification
	// is needed; callers must not execute an empty sequence.
	Workflows []WorkflowDefinition
	// EstimatedStories bounds the story loop (further capped by the
	// executor's hard cap).
	EstimatedStories int
	// EstimatedEpics is the number of epics the plan covers. Sequences
	// with EstimatedEpics > 1 generate a tech-spec per epic just in time.
	EstimatedEpics int
	// PerEpicTechSpec indicates the tech-spec workflow runs once per epic
	// inside the loop instead of once during setup.
	PerEpicTechSpec bool
	// Rationale explains the routing decision for observability.
	Rationale string
	// ClarifyingQuestions is populated instead of Workflows when the
	// classifier could not commit to a plan.
	ClarifyingQuestions []string
}

// NeedsClarification returns true if the sequence is a clarification
// response rather than an executable plan.
func (s WorkflowSequence) NeedsClarification() bool {
	return len(s.Workflows) == 0 && len(s.ClarifyingQuestions) > 0
}
