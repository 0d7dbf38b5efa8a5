// Package workflow holds the built-in workflow definitions and loads
// project-level overrides from .gao-dev/workflows/*.yaml.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gao-dev/gao/pkg/models"
)

// Registry resolves workflow names to definitions. Built-ins are always
// present; project overrides replace built-ins by name.
type Registry struct {
	defs map[string]models.WorkflowDefinition
}

// NewRegistry returns a registry with the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]models.WorkflowDefinition)}
	for _, def := range builtins() {
		r.defs[def.Name] = def
	}
	return r
}

// LoadOverrides reads YAML workflow definitions from
// <projectRoot>/.gao-dev/workflows/ and replaces built-ins by name.
// A missing directory is not an error.
func (r *Registry) LoadOverrides(projectRoot string) error {
	dir := filepath.Join(projectRoot, ".gao-dev", "workflows")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read workflows directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read workflow file %s: %w", entry.Name(), err)
		}

		var def models.WorkflowDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return fmt.Errorf("parse workflow file %s: %w", entry.Name(), err)
		}
		if def.Name == "" {
			return fmt.Errorf("workflow file %s: missing name", entry.Name())
		}
		r.defs[def.Name] = def
	}

	return nil
}

// Get returns the definition for a workflow name.
func (r *Registry) Get(name string) (models.WorkflowDefinition, error) {
	def, ok := r.defs[name]
	if !ok {
		return models.WorkflowDefinition{}, fmt.Errorf("unknown workflow %q", name)
	}
	return def, nil
}

// Names returns all registered workflow names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtins returns the engine's built-in workflow definitions. Output
// paths and instructions are templates rendered by the variable resolver
// before delegation.
func builtins() []models.WorkflowDefinition {
	return []models.WorkflowDefinition{
		{
			Name:       models.WorkflowDocumentProject,
			Phase:      models.PhaseDiscovery,
			OutputPath: "docs/project-overview.md",
			Instructions: `Survey the existing codebase at {{project_root}} and write
docs/project-overview.md describing its structure, tech stack, entry
points, and conventions. Date: {{date}}.`,
		},
		{
			Name:       models.WorkflowGameBrief,
			Phase:      models.PhaseDiscovery,
			OutputPath: "docs/game-brief.md",
			Variables: []models.VariableSpec{
				{Name: "request", Required: true, Description: "the original user request"},
			},
			Instructions: `Write docs/game-brief.md for this game request:

{{request}}

Cover the core loop, target platform, and scope. Date: {{date}}.`,
		},
		{
			Name:       models.WorkflowGameDesignDoc,
			Phase:      models.PhasePlanning,
			OutputPath: "docs/game-design.md",
			Variables: []models.VariableSpec{
				{Name: "request", Required: true},
			},
			Instructions: `Using docs/game-brief.md, write docs/game-design.md with full
mechanics, progression, and content breakdown for:

{{request}}`,
		},
		{
			Name:       models.WorkflowRequirementsDoc,
			Phase:      models.PhasePlanning,
			OutputPath: "docs/PRD.md",
			Variables: []models.VariableSpec{
				{Name: "request", Required: true},
			},
			Instructions: `Write docs/PRD.md for {{project_name}} covering this request:

{{request}}

Include goals, user stories grouped into epics, and acceptance criteria.
Date: {{date}}.`,
		},
		{
			Name:       models.WorkflowArchitectureDoc,
			Phase:      models.PhaseArchitecture,
			OutputPath: "docs/architecture.md",
			Variables: []models.VariableSpec{
				{Name: "request", Required: true},
			},
			Instructions: `Using docs/PRD.md, write docs/architecture.md for {{project_name}}:
component breakdown, data model, technology choices, and epic-level
delivery plan for:

{{request}}`,
		},
		{
			Name:       models.WorkflowTechSpec,
			Phase:      models.PhaseArchitecture,
			OutputPath: "docs/tech-spec-epic-{{epic_number}}.md",
			Variables: []models.VariableSpec{
				{Name: "request", Required: true},
				{Name: "epic_number", Default: "1"},
			},
			Instructions: `Write docs/tech-spec-epic-{{epic_number}}.md: the concrete technical
plan (interfaces, file layout, test strategy) for epic {{epic_number}} of:

{{request}}

Consult docs/PRD.md and docs/architecture.md if present.`,
		},
		{
			Name:       models.WorkflowCreateStory,
			Phase:      models.PhaseStory,
			OutputPath: "docs/stories/story-{{story_number}}.md",
			Variables: []models.VariableSpec{
				{Name: "story_number", Required: true},
				{Name: "epic_number", Default: "1"},
			},
			Instructions: `Create docs/stories/story-{{story_number}}.md: the next unimplemented
story for epic {{epic_number}}, derived from the tech spec. Include
acceptance criteria and the files expected to change.`,
		},
		{
			Name:  models.WorkflowImplementStory,
			Phase: models.PhaseStory,
			Variables: []models.VariableSpec{
				{Name: "story_number", Required: true},
			},
			Instructions: `Implement docs/stories/story-{{story_number}}.md. Make the code
changes it describes, keeping to the project's conventions. Run nothing
destructive outside {{project_root}}.`,
		},
		{
			Name:  models.WorkflowCloseStory,
			Phase: models.PhaseStory,
			Variables: []models.VariableSpec{
				{Name: "story_number", Required: true},
			},
			Instructions: `Review the implementation of story {{story_number}} against its
acceptance criteria, then append a completion note with date {{date}} to
docs/stories/story-{{story_number}}.md.`,
		},
	}
}
