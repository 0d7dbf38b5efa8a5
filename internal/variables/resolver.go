// Package variables merges and renders template variables for workflows.
// Resolution is a pure function with fail-fast validation: a broken
// template surfaces before any agent call is spent on it.
package variables

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gao-dev/gao/pkg/models"
)

// Resolver merges variable layers and renders {{name}} templates.
type Resolver struct {
	// projectRoot feeds the computed common variables.
	projectRoot string
	// projectDefaults come from the project config file.
	projectDefaults map[string]string
	// now is injectable for deterministic tests.
	now func() time.Time
}

// New creates a Resolver bound to a project root and its config defaults.
func New(projectRoot string, projectDefaults map[string]string) *Resolver {
	return &Resolver{
		projectRoot:     projectRoot,
		projectDefaults: projectDefaults,
		now:             time.Now,
	}
}

// Resolve merges variables by priority (highest first): runtime params,
// workflow-declared defaults, project config defaults, computed commons.
// A required variable still unset after the merge fails with
// MissingVariableError naming the variable and workflow.
func (r *Resolver) Resolve(def models.WorkflowDefinition, runtime map[string]string) (map[string]string, error) {
	vars := r.computed()

	for k, v := range r.projectDefaults {
		vars[k] = v
	}

	for _, d := range def.Variables {
		if d.Default != "" {
			vars[d.Name] = d.Default
		}
	}

	for k, v := range runtime {
		vars[k] = v
	}

	for _, d := range def.Variables {
		if d.Required && vars[d.Name] == "" {
			return nil, &MissingVariableError{Variable: d.Name, Workflow: def.Name}
		}
	}

	return vars, nil
}

// computed returns the common variables every workflow can reference.
func (r *Resolver) computed() map[string]string {
	now := r.now()
	return map[string]string{
		"date":         now.Format("2006-01-02"),
		"timestamp":    now.UTC().Format(time.RFC3339),
		"project_root": r.projectRoot,
		"project_name": filepath.Base(r.projectRoot),
	}
}

// Render substitutes {{name}} tokens in the template. Whitespace inside
// the braces is tolerated ({{ name }}). Any token left unresolved fails
// with UnresolvedTemplateError listing every leftover token.
func Render(template string, vars map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(template))

	var unresolved []string
	rest := template
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			out.WriteString(rest)
			break
		}
		end += start

		out.WriteString(rest[:start])
		name := strings.TrimSpace(rest[start+2 : end])

		if v, ok := vars[name]; ok && v != "" {
			out.WriteString(v)
		} else {
			unresolved = append(unresolved, name)
			out.WriteString(rest[start : end+2])
		}
		rest = rest[end+2:]
	}

	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return "", &UnresolvedTemplateError{Tokens: dedupe(unresolved)}
	}

	return out.String(), nil
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// MissingVariableError reports a required variable absent after merging.
type MissingVariableError struct {
	Variable string
	Workflow string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("workflow %q requires variable %q which was not provided", e.Workflow, e.Variable)
}

// UnresolvedTemplateError reports {{...}} tokens left after rendering.
type UnresolvedTemplateError struct {
	Tokens []string
}

func (e *UnresolvedTemplateError) Error() string {
	return fmt.Sprintf("template has unresolved tokens: %s", strings.Join(e.Tokens, ", "))
}
