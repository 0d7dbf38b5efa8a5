package variables

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gao-dev/gao/pkg/models"
)

func testResolver(projectDefaults map[string]string) *Resolver {
	r := New("/work/billing-platform", projectDefaults)
	r.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return r
}

func TestResolvePriority(t *testing.T) {
	def := models.WorkflowDefinition{
		Name: "tech-spec",
		Variables: []models.VariableSpec{
			{Name: "author", Default: "workflow-default"},
			{Name: "format", Default: "markdown"},
		},
	}

	r := testResolver(map[string]string{
		"author": "project-default",
		"team":   "platform",
	})

	vars, err := r.Resolve(def, map[string]string{"author": "runtime"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	// runtime > workflow default > project default
	if vars["author"] != "runtime" {
		t.Errorf("author = %q, want runtime value", vars["author"])
	}
	if vars["format"] != "markdown" {
		t.Errorf("format = %q, want workflow default", vars["format"])
	}
	if vars["team"] != "platform" {
		t.Errorf("team = %q, want project default", vars["team"])
	}
}

func TestResolveWorkflowDefaultBeatsProjectDefault(t *testing.T) {
	def := models.WorkflowDefinition{
		Name:      "tech-spec",
		Variables: []models.VariableSpec{{Name: "format", Default: "asciidoc"}},
	}
	r := testResolver(map[string]string{"format": "markdown"})

	vars, err := r.Resolve(def, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if vars["format"] != "asciidoc" {
		t.Errorf("format = %q, want workflow default over project default", vars["format"])
	}
}

func TestResolveComputedCommons(t *testing.T) {
	r := testResolver(nil)

	vars, err := r.Resolve(models.WorkflowDefinition{Name: "create-story"}, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if vars["date"] != "2026-03-14" {
		t.Errorf("date = %q", vars["date"])
	}
	if vars["project_name"] != "billing-platform" {
		t.Errorf("project_name = %q", vars["project_name"])
	}
	if vars["project_root"] != "/work/billing-platform" {
		t.Errorf("project_root = %q", vars["project_root"])
	}
	if !strings.HasPrefix(vars["timestamp"], "2026-03-14T09:30:00") {
		t.Errorf("timestamp = %q", vars["timestamp"])
	}
}

func TestResolveMissingRequired(t *testing.T) {
	def := models.WorkflowDefinition{
		Name:      "implement-story",
		Variables: []models.VariableSpec{{Name: "story_file", Required: true}},
	}
	r := testResolver(nil)

	_, err := r.Resolve(def, nil)
	var mve *MissingVariableError
	if !errors.As(err, &mve) {
		t.Fatalf("error = %v, want MissingVariableError", err)
	}
	if mve.Variable != "story_file" || mve.Workflow != "implement-story" {
		t.Errorf("error names %q/%q", mve.Variable, mve.Workflow)
	}
}

func TestResolveRequiredSatisfiedByAnyLayer(t *testing.T) {
	def := models.WorkflowDefinition{
		Name:      "tech-spec",
		Variables: []models.VariableSpec{{Name: "language", Required: true}},
	}
	r := testResolver(map[string]string{"language": "go"})

	vars, err := r.Resolve(def, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if vars["language"] != "go" {
		t.Errorf("language = %q", vars["language"])
	}
}

func TestRender(t *testing.T) {
	got, err := Render("Story {{story_number}} for {{ project_name }} on {{date}}", map[string]string{
		"story_number": "4",
		"project_name": "billing",
		"date":         "2026-03-14",
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "Story 4 for billing on 2026-03-14" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderUnresolvedTokens(t *testing.T) {
	_, err := Render("{{a}} and {{b}} and {{a}}", map[string]string{"b": "set"})
	var ute *UnresolvedTemplateError
	if !errors.As(err, &ute) {
		t.Fatalf("error = %v, want UnresolvedTemplateError", err)
	}
	if len(ute.Tokens) != 1 || ute.Tokens[0] != "a" {
		t.Errorf("Tokens = %v, want [a]", ute.Tokens)
	}
}

func TestRenderNoTokens(t *testing.T) {
	got, err := Render("plain text, no substitution", nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "plain text, no substitution" {
		t.Errorf("Render = %q", got)
	}
}

func TestRenderDanglingBraces(t *testing.T) {
	got, err := Render("open {{ but never closed", nil)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if got != "open {{ but never closed" {
		t.Errorf("Render = %q", got)
	}
}

func TestResolveThenRenderLeavesNoTokens(t *testing.T) {
	def := models.WorkflowDefinition{
		Name: "create-story",
		Variables: []models.VariableSpec{
			{Name: "epic_number", Required: true},
			{Name: "story_number", Required: true},
		},
	}
	r := testResolver(nil)

	vars, err := r.Resolve(def, map[string]string{"epic_number": "2", "story_number": "7"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	out, err := Render("docs/stories/epic-{{epic_number}}-story-{{story_number}}-{{date}}.md", vars)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("rendered output still contains tokens: %q", out)
	}
}
