package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gao-dev/gao/pkg/models"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{
		models.WorkflowDocumentProject,
		models.WorkflowGameBrief,
		models.WorkflowGameDesignDoc,
		models.WorkflowRequirementsDoc,
		models.WorkflowArchitectureDoc,
		models.WorkflowTechSpec,
		models.WorkflowCreateStory,
		models.WorkflowImplementStory,
		models.WorkflowCloseStory,
	} {
		def, err := r.Get(name)
		if err != nil {
			t.Errorf("Get(%q) failed: %v", name, err)
			continue
		}
		if def.Instructions == "" {
			t.Errorf("builtin %q has empty instructions", name)
		}
	}
}

func TestRegistryUnknownWorkflow(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("deploy-to-mars"); err == nil {
		t.Error("expected error for unknown workflow")
	}
}

func TestLoadOverridesReplacesBuiltin(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".gao-dev", "workflows")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	override := `name: tech-spec
phase: architecture
output_path: specs/epic-{{epic_number}}.md
instructions: "Custom tech spec instructions for {{request}}"
variables:
  - name: request
    required: true
  - name: epic_number
    default: "1"
`
	if err := os.WriteFile(filepath.Join(dir, "tech-spec.yaml"), []byte(override), 0644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadOverrides(root); err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	def, err := r.Get(models.WorkflowTechSpec)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if def.OutputPath != "specs/epic-{{epic_number}}.md" {
		t.Errorf("override not applied, output path = %q", def.OutputPath)
	}
}

func TestLoadOverridesMissingDirIsFine(t *testing.T) {
	r := NewRegistry()
	if err := r.LoadOverrides(t.TempDir()); err != nil {
		t.Errorf("LoadOverrides on bare project failed: %v", err)
	}
}

func TestLoadOverridesRejectsNamelessDefinition(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".gao-dev", "workflows")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("phase: story\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadOverrides(root); err == nil {
		t.Error("expected error for nameless workflow definition")
	}
}
