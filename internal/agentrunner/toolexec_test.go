package agentrunner

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupExecutor(t *testing.T) (*ToolExecutor, string) {
	t.Helper()
	dir := t.TempDir()
	return NewToolExecutor(dir), dir
}

func TestReadToolNumbersLines(t *testing.T) {
	exec, dir := setupExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "notes.md"), []byte("alpha\nbeta"), 0644); err != nil {
		t.Fatal(err)
	}

	result := exec.Execute("Read", json.RawMessage(`{"file_path": "notes.md"}`))
	if result.IsError {
		t.Fatalf("read failed: %s", result.Content)
	}
	if !strings.Contains(result.Content, "1\talpha") || !strings.Contains(result.Content, "2\tbeta") {
		t.Errorf("unexpected read output: %q", result.Content)
	}
}

func TestWriteToolCreatesParentDirs(t *testing.T) {
	exec, dir := setupExecutor(t)

	result := exec.Execute("Write", json.RawMessage(`{"file_path": "docs/prd.md", "content": "# PRD"}`))
	if result.IsError {
		t.Fatalf("write failed: %s", result.Content)
	}

	content, err := os.ReadFile(filepath.Join(dir, "docs", "prd.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "# PRD" {
		t.Errorf("content = %q", content)
	}
}

func TestEditToolRejectsAmbiguousMatch(t *testing.T) {
	exec, dir := setupExecutor(t)
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x x"), 0644); err != nil {
		t.Fatal(err)
	}

	result := exec.Execute("Edit", json.RawMessage(`{"file_path": "a.txt", "old_string": "x", "new_string": "y"}`))
	if !result.IsError {
		t.Fatal("expected ambiguity error")
	}

	result = exec.Execute("Edit", json.RawMessage(`{"file_path": "a.txt", "old_string": "x", "new_string": "y", "replace_all": true}`))
	if result.IsError {
		t.Fatalf("replace_all edit failed: %s", result.Content)
	}
	content, _ := os.ReadFile(filepath.Join(dir, "a.txt"))
	if string(content) != "y y" {
		t.Errorf("content = %q", content)
	}
}

func TestToolsRejectPathsOutsideWorkDir(t *testing.T) {
	exec, _ := setupExecutor(t)

	for _, input := range []string{
		`{"file_path": "../escape.txt"}`,
		`{"file_path": "/etc/passwd"}`,
		`{"file_path": "docs/../../escape.txt"}`,
	} {
		result := exec.Execute("Read", json.RawMessage(input))
		if !result.IsError {
			t.Errorf("input %s: expected confinement error", input)
		}
	}
}

func TestListToolDefaultsToRoot(t *testing.T) {
	exec, dir := setupExecutor(t)
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x"), 0644); err != nil {
		t.Fatal(err)
	}

	result := exec.Execute("List", json.RawMessage(`{}`))
	if result.IsError {
		t.Fatalf("list failed: %s", result.Content)
	}
	if !strings.Contains(result.Content, "docs/") || !strings.Contains(result.Content, "go.mod") {
		t.Errorf("listing = %q", result.Content)
	}
}

func TestUnknownToolIsAnError(t *testing.T) {
	exec, _ := setupExecutor(t)
	result := exec.Execute("Bash", json.RawMessage(`{}`))
	if !result.IsError {
		t.Error("expected unknown-tool error")
	}
}

func TestToolDefinitionsHonorAllowList(t *testing.T) {
	all := ToolDefinitions(nil)
	if len(all) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(all))
	}

	readOnly := ToolDefinitions([]string{"Read", "List"})
	if len(readOnly) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(readOnly))
	}
	for _, tool := range readOnly {
		if tool.OfTool.Name != "Read" && tool.OfTool.Name != "List" {
			t.Errorf("unexpected tool %s", tool.OfTool.Name)
		}
	}
}

func TestTokenTrackerAccumulates(t *testing.T) {
	tracker := NewTokenTracker()
	tracker.Add(1000, 500)
	tracker.Add(2000, 1500)

	in, out := tracker.Total()
	if in != 3000 || out != 2000 {
		t.Errorf("totals = %d/%d", in, out)
	}
	if tracker.Calls() != 2 {
		t.Errorf("calls = %d", tracker.Calls())
	}
	if tracker.Cost() <= 0 {
		t.Error("cost should be positive")
	}
}
