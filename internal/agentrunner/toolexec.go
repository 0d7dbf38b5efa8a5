package agentrunner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ToolExecutor executes tool calls from the agent, confined to a working
// directory. Paths that escape the working directory are rejected: all
// reads and writes stay inside the project root.
type ToolExecutor struct {
	workDir string
}

// NewToolExecutor creates a tool executor rooted at workDir.
func NewToolExecutor(workDir string) *ToolExecutor {
	return &ToolExecutor{workDir: workDir}
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	Content string
	IsError bool
}

// Execute runs a tool by name with the given JSON input.
func (e *ToolExecutor) Execute(name string, input json.RawMessage) ToolResult {
	switch name {
	case "Read":
		return e.execRead(input)
	case "Write":
		return e.execWrite(input)
	case "Edit":
		return e.execEdit(input)
	case "List":
		return e.execList(input)
	default:
		return ToolResult{Content: fmt.Sprintf("Unknown tool: %s", name), IsError: true}
	}
}

// resolvePath confines a tool-supplied path to the working directory.
func (e *ToolExecutor) resolvePath(path string) (string, error) {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(e.workDir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return "", fmt.Errorf("path %q is outside the project root", path)
		}
		return path, nil
	}

	full := filepath.Join(e.workDir, path)
	rel, err := filepath.Rel(e.workDir, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q is outside the project root", path)
	}
	return full, nil
}

func (e *ToolExecutor) execRead(input json.RawMessage) ToolResult {
	var params struct {
		FilePath string `json:"file_path"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}

	path, err := e.resolvePath(params.FilePath)
	if err != nil {
		return ToolResult{Content: err.Error(), IsError: true}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to read file: %v", err), IsError: true}
	}

	var result strings.Builder
	for i, line := range strings.Split(string(content), "\n") {
		fmt.Fprintf(&result, "%6d\t%s\n", i+1, line)
	}
	return ToolResult{Content: result.String()}
}

func (e *ToolExecutor) execWrite(input json.RawMessage) ToolResult {
	var params struct {
		FilePath string `json:"file_path"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}

	path, err := e.resolvePath(params.FilePath)
	if err != nil {
		return ToolResult{Content: err.Error(), IsError: true}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to create directory: %v", err), IsError: true}
	}
	if err := os.WriteFile(path, []byte(params.Content), 0644); err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to write file: %v", err), IsError: true}
	}

	return ToolResult{Content: fmt.Sprintf("Successfully wrote %d bytes to %s", len(params.Content), params.FilePath)}
}

func (e *ToolExecutor) execEdit(input json.RawMessage) ToolResult {
	var params struct {
		FilePath   string `json:"file_path"`
		OldString  string `json:"old_string"`
		NewString  string `json:"new_string"`
		ReplaceAll bool   `json:"replace_all"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
	}

	path, err := e.resolvePath(params.FilePath)
	if err != nil {
		return ToolResult{Content: err.Error(), IsError: true}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to read file: %v", err), IsError: true}
	}
	contentStr := string(content)

	count := strings.Count(contentStr, params.OldString)
	if count == 0 {
		return ToolResult{Content: "old_string not found in file", IsError: true}
	}
	if count > 1 && !params.ReplaceAll {
		return ToolResult{Content: fmt.Sprintf("old_string matches %d locations; use replace_all or a longer match", count), IsError: true}
	}

	var updated string
	if params.ReplaceAll {
		updated = strings.ReplaceAll(contentStr, params.OldString, params.NewString)
	} else {
		updated = strings.Replace(contentStr, params.OldString, params.NewString, 1)
	}

	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to write file: %v", err), IsError: true}
	}

	return ToolResult{Content: fmt.Sprintf("Replaced %d occurrence(s) in %s", count, params.FilePath)}
}

func (e *ToolExecutor) execList(input json.RawMessage) ToolResult {
	var params struct {
		Path string `json:"path"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &params); err != nil {
			return ToolResult{Content: fmt.Sprintf("Invalid parameters: %v", err), IsError: true}
		}
	}
	if params.Path == "" {
		params.Path = "."
	}

	path, err := e.resolvePath(params.Path)
	if err != nil {
		return ToolResult{Content: err.Error(), IsError: true}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return ToolResult{Content: fmt.Sprintf("Failed to list directory: %v", err), IsError: true}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return ToolResult{Content: strings.Join(names, "\n")}
}
