package docstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gao-dev/gao/pkg/models"
)

// setupStore opens a store over a fresh temporary project root.
func setupStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	return setupStoreAt(t, root)
}

func setupStoreAt(t *testing.T, root string) *Store {
	t.Helper()
	s, err := Open(root)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// writeProjectFile creates a file under the store's project root.
func writeProjectFile(t *testing.T, s *Store, relPath, content string) {
	t.Helper()
	full := filepath.Join(s.ProjectRoot(), relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestOpenCreatesCatalog(t *testing.T) {
	root := t.TempDir()
	s := setupStoreAt(t, root)

	if _, err := os.Stat(DBPath(root)); err != nil {
		t.Errorf("catalog file missing: %v", err)
	}
	if s.ProjectRoot() != root {
		t.Errorf("ProjectRoot() = %q, want %q", s.ProjectRoot(), root)
	}
}

func TestRegisterAndGet(t *testing.T) {
	s := setupStore(t)

	doc, err := s.Register(RegisterInput{
		Path:        "docs/PRD.md",
		Type:        models.DocTypePRD,
		Author:      "tech-spec",
		ContentHash: "abc123",
		Metadata:    map[string]string{"workflow": "requirements-doc"},
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if doc.ID == "" {
		t.Error("expected non-empty document ID")
	}
	if doc.State != models.DocStateDraft {
		t.Errorf("new document state = %q, want draft", doc.State)
	}

	got, err := s.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Path != "docs/PRD.md" || got.Type != models.DocTypePRD {
		t.Errorf("Get returned %+v", got)
	}
	if got.Metadata["workflow"] != "requirements-doc" {
		t.Errorf("metadata not round-tripped: %v", got.Metadata)
	}
}

func TestGetNotFound(t *testing.T) {
	s := setupStore(t)

	if _, err := s.Get("no-such-id"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetByPath("nope.md"); err != ErrNotFound {
		t.Errorf("GetByPath(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRegisterSamePathUpdatesInPlace(t *testing.T) {
	s := setupStore(t)

	first, err := s.Register(RegisterInput{Path: "docs/spec.md", Type: models.DocTypeTechSpec, ContentHash: "h1"})
	if err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	second, err := s.Register(RegisterInput{Path: "docs/spec.md", Type: models.DocTypeTechSpec, ContentHash: "h2", Story: 3})
	if err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("re-registration created a new row: %s vs %s", second.ID, first.ID)
	}
	if second.ContentHash != "h2" {
		t.Errorf("content hash not refreshed: %q", second.ContentHash)
	}
	if second.Story != 3 {
		t.Errorf("story linkage not refreshed: %d", second.Story)
	}

	all, err := s.List(ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one row after re-registration, got %d", len(all))
	}
}

func TestListFilters(t *testing.T) {
	s := setupStore(t)

	mustRegister(t, s, RegisterInput{Path: "docs/PRD.md", Type: models.DocTypePRD})
	mustRegister(t, s, RegisterInput{Path: "docs/stories/story-1.md", Type: models.DocTypeStory, Epic: 1, Story: 1})
	mustRegister(t, s, RegisterInput{Path: "docs/stories/story-2.md", Type: models.DocTypeStory, Epic: 1, Story: 2})

	stories, err := s.List(ListFilter{Type: models.DocTypeStory})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(stories) != 2 {
		t.Errorf("List(type=story) returned %d docs, want 2", len(stories))
	}

	one, err := s.List(ListFilter{Epic: 1, Story: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(one) != 1 || one[0].Path != "docs/stories/story-2.md" {
		t.Errorf("List(epic=1,story=2) = %+v", one)
	}
}

func TestSearch(t *testing.T) {
	s := setupStore(t)

	mustRegister(t, s, RegisterInput{Path: "docs/PRD.md", Type: models.DocTypePRD})
	mustRegister(t, s, RegisterInput{Path: "docs/arch.md", Type: models.DocTypeArchitecture,
		Metadata: map[string]string{"workflow": "architecture-doc"}})

	byPath, err := s.Search("prd")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byPath) != 1 || byPath[0].Path != "docs/PRD.md" {
		t.Errorf("Search(prd) = %+v", byPath)
	}

	byMeta, err := s.Search("architecture-doc")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(byMeta) != 1 || byMeta[0].Path != "docs/arch.md" {
		t.Errorf("Search(architecture-doc) = %+v", byMeta)
	}
}

func TestProjectIsolation(t *testing.T) {
	s1 := setupStore(t)
	s2 := setupStore(t)

	mustRegister(t, s1, RegisterInput{Path: "docs/only-in-p1.md", Type: models.DocTypePRD})

	docs, err := s2.List(ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("project 2 sees %d documents from project 1", len(docs))
	}
}

func mustRegister(t *testing.T, s *Store, in RegisterInput) *models.Document {
	t.Helper()
	doc, err := s.Register(in)
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", in.Path, err)
	}
	return doc
}
