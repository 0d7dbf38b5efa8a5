package docstore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gao-dev/gao/pkg/models"
)

// activeDocument registers a file-backed document and walks it to active.
func activeDocument(t *testing.T, s *Store, relPath string) *models.Document {
	t.Helper()
	writeProjectFile(t, s, relPath, "content of "+relPath)
	doc := mustRegister(t, s, RegisterInput{Path: relPath, Type: models.DocTypePRD})
	forceState(t, s, doc.ID, models.DocStateActive)
	return doc
}

func TestArchiveMovesFileAndState(t *testing.T) {
	s := setupStore(t)
	doc := activeDocument(t, s, "docs/PRD.md")

	if err := s.Archive(doc.ID, "superseded", "tester"); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.ProjectRoot(), "docs/PRD.md")); !os.IsNotExist(err) {
		t.Error("original file still present after archive")
	}
	archived := filepath.Join(ArchiveDir(s.ProjectRoot()), "docs/PRD.md")
	if _, err := os.Stat(archived); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	got, err := s.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != models.DocStateArchived {
		t.Errorf("state = %s, want archived", got.State)
	}
}

func TestRestoreReversesArchive(t *testing.T) {
	s := setupStore(t)
	doc := activeDocument(t, s, "docs/PRD.md")

	if err := s.Archive(doc.ID, "", ""); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if err := s.Restore(doc.ID, "needed again", "tester"); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.ProjectRoot(), "docs/PRD.md")); err != nil {
		t.Errorf("restored file missing: %v", err)
	}

	got, err := s.Get(doc.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.State != models.DocStateActive {
		t.Errorf("state = %s, want active", got.State)
	}
}

func TestArchiveFromDraftIsIllegal(t *testing.T) {
	s := setupStore(t)
	writeProjectFile(t, s, "docs/draft.md", "wip")
	doc := mustRegister(t, s, RegisterInput{Path: "docs/draft.md", Type: models.DocTypeOther})

	err := s.Archive(doc.ID, "", "")
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("error = %v, want InvalidTransitionError", err)
	}

	if _, err := os.Stat(filepath.Join(s.ProjectRoot(), "docs/draft.md")); err != nil {
		t.Error("file was moved despite illegal transition")
	}
}

func TestArchiveMissingFileLeavesStateUnchanged(t *testing.T) {
	s := setupStore(t)
	doc := mustRegister(t, s, RegisterInput{Path: "docs/ghost.md", Type: models.DocTypeOther})
	forceState(t, s, doc.ID, models.DocStateActive)

	err := s.Archive(doc.ID, "", "")
	var ae *ArchivalError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want ArchivalError", err)
	}

	got, _ := s.Get(doc.ID)
	if got.State != models.DocStateActive {
		t.Errorf("state = %s, want active after failed archive", got.State)
	}
}

func TestArchiveRollsBackFileOnStateFailure(t *testing.T) {
	s := setupStore(t)
	doc := activeDocument(t, s, "docs/PRD.md")

	// Simulate a catalog write failure: dropping the transitions table
	// makes the audit insert fail inside the transition transaction.
	if _, err := s.exec("DROP TABLE transitions"); err != nil {
		t.Fatalf("drop transitions: %v", err)
	}

	err := s.Archive(doc.ID, "", "")
	var ae *ArchivalError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want ArchivalError", err)
	}

	// The file must be back at its original location.
	if _, statErr := os.Stat(filepath.Join(s.ProjectRoot(), "docs/PRD.md")); statErr != nil {
		t.Errorf("original file not rolled back: %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(ArchiveDir(s.ProjectRoot()), "docs/PRD.md")); !os.IsNotExist(statErr) {
		t.Error("archived copy left behind after rollback")
	}

	// And the document state must be untouched.
	got, getErr := s.Get(doc.ID)
	if getErr != nil {
		t.Fatalf("Get failed: %v", getErr)
	}
	if got.State != models.DocStateActive {
		t.Errorf("state = %s, want active after rollback", got.State)
	}
}
