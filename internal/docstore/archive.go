package docstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gao-dev/gao/pkg/models"
)

// Archive moves a document's file into the project archive (preserving
// its relative path) and transitions it to archived. The file move and the
// state update succeed or fail together: if the catalog write fails the
// file is moved back, so no half-moved state is ever left behind.
func (s *Store) Archive(id, reason, actor string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	if !CanTransition(doc.State, models.DocStateArchived) {
		return &InvalidTransitionError{DocumentID: id, From: doc.State, To: models.DocStateArchived}
	}

	src := filepath.Join(s.projectRoot, doc.Path)
	dst := filepath.Join(ArchiveDir(s.projectRoot), doc.Path)

	if err := moveFile(src, dst); err != nil {
		return &ArchivalError{DocumentID: id, Op: "archive", Err: err}
	}

	if _, err := s.Transition(id, models.DocStateArchived, reason, actor); err != nil {
		// Roll the file back so file and state stay consistent.
		if rbErr := moveFile(dst, src); rbErr != nil {
			return &ArchivalError{DocumentID: id, Op: "archive",
				Err: fmt.Errorf("state update failed (%v) and rollback failed: %w", err, rbErr)}
		}
		return &ArchivalError{DocumentID: id, Op: "archive", Err: err}
	}

	return nil
}

// Restore moves an archived document's file back to its original location
// and transitions it to active, with the same atomicity guarantee as
// Archive.
func (s *Store) Restore(id, reason, actor string) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	if doc.State != models.DocStateArchived {
		return &InvalidTransitionError{DocumentID: id, From: doc.State, To: models.DocStateActive}
	}

	src := filepath.Join(ArchiveDir(s.projectRoot), doc.Path)
	dst := filepath.Join(s.projectRoot, doc.Path)

	if err := moveFile(src, dst); err != nil {
		return &ArchivalError{DocumentID: id, Op: "restore", Err: err}
	}

	if _, err := s.Transition(id, models.DocStateActive, reason, actor); err != nil {
		if rbErr := moveFile(dst, src); rbErr != nil {
			return &ArchivalError{DocumentID: id, Op: "restore",
				Err: fmt.Errorf("state update failed (%v) and rollback failed: %w", err, rbErr)}
		}
		return &ArchivalError{DocumentID: id, Op: "restore", Err: err}
	}

	return nil
}

// moveFile renames src to dst, creating dst's parent directories first.
func moveFile(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	return nil
}
