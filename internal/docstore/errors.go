package docstore

import (
	"errors"
	"fmt"

	"github.com/gao-dev/gao/pkg/models"
)

// ErrNotFound is returned when a document does not exist in the catalog.
var ErrNotFound = errors.New("document not found")

// DuplicatePathError is returned when a registration would create a second
// catalog row for the same path.
type DuplicatePathError struct {
	Path       string
	ExistingID string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("document path %q already registered as %s", e.Path, e.ExistingID)
}

// InvalidTransitionError is returned when a requested state change is not
// a legal edge. The document's state is left unchanged.
type InvalidTransitionError struct {
	DocumentID string
	From       models.DocumentState
	To         models.DocumentState
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s for document %s", e.From, e.To, e.DocumentID)
}

// ArchivalError is returned when an archive or restore could not complete
// atomically. Whenever it is returned, both the file and the catalog row
// are in their pre-call state.
type ArchivalError struct {
	DocumentID string
	Op         string // "archive" or "restore"
	Err        error
}

func (e *ArchivalError) Error() string {
	return fmt.Sprintf("%s document %s: %v", e.Op, e.DocumentID, e.Err)
}

func (e *ArchivalError) Unwrap() error {
	return e.Err
}
