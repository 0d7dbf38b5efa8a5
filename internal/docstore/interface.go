package docstore

import (
	"io"

	"github.com/gao-dev/gao/pkg/models"
)

// Registry handles document registration and lookup.
type Registry interface {
	Register(in RegisterInput) (*models.Document, error)
	Get(id string) (*models.Document, error)
	GetByPath(path string) (*models.Document, error)
	List(filter ListFilter) ([]models.Document, error)
	Search(term string) ([]models.Document, error)
}

// StateMachine handles validated lifecycle transitions.
type StateMachine interface {
	Transition(id string, to models.DocumentState, reason, actor string) (*models.Transition, error)
	History(documentID string) ([]models.Transition, error)
}

// Archiver handles atomic archive and restore operations.
type Archiver interface {
	Archive(id, reason, actor string) error
	Restore(id, reason, actor string) error
}

// Lifecycle is the full document lifecycle surface the executor and CLI
// depend on. Abstracting it keeps the executor testable without SQLite.
type Lifecycle interface {
	io.Closer
	Registry
	StateMachine
	Archiver
}

// Compile-time verification that Store implements all interfaces.
var (
	_ Lifecycle    = (*Store)(nil)
	_ Registry     = (*Store)(nil)
	_ StateMachine = (*Store)(nil)
	_ Archiver     = (*Store)(nil)
)
