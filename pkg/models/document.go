package models

import "time"

// DocumentState is the lifecycle state of a tracked document.
type DocumentState string

const (
	DocStateDraft    DocumentState = "draft"
	DocStateInReview DocumentState = "in_review"
	DocStateActive   DocumentState = "active"
	DocStateUpdated  DocumentState = "updated"
	DocStateObsolete DocumentState = "obsolete"
	DocStateArchived DocumentState = "archived"
)

// Valid returns true if the state is a known value.
func (s DocumentState) Valid() bool {
	switch s {
	case DocStateDraft, DocStateInReview, DocStateActive,
		DocStateUpdated, DocStateObsolete, DocStateArchived:
		return true
	default:
		return false
	}
}

// DocumentType categorizes a tracked document.
type DocumentType string

const (
	DocTypePRD          DocumentType = "prd"
	DocTypeArchitecture DocumentType = "architecture"
	DocTypeTechSpec     DocumentType = "tech-spec"
	DocTypeStory        DocumentType = "story"
	DocTypeEpic         DocumentType = "epic"
	DocTypeBrief        DocumentType = "brief"
	DocTypeGameDesign   DocumentType = "game-design"
	DocTypeProjectDoc   DocumentType = "project-doc"
	DocTypeSourceCode   DocumentType = "source"
	DocTypeOther        DocumentType = "other"
)

// Document is a tracked artifact with lifecycle state, owned by exactly
// one project's catalog.
type Document struct {
	ID          string            `json:"id"`
	Path        string            `json:"path"` // relative to the project root, unique per project
	Type        DocumentType      `json:"type"`
	State       DocumentState     `json:"state"`
	Author      string            `json:"author"`
	ContentHash string            `json:"content_hash"`
	Epic        int               `json:"epic,omitempty"`
	Story       int               `json:"story,omitempty"`
	Feature     string            `json:"feature,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Transition is one append-only audit row recording a document state change.
type Transition struct {
	ID         string        `json:"id"`
	DocumentID string        `json:"document_id"`
	FromState  DocumentState `json:"from_state"`
	ToState    DocumentState `json:"to_state"`
	Reason     string        `json:"reason"`
	Actor      string        `json:"actor"`
	Timestamp  time.Time     `json:"timestamp"`
}
