package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gao-dev/gao/pkg/models"
)

// RegisterInput carries the fields needed to register an artifact.
type RegisterInput struct {
	Path        string // relative to the project root
	Type        models.DocumentType
	Author      string
	ContentHash string
	Epic        int
	Story       int
	Feature     string
	Metadata    map[string]string
}

// Register adds a document to the catalog in draft state. Registering a
// path that already exists is an idempotent update: the existing row keeps
// its ID and state while content hash, metadata, and linkage are refreshed.
func (s *Store) Register(in RegisterInput) (*models.Document, error) {
	if in.Path == "" {
		return nil, fmt.Errorf("register document: path is empty")
	}
	if in.Type == "" {
		in.Type = models.DocTypeOther
	}

	existing, err := s.GetByPath(in.Path)
	if err != nil && err != ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return s.updateExisting(existing, in)
	}

	now := time.Now().UTC()
	doc := &models.Document{
		ID:          uuid.NewString(),
		Path:        in.Path,
		Type:        in.Type,
		State:       models.DocStateDraft,
		Author:      in.Author,
		ContentHash: in.ContentHash,
		Epic:        in.Epic,
		Story:       in.Story,
		Feature:     in.Feature,
		Metadata:    in.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	metadata, _ := json.Marshal(doc.Metadata)
	_, err = s.exec(`
		INSERT INTO documents (id, path, type, state, author, content_hash, epic, story, feature, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Path, string(doc.Type), string(doc.State), doc.Author, doc.ContentHash,
		doc.Epic, doc.Story, doc.Feature, string(metadata), formatTime(now), formatTime(now))
	if err != nil {
		// Unique-index race with a concurrent Register on the same path.
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, &DuplicatePathError{Path: in.Path}
		}
		return nil, fmt.Errorf("register document: %w", err)
	}

	return doc, nil
}

// updateExisting refreshes an already-registered path in place.
func (s *Store) updateExisting(doc *models.Document, in RegisterInput) (*models.Document, error) {
	doc.UpdatedAt = time.Now().UTC()
	if in.ContentHash != "" {
		doc.ContentHash = in.ContentHash
	}
	if in.Author != "" {
		doc.Author = in.Author
	}
	if in.Epic != 0 {
		doc.Epic = in.Epic
	}
	if in.Story != 0 {
		doc.Story = in.Story
	}
	if in.Feature != "" {
		doc.Feature = in.Feature
	}
	for k, v := range in.Metadata {
		if doc.Metadata == nil {
			doc.Metadata = make(map[string]string)
		}
		doc.Metadata[k] = v
	}

	metadata, _ := json.Marshal(doc.Metadata)
	_, err := s.exec(`
		UPDATE documents SET content_hash = ?, author = ?, epic = ?, story = ?, feature = ?, metadata = ?, updated_at = ?
		WHERE id = ?
	`, doc.ContentHash, doc.Author, doc.Epic, doc.Story, doc.Feature, string(metadata), formatTime(doc.UpdatedAt), doc.ID)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

const documentColumns = "id, path, type, state, author, content_hash, epic, story, feature, metadata, created_at, updated_at"

// Get retrieves a document by ID.
func (s *Store) Get(id string) (*models.Document, error) {
	row := s.queryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetByPath retrieves a document by its project-relative path.
func (s *Store) GetByPath(path string) (*models.Document, error) {
	row := s.queryRow(`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path)
	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document by path: %w", err)
	}
	return doc, nil
}

// ListFilter narrows List results. Zero values match everything.
type ListFilter struct {
	State models.DocumentState
	Type  models.DocumentType
	Epic  int
	Story int
}

// List returns documents matching the filter, ordered by creation time.
func (s *Store) List(filter ListFilter) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var conds []string
	var args []any

	if filter.State != "" {
		conds = append(conds, "state = ?")
		args = append(args, string(filter.State))
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.Epic != 0 {
		conds = append(conds, "epic = ?")
		args = append(args, filter.Epic)
	}
	if filter.Story != 0 {
		conds = append(conds, "story = ?")
		args = append(args, filter.Story)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at, path"

	rows, err := s.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Search performs a case-insensitive substring search over path, type,
// and serialized metadata.
func (s *Store) Search(term string) ([]models.Document, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	rows, err := s.query(`
		SELECT `+documentColumns+` FROM documents
		WHERE lower(path) LIKE ? OR lower(type) LIKE ? OR lower(COALESCE(metadata, '')) LIKE ?
		ORDER BY created_at, path
	`, pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// scanDocument scans one document row via the given scan function.
func scanDocument(scan func(dest ...any) error) (*models.Document, error) {
	var d models.Document
	var metadata sql.NullString
	var createdAt, updatedAt string

	err := scan(&d.ID, &d.Path, &d.Type, &d.State, &d.Author, &d.ContentHash,
		&d.Epic, &d.Story, &d.Feature, &metadata, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if metadata.Valid && metadata.String != "" && metadata.String != "null" {
		json.Unmarshal([]byte(metadata.String), &d.Metadata)
	}
	d.CreatedAt, _ = parseTime(createdAt)
	d.UpdatedAt, _ = parseTime(updatedAt)
	return &d, nil
}

// scanDocuments scans all rows into a slice.
func scanDocuments(rows *sql.Rows) ([]models.Document, error) {
	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}
