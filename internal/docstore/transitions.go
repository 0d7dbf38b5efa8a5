package docstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gao-dev/gao/pkg/models"
)

// legalEdges is the fixed table of allowed state transitions. The review
// loop runs draft -> in_review -> active -> updated -> in_review; active
// documents may be obsoleted; active and obsolete documents may be
// archived. archived -> active exists only for Restore.
var legalEdges = map[models.DocumentState][]models.DocumentState{
	models.DocStateDraft:    {models.DocStateInReview},
	models.DocStateInReview: {models.DocStateActive},
	models.DocStateActive:   {models.DocStateUpdated, models.DocStateObsolete, models.DocStateArchived},
	models.DocStateUpdated:  {models.DocStateInReview},
	models.DocStateObsolete: {models.DocStateArchived},
	models.DocStateArchived: {models.DocStateActive},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to models.DocumentState) bool {
	for _, next := range legalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves a document to a new state, validating against the
// legal-edge table and appending an audit row in the same transaction.
// Illegal edges return InvalidTransitionError and leave state unchanged.
func (s *Store) Transition(id string, to models.DocumentState, reason, actor string) (*models.Transition, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("transition document %s: unknown state %q", id, to)
	}

	doc, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(doc.State, to) {
		return nil, &InvalidTransitionError{DocumentID: id, From: doc.State, To: to}
	}

	tr := &models.Transition{
		ID:         uuid.NewString(),
		DocumentID: id,
		FromState:  doc.State,
		ToState:    to,
		Reason:     reason,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
	}

	err = s.transaction(func(tx *sql.Tx) error {
		res, err := tx.Exec(`
			UPDATE documents SET state = ?, updated_at = ? WHERE id = ? AND state = ?
		`, string(to), formatTime(tr.Timestamp), id, string(doc.State))
		if err != nil {
			return fmt.Errorf("update state: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			// State changed underneath us between read and write.
			return &InvalidTransitionError{DocumentID: id, From: doc.State, To: to}
		}

		if _, err := tx.Exec(`
			INSERT INTO transitions (id, document_id, from_state, to_state, reason, actor, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, tr.ID, tr.DocumentID, string(tr.FromState), string(tr.ToState), tr.Reason, tr.Actor, formatTime(tr.Timestamp)); err != nil {
			return fmt.Errorf("append transition: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tr, nil
}

// History returns the append-only transition trail for a document, oldest
// first.
func (s *Store) History(documentID string) ([]models.Transition, error) {
	rows, err := s.query(`
		SELECT id, document_id, from_state, to_state, reason, actor, timestamp
		FROM transitions WHERE document_id = ? ORDER BY timestamp, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list transitions: %w", err)
	}
	defer rows.Close()

	var trs []models.Transition
	for rows.Next() {
		var tr models.Transition
		var ts string
		if err := rows.Scan(&tr.ID, &tr.DocumentID, &tr.FromState, &tr.ToState, &tr.Reason, &tr.Actor, &ts); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		tr.Timestamp, _ = parseTime(ts)
		trs = append(trs, tr)
	}
	return trs, rows.Err()
}
