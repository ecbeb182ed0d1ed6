package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Feedback is an append-only comment on a request. Entries are never
// edited or deleted.
type Feedback struct {
	ID              uuid.UUID `json:"id"`
	RequestID       uuid.UUID `json:"request_id"`
	UserID          int       `json:"user_id"`
	UserDisplayName string    `json:"user_display_name"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateFeedback appends a feedback entry to a request.
func (s *service) CreateFeedback(f *Feedback) error {
	query := `
		INSERT INTO feedback (request_id, user_id, user_display_name, content, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	err := s.db.QueryRow(query, f.RequestID, f.UserID, f.UserDisplayName, f.Content).
		Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// ListFeedback returns a request's feedback, newest first.
func (s *service) ListFeedback(requestID uuid.UUID) ([]*Feedback, error) {
	query := `
		SELECT id, request_id, user_id, user_display_name, content, created_at
		FROM feedback
		WHERE request_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var entries []*Feedback
	for rows.Next() {
		f := &Feedback{}
		err := rows.Scan(&f.ID, &f.RequestID, &f.UserID, &f.UserDisplayName, &f.Content, &f.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, f)
	}
	return entries, rows.Err()
}
