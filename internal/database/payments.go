package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Payment is a recorded ledger entry against a request. No gateway is
// integrated here; processing is an external collaborator.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	RequestID     uuid.UUID     `json:"request_id"`
	UserID        int           `json:"user_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Type          PaymentType   `json:"type"`
	Status        PaymentStatus `json:"status"`
	Description   string        `json:"description"`
	PaymentMethod string        `json:"payment_method"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
}

// CreatePayment records a payment entry. PaidAt is stored only when the
// entry is already in paid status.
func (s *service) CreatePayment(p *Payment) error {
	query := `
		INSERT INTO payments (request_id, user_id, amount, currency, type, status,
			description, payment_method, paid_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(query,
		p.RequestID, p.UserID, p.Amount, p.Currency, p.Type, p.Status,
		p.Description, p.PaymentMethod, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// ListPayments returns a request's payments, newest first.
func (s *service) ListPayments(requestID uuid.UUID) ([]*Payment, error) {
	query := `
		SELECT id, request_id, user_id, amount, currency, type, status,
			description, payment_method, paid_at, created_at, updated_at
		FROM payments
		WHERE request_id = $1
		ORDER BY created_at DESC`

	rows, err := s.db.Query(query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p := &Payment{}
		var paidAt sql.NullTime
		err := rows.Scan(&p.ID, &p.RequestID, &p.UserID, &p.Amount, &p.Currency,
			&p.Type, &p.Status, &p.Description, &p.PaymentMethod, &paidAt,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if paidAt.Valid {
			t := paidAt.Time
			p.PaidAt = &t
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
