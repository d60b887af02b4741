package repository

import (
	"context"
	"database/sql"

	"github.com/aparcame/parking-reservation/internal/model"
)

// PaymentRepo persists payment rows. A reservation has at most one
// payment (unique reservation_id). Rows are created PENDING when a
// payment intent is opened; the webhook path flips them to COMPLETED
// inside ReservationRepo.ConfirmWithTicket.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a new PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a PENDING payment for a reservation and returns its ID.
func (r *PaymentRepo) Create(ctx context.Context, reservationID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (reservation_id, status) VALUES (?, ?)`,
		reservationID, model.PaymentPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByReservation fetches the payment of a reservation.
// sql.ErrNoRows when none exists.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Payment, error) {
	var p model.Payment
	var status string
	var txID sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, reservation_id, status, provider_tx_id, created_at, updated_at
         FROM payments WHERE reservation_id = ?`, reservationID).
		Scan(&p.ID, &p.ReservationID, &status, &txID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	p.Status = model.PaymentStatus(status)
	if txID.Valid {
		v := txID.String
		p.ProviderTxID = &v
	}
	return p, nil
}
