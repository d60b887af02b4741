package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aparcame/parking-reservation/internal/model"
)

// SpotRepo mutates parking spots on behalf of the admin console.
// Availability toggling runs in a transaction so the confirmed-
// reservation guard and the flip are a single atomic step.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo returns a new SpotRepo bound to the given database.
func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

// GetByID fetches one spot. sql.ErrNoRows when absent.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (model.ParkingSpot, error) {
	var s model.ParkingSpot
	err := r.db.QueryRowContext(ctx,
		`SELECT id, location_id, spot_number, price_cents, is_available, created_at, updated_at
         FROM parking_spots WHERE id = ?`, id).
		Scan(&s.ID, &s.LocationID, &s.SpotNumber, &s.PriceCents, &s.IsAvailable, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// UpdatePrice sets a spot's price. The caller validates that the
// price is non-negative before reaching the repository. Returns
// sql.ErrNoRows when the spot does not exist.
func (r *SpotRepo) UpdatePrice(ctx context.Context, id uint64, priceCents int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parking_spots SET price_cents = ? WHERE id = ?`, priceCents, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows both for a missing spot and for
		// an unchanged price; disambiguate with an existence probe.
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM parking_spots WHERE id = ?)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// ToggleAvailability flips a spot's availability flag and returns the
// new value. Marking a spot available is refused with ErrSpotOccupied
// while a CONFIRMED reservation's window contains the current instant
// (start < now < end). The read, the guard and the update share one
// transaction so a concurrent confirmation cannot slip between them.
func (r *SpotRepo) ToggleAvailability(ctx context.Context, id uint64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current bool
	if err := tx.QueryRowContext(ctx,
		`SELECT is_available FROM parking_spots WHERE id = ? FOR UPDATE`, id).Scan(&current); err != nil {
		return false, err
	}

	next := !current
	if next {
		now := time.Now().UTC()
		var busy bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(
                SELECT 1 FROM reservations
                WHERE spot_id = ? AND status = ? AND start_time < ? AND end_time > ?)`,
			id, model.StatusConfirmed, now, now).Scan(&busy); err != nil {
			return false, err
		}
		if busy {
			return false, ErrSpotOccupied
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE parking_spots SET is_available = ? WHERE id = ?`, next, id); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return next, nil
}

// SpotReservationRow is the view returned when listing the active
// reservations of one spot for the admin console.
type SpotReservationRow struct {
	ID         uint64 `json:"id"`
	UserID     uint64 `json:"user_id"`
	UserName   string `json:"user_name"`
	Status     string `json:"status"`
	PriceCents int64  `json:"price_cents"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// ListActiveReservations returns reservations on a spot that have not
// finished yet (PENDING or CONFIRMED with end_time in the future),
// newest first.
func (r *SpotRepo) ListActiveReservations(ctx context.Context, spotID uint64) ([]SpotReservationRow, error) {
	const q = `SELECT r.id, r.user_id, u.name, r.status, r.price_cents, r.start_time, r.end_time
               FROM reservations r
               JOIN users u ON u.id = r.user_id
               WHERE r.spot_id = ? AND r.status IN (?, ?) AND r.end_time > ?
               ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, spotID,
		model.StatusPending, model.StatusConfirmed, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SpotReservationRow, 0)
	for rows.Next() {
		var row SpotReservationRow
		var start, end time.Time
		if err := rows.Scan(&row.ID, &row.UserID, &row.UserName, &row.Status,
			&row.PriceCents, &start, &end); err != nil {
			return nil, err
		}
		row.StartTime = start.UTC().Format(time.RFC3339)
		row.EndTime = end.UTC().Format(time.RFC3339)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
