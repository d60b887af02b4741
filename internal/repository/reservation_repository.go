package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aparcame/parking-reservation/internal/model"
)

// ReservationRepo owns the reservation lifecycle writes. Status
// transitions are single statements or single transactions so a
// crash can never leave a payment marked COMPLETED without its
// reservation CONFIRMED, or vice versa.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = `id, user_id, spot_id, start_time, end_time, status, price_cents,
       qr_code, payment_intent_id, timer_started, timer_started_at, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var status string
	var qr, intent sql.NullString
	var timerAt sql.NullTime
	err := row.Scan(&res.ID, &res.UserID, &res.SpotID, &res.StartTime, &res.EndTime,
		&status, &res.PriceCents, &qr, &intent, &res.TimerStarted, &timerAt,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if st, ok := model.ParseReservationStatus(status); ok {
		res.Status = st
	} else {
		res.Status = model.ReservationStatus(status)
	}
	if qr.Valid {
		v := qr.String
		res.QRCode = &v
	}
	if intent.Valid {
		v := intent.String
		res.PaymentIntentID = &v
	}
	if timerAt.Valid {
		t := timerAt.Time.UTC()
		res.TimerStartedAt = &t
	}
	return &res, nil
}

// Create inserts a PENDING reservation for the given user, spot and
// window. The insert and the overlap guard share one transaction: the
// window is rejected with ErrOverlap when a CONFIRMED reservation on
// the same spot intersects it. The generated ID and timestamps are
// populated on the passed record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var clash bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(
            SELECT 1 FROM reservations
            WHERE spot_id = ? AND status = ? AND start_time < ? AND end_time > ?)`,
		res.SpotID, model.StatusConfirmed, res.EndTime, res.StartTime).Scan(&clash); err != nil {
		return err
	}
	if clash {
		return ErrOverlap
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO reservations (user_id, spot_id, start_time, end_time, status, price_cents)
         VALUES (?, ?, ?, ?, ?, ?)`,
		res.UserID, res.SpotID, res.StartTime.UTC(), res.EndTime.UTC(),
		model.StatusPending, res.PriceCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.StatusPending

	// Query back the row to pick up database-assigned timestamps.
	row, err := scanReservation(tx.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, res.ID))
	if err != nil {
		return err
	}
	*res = *row
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches one reservation. sql.ErrNoRows when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationCols+` FROM reservations WHERE id = ?`, id))
}

// Confirm sets a reservation to CONFIRMED and starts its timer in a
// single UPDATE, then returns the refreshed row. A missing reservation
// yields sql.ErrNoRows without any write. Confirming an already
// confirmed reservation is not an error; the statement simply stamps a
// fresh timer start, matching the endpoint's observed semantics.
func (r *ReservationRepo) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations
         SET status = ?, timer_started = TRUE, timer_started_at = UTC_TIMESTAMP()
         WHERE id = ?`, model.StatusConfirmed, id)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// SetPaymentIntent records the provider intent id opened for a
// reservation.
func (r *ReservationRepo) SetPaymentIntent(ctx context.Context, id uint64, intentID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET payment_intent_id = ? WHERE id = ?`, intentID, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTicketCode stamps the QR ticket code on a reservation.
func (r *ReservationRepo) SetTicketCode(ctx context.Context, id uint64, code string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET qr_code = ? WHERE id = ?`, code, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TicketCode returns the stored QR code of a reservation. An empty
// string is returned when no code has been stamped yet.
func (r *ReservationRepo) TicketCode(ctx context.Context, id uint64) (string, error) {
	var code sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT qr_code FROM reservations WHERE id = ?`, id).Scan(&code)
	if err != nil {
		return "", err
	}
	return code.String, nil
}

// ConfirmWithTicket applies the payment-success transition atomically:
// the payment row keyed by the reservation becomes COMPLETED with the
// provider transaction id, and the reservation becomes CONFIRMED with
// the freshly issued ticket code. Both writes share one transaction.
// sql.ErrNoRows is returned when either row is missing.
func (r *ReservationRepo) ConfirmWithTicket(ctx context.Context, reservationID uint64, code, providerTxID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx,
		`UPDATE payments SET status = ?, provider_tx_id = ? WHERE reservation_id = ?`,
		model.PaymentCompleted, providerTxID, reservationID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM payments WHERE reservation_id = ?)`, reservationID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE reservations SET status = ?, qr_code = ? WHERE id = ?`,
		model.StatusConfirmed, code, reservationID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReservationDetail is the denormalized view joining spot and location
// information onto a reservation. It backs both the public inspect
// endpoint and the admin listing.
type ReservationDetail struct {
	ID              uint64  `json:"id"`
	UserID          uint64  `json:"user_id"`
	SpotID          uint64  `json:"spot_id"`
	SpotNumber      string  `json:"spot_number"`
	LocationName    string  `json:"location_name"`
	LocationAddress string  `json:"location_address"`
	Status          string  `json:"status"`
	PriceCents      int64   `json:"price_cents"`
	QRCode          *string `json:"qr_code,omitempty"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	TimerStarted    bool    `json:"timer_started"`
	TimerStartedAt  *string `json:"timer_started_at,omitempty"`
}

const detailQuery = `SELECT r.id, r.user_id, r.spot_id, p.spot_number, l.name, l.address,
              r.status, r.price_cents, r.qr_code, r.start_time, r.end_time,
              r.timer_started, r.timer_started_at
       FROM reservations r
       JOIN parking_spots p ON p.id = r.spot_id
       JOIN locations l ON l.id = p.location_id`

func scanDetail(row interface{ Scan(...any) error }) (*ReservationDetail, error) {
	var d ReservationDetail
	var qr sql.NullString
	var start, end time.Time
	var timerAt sql.NullTime
	if err := row.Scan(&d.ID, &d.UserID, &d.SpotID, &d.SpotNumber, &d.LocationName,
		&d.LocationAddress, &d.Status, &d.PriceCents, &qr, &start, &end,
		&d.TimerStarted, &timerAt); err != nil {
		return nil, err
	}
	if qr.Valid {
		v := qr.String
		d.QRCode = &v
	}
	d.StartTime = start.UTC().Format(time.RFC3339)
	d.EndTime = end.UTC().Format(time.RFC3339)
	if timerAt.Valid {
		iso := timerAt.Time.UTC().Format(time.RFC3339)
		d.TimerStartedAt = &iso
	}
	return &d, nil
}

// GetDetail returns the denormalized view of one reservation.
// sql.ErrNoRows when absent.
func (r *ReservationRepo) GetDetail(ctx context.Context, id uint64) (*ReservationDetail, error) {
	return scanDetail(r.db.QueryRowContext(ctx, detailQuery+` WHERE r.id = ?`, id))
}

// ListAll returns every reservation with nested spot/location detail,
// newest first. Used by the admin console.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, detailQuery+` ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReminderCandidate is a confirmed reservation whose window starts
// inside the reminder lead time.
type ReminderCandidate struct {
	ReservationID uint64
	UserID        uint64
	Phone         string
	SpotNumber    string
	LocationName  string
	StartTime     time.Time
}

// DueForReminder returns CONFIRMED reservations starting between now
// and now+lead that have no START_REMINDER log entry yet.
func (r *ReservationRepo) DueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]ReminderCandidate, error) {
	const q = `SELECT r.id, r.user_id, u.phone, p.spot_number, l.name, r.start_time
               FROM reservations r
               JOIN users u ON u.id = r.user_id
               JOIN parking_spots p ON p.id = r.spot_id
               JOIN locations l ON l.id = p.location_id
               LEFT JOIN reminder_logs rl
                      ON rl.reservation_id = r.id AND rl.reminder_type = 'START_REMINDER'
               WHERE r.status = ? AND r.start_time >= ? AND r.start_time < ? AND rl.id IS NULL
               ORDER BY r.start_time`
	rows, err := r.db.QueryContext(ctx, q, model.StatusConfirmed, now.UTC(), now.UTC().Add(lead))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ReminderCandidate, 0)
	for rows.Next() {
		var c ReminderCandidate
		if err := rows.Scan(&c.ReservationID, &c.UserID, &c.Phone, &c.SpotNumber,
			&c.LocationName, &c.StartTime); err != nil {
			return nil, err
		}
		c.StartTime = c.StartTime.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
