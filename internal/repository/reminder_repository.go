package repository

import (
	"context"
	"database/sql"
)

// ReminderRepo records sent reminders. The (reservation_id,
// reminder_type) pair carries a unique index so the dedup guard is
// enforced by the database, not by a read-then-write race.
type ReminderRepo struct {
	db *sql.DB
}

// NewReminderRepo returns a new ReminderRepo bound to the given database.
func NewReminderRepo(db *sql.DB) *ReminderRepo { return &ReminderRepo{db: db} }

// MarkSent inserts a reminder log entry. It returns false when the
// reminder was already logged for this reservation and type, which
// tells the sweep to skip publishing.
func (r *ReminderRepo) MarkSent(ctx context.Context, reservationID uint64, reminderType string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO reminder_logs (reservation_id, reminder_type, sent_at)
         VALUES (?, ?, UTC_TIMESTAMP())`, reservationID, reminderType)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
