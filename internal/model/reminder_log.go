package model

import "time"

// ReminderLog records that a reminder of a given type was already
// sent for a reservation.  The reminder sweep checks it before
// publishing so a reservation is never notified twice for the same
// reminder type.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation the reminder refers to.
//  ReminderType  – kind of reminder (e.g. START_REMINDER).
//  SentAt        – when the reminder was published.
type ReminderLog struct {
	ID            uint64    // reminder_logs.id
	ReservationID uint64    // reminder_logs.reservation_id
	ReminderType  string    // reminder_logs.reminder_type
	SentAt        time.Time // reminder_logs.sent_at
}
