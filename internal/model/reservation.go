package model

import (
	"strings"
	"time"
)

// ReservationStatus is the closed set of reservation states.  The
// column is stored as an upper-case string; ParseReservationStatus
// normalizes free-form input so comparisons are always canonical.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// ParseReservationStatus maps a raw string to a ReservationStatus,
// ignoring case.  Unknown values return false so callers can reject
// them instead of comparing ad hoc strings.
func ParseReservationStatus(raw string) (ReservationStatus, bool) {
	switch ReservationStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, true
	case StatusConfirmed:
		return StatusConfirmed, true
	case StatusCancelled:
		return StatusCancelled, true
	case StatusCompleted:
		return StatusCompleted, true
	}
	return "", false
}

// Reservation records a user's booking of a parking spot for a
// time window.  It is created PENDING and becomes CONFIRMED either
// through the explicit confirm endpoint (which also starts the
// parking timer) or through a successful payment webhook (which
// also stamps the QR ticket code).
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  SpotID          – parking spot being reserved.
//  StartTime       – beginning of the reserved window (UTC).
//  EndTime         – end of the reserved window (UTC).
//  Status          – reservation state (PENDING, CONFIRMED, CANCELLED, COMPLETED).
//  PriceCents      – agreed price in cents.
//  QRCode          – short ticket code stamped on confirmation, if any.
//  PaymentIntentID – identifier of the payment intent at the provider, if any.
//  TimerStarted    – whether the parking timer has been started.
//  TimerStartedAt  – when the timer was started (nullable).
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
	ID              uint64            // reservations.id
	UserID          uint64            // reservations.user_id
	SpotID          uint64            // reservations.spot_id
	StartTime       time.Time         // reservations.start_time
	EndTime         time.Time         // reservations.end_time
	Status          ReservationStatus // reservations.status
	PriceCents      int64             // reservations.price_cents
	QRCode          *string           // reservations.qr_code (nullable)
	PaymentIntentID *string           // reservations.payment_intent_id (nullable)
	TimerStarted    bool              // reservations.timer_started
	TimerStartedAt  *time.Time        // reservations.timer_started_at (nullable)
	CreatedAt       time.Time         // reservations.created_at
	UpdatedAt       time.Time         // reservations.updated_at
}
