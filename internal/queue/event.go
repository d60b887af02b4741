// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation reaches
// CONFIRMED, either through the confirm endpoint or the payment
// webhook. It carries enough context for downstream consumers to log
// or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	SpotID        uint64 `json:"spot_id"`
	SpotNumber    string `json:"spot_number"`
	LocationName  string `json:"location_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	PriceCents    int64  `json:"price_cents"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// ReminderEvent is published by the reminder sweep for each
// reservation whose window starts inside the lead time. A consumer
// turns these into SMS or push notifications.
type ReminderEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	Phone         string `json:"phone"`
	SpotNumber    string `json:"spot_number"`
	LocationName  string `json:"location_name"`
	StartTime     string `json:"start_time"`
	ReminderType  string `json:"reminder_type"`
}
