package model

import "time"

// PaymentStatus mirrors the payment lifecycle at the provider.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Payment tracks the payment of a single reservation (one-to-one
// by foreign key).  Rows are created when a payment intent is
// opened and are only mutated by the payment webhook.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation being paid for.
//  Status        – payment state (PENDING, COMPLETED, FAILED).
//  ProviderTxID  – transaction identifier at the provider, if any.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Payment struct {
	ID            uint64        // payments.id
	ReservationID uint64        // payments.reservation_id
	Status        PaymentStatus // payments.status
	ProviderTxID  *string       // payments.provider_tx_id (nullable)
	CreatedAt     time.Time     // payments.created_at
	UpdatedAt     time.Time     // payments.updated_at
}
