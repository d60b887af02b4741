package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw webhook body.
const SignatureHeader = "X-Payment-Signature"

// EventPaymentSuccessful is the only webhook event that mutates state.
const EventPaymentSuccessful = "payment.successful"

// WebhookEvent is the provider's callback payload.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// WebhookData nests the transaction details of a webhook event.
type WebhookData struct {
	ID       string          `json:"id"`
	Status   string          `json:"status"`
	Metadata WebhookMetadata `json:"metadata"`
}

// WebhookMetadata echoes the metadata attached at intent creation.
// The provider serializes metadata values as strings.
type WebhookMetadata struct {
	ReservationID string `json:"reservationId"`
}

// ReservationID parses the reservation identity out of the metadata.
func (m WebhookMetadata) ParseReservationID() (uint64, bool) {
	id, err := strconv.ParseUint(m.ReservationID, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// VerifySignature checks the webhook signature over the raw request
// body. The provider signs with HMAC-SHA256 using the shared webhook
// secret and sends the hex digest in SignatureHeader. Unsigned or
// mis-signed deliveries must be rejected before any state change.
func VerifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
