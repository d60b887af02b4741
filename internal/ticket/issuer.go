// Package ticket issues and verifies the short QR codes that act as
// parking tickets. The code is derived from the reservation identity,
// an issue timestamp and a server secret; the scannable PNG embeds the
// code together with the reservation id so gate scanners can submit
// both for verification.
package ticket

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// CodeLength is the length of the short ticket code stored on the
// reservation and printed under the QR image.
const CodeLength = 12

// CodeStore is the slice of the reservation repository the verifier
// needs: reading back the stamped code.
type CodeStore interface {
	TicketCode(ctx context.Context, reservationID uint64) (string, error)
}

// Issuer derives ticket codes and renders them as QR images.
type Issuer struct {
	secret string
	store  CodeStore
	size   int
	now    func() time.Time
}

// NewIssuer builds an Issuer with the given signing secret and code
// store. The QR image is rendered at 256x256 pixels.
func NewIssuer(secret string, store CodeStore) *Issuer {
	return &Issuer{secret: secret, store: store, size: 256, now: time.Now}
}

// payload is what the QR image encodes.
type payload struct {
	Code          string `json:"code"`
	ReservationID uint64 `json:"reservation_id"`
	IssuedAt      string `json:"issued_at"`
}

// Issue computes a ticket code for a reservation and renders the QR
// PNG. The issue timestamp is part of the hash input, so issuing twice
// for the same reservation yields two different codes; only the code
// stamped on the reservation row verifies.
func (i *Issuer) Issue(reservationID uint64) (string, []byte, error) {
	issuedAt := i.now().UTC()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%d|%s", reservationID, issuedAt.UnixNano(), i.secret)))
	code := strings.ToUpper(hex.EncodeToString(sum[:]))[:CodeLength]

	body, err := json.Marshal(payload{
		Code:          code,
		ReservationID: reservationID,
		IssuedAt:      issuedAt.Format(time.RFC3339),
	})
	if err != nil {
		return "", nil, err
	}
	png, err := qrcode.Encode(string(body), qrcode.Medium, i.size)
	if err != nil {
		return "", nil, err
	}
	return code, png, nil
}

// Verify reports whether the presented code matches the code stored
// for the reservation. It fails closed: any lookup error, a missing
// reservation or an empty stored code all yield false, never an error.
func (i *Issuer) Verify(ctx context.Context, reservationID uint64, code string) bool {
	if code == "" {
		return false
	}
	stored, err := i.store.TicketCode(ctx, reservationID)
	if err != nil || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(code)) == 1
}
