// Package service implements the reservation lifecycle on top of the
// repository layer: creation with the overlap guard, the confirm
// transition, QR ticket issuance, payment webhook processing and the
// reminder sweep. Handlers talk to this package through the
// ReservationAPI interface so the HTTP layer can be tested without a
// database.
package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/payment"
	"github.com/aparcame/parking-reservation/internal/queue"
	"github.com/aparcame/parking-reservation/internal/repository"
)

// Validation sentinels surfaced to handlers.
var (
	ErrInvalidWindow   = errors.New("reservation window is invalid")
	ErrSpotUnavailable = errors.New("spot is not available")
	ErrInvalidEvent    = errors.New("webhook event carries no usable reservation id")
)

// ReservationStore is the slice of ReservationRepo the service uses.
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Confirm(ctx context.Context, id uint64) (*model.Reservation, error)
	GetDetail(ctx context.Context, id uint64) (*repository.ReservationDetail, error)
	ListAll(ctx context.Context) ([]repository.ReservationDetail, error)
	SetTicketCode(ctx context.Context, id uint64, code string) error
	SetPaymentIntent(ctx context.Context, id uint64, intentID string) error
	ConfirmWithTicket(ctx context.Context, reservationID uint64, code, providerTxID string) error
	DueForReminder(ctx context.Context, now time.Time, lead time.Duration) ([]repository.ReminderCandidate, error)
}

// SpotGetter reads one spot; used to validate the booking target.
type SpotGetter interface {
	GetByID(ctx context.Context, id uint64) (model.ParkingSpot, error)
}

// PaymentStore opens the PENDING payment row for a reservation.
type PaymentStore interface {
	Create(ctx context.Context, reservationID uint64) (uint64, error)
}

// ReminderStore is the dedup guard for the reminder sweep.
type ReminderStore interface {
	MarkSent(ctx context.Context, reservationID uint64, reminderType string) (bool, error)
}

// TicketIssuer derives and verifies QR ticket codes.
type TicketIssuer interface {
	Issue(reservationID uint64) (code string, png []byte, err error)
	Verify(ctx context.Context, reservationID uint64, code string) bool
}

// Publisher sends domain events to the broker. Implementations must
// be safe to call best-effort; the service logs and ignores failures.
type Publisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
	PublishReminder(ctx context.Context, ev queue.ReminderEvent) error
}

// IntentOpener opens payment intents at the hosted provider.
type IntentOpener interface {
	CreateIntent(ctx context.Context, reservationID uint64, amountCents int64, currency string) (*payment.Intent, error)
}

// ReservationAPI is what the HTTP handlers depend on.
type ReservationAPI interface {
	Create(ctx context.Context, input CreateReservationInput) (*model.Reservation, error)
	Confirm(ctx context.Context, id uint64) (*model.Reservation, error)
	Detail(ctx context.Context, id uint64) (*repository.ReservationDetail, error)
	ListAll(ctx context.Context) ([]repository.ReservationDetail, error)
	IssueTicket(ctx context.Context, id uint64) (code string, png []byte, err error)
	VerifyTicket(ctx context.Context, id uint64, code string) bool
	HandlePaymentEvent(ctx context.Context, ev payment.WebhookEvent) error
	SendReminders(ctx context.Context) (int, error)
}

// ReservationService wires the lifecycle pieces together.
type ReservationService struct {
	reservations ReservationStore
	spots        SpotGetter
	payments     PaymentStore
	reminders    ReminderStore
	issuer       TicketIssuer
	publisher    Publisher
	intents      IntentOpener // nil when no payment provider is configured
	currency     string
	reminderLead time.Duration
	now          func() time.Time
}

// NewReservationService constructs the service. intents may be nil; in
// that case reservations are created without opening a provider
// intent and payment rows are still written for the webhook to find.
func NewReservationService(
	reservations ReservationStore,
	spots SpotGetter,
	payments PaymentStore,
	reminders ReminderStore,
	issuer TicketIssuer,
	publisher Publisher,
	intents IntentOpener,
	currency string,
	reminderLead time.Duration,
) *ReservationService {
	if currency == "" {
		currency = "MXN"
	}
	return &ReservationService{
		reservations: reservations,
		spots:        spots,
		payments:     payments,
		reminders:    reminders,
		issuer:       issuer,
		publisher:    publisher,
		intents:      intents,
		currency:     currency,
		reminderLead: reminderLead,
		now:          time.Now,
	}
}

// CreateReservationInput carries the booking request.
type CreateReservationInput struct {
	UserID     uint64
	SpotID     uint64
	StartTime  time.Time
	EndTime    time.Time
	PriceCents int64 // 0 means "use the spot's price"
}

// Create books a spot for a window. The reservation is inserted
// PENDING; windows that overlap a CONFIRMED reservation on the same
// spot are rejected with repository.ErrOverlap. When a payment
// provider is configured an intent is opened and its id stored on the
// reservation; intent failures are logged and do not fail the booking.
func (s *ReservationService) Create(ctx context.Context, input CreateReservationInput) (*model.Reservation, error) {
	if !input.EndTime.After(input.StartTime) {
		return nil, ErrInvalidWindow
	}
	spot, err := s.spots.GetByID(ctx, input.SpotID)
	if err != nil {
		return nil, err
	}
	if !spot.IsAvailable {
		return nil, ErrSpotUnavailable
	}
	price := input.PriceCents
	if price == 0 {
		price = spot.PriceCents
	}
	if price < 0 {
		return nil, ErrInvalidWindow
	}

	res := &model.Reservation{
		UserID:     input.UserID,
		SpotID:     input.SpotID,
		StartTime:  input.StartTime.UTC(),
		EndTime:    input.EndTime.UTC(),
		PriceCents: price,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	if _, err := s.payments.Create(ctx, res.ID); err != nil {
		log.Printf("reservation %d: create payment row failed: %v", res.ID, err)
	}
	if s.intents != nil {
		intent, err := s.intents.CreateIntent(ctx, res.ID, price, s.currency)
		if err != nil {
			log.Printf("reservation %d: open payment intent failed: %v", res.ID, err)
		} else if err := s.reservations.SetPaymentIntent(ctx, res.ID, intent.ID); err != nil {
			log.Printf("reservation %d: store payment intent failed: %v", res.ID, err)
		} else {
			res.PaymentIntentID = &intent.ID
		}
	}
	return res, nil
}

// Confirm transitions a reservation to CONFIRMED and starts its timer.
// The repository performs the transition as one UPDATE; a missing
// reservation surfaces as sql.ErrNoRows with no write performed. A
// confirmation event is published best-effort.
func (s *ReservationService) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := s.reservations.Confirm(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishConfirmed(ctx, res)
	return res, nil
}

// Detail returns the denormalized reservation view.
func (s *ReservationService) Detail(ctx context.Context, id uint64) (*repository.ReservationDetail, error) {
	return s.reservations.GetDetail(ctx, id)
}

// ListAll returns all reservations, newest first.
func (s *ReservationService) ListAll(ctx context.Context) ([]repository.ReservationDetail, error) {
	return s.reservations.ListAll(ctx)
}

// IssueTicket derives a fresh QR code for an existing reservation,
// stores it as the verification anchor and returns the code with the
// rendered PNG. Issuing twice yields two different codes; the stored
// one wins.
func (s *ReservationService) IssueTicket(ctx context.Context, id uint64) (string, []byte, error) {
	if _, err := s.reservations.GetByID(ctx, id); err != nil {
		return "", nil, err
	}
	code, png, err := s.issuer.Issue(id)
	if err != nil {
		return "", nil, err
	}
	if err := s.reservations.SetTicketCode(ctx, id, code); err != nil {
		return "", nil, err
	}
	return code, png, nil
}

// VerifyTicket reports whether a presented code matches the stored
// one. It never returns an error; all failures read as false.
func (s *ReservationService) VerifyTicket(ctx context.Context, id uint64, code string) bool {
	return s.issuer.Verify(ctx, id, code)
}

// HandlePaymentEvent applies a verified webhook event. Only
// payment.successful with a completed status mutates state: the
// payment row becomes COMPLETED, a QR ticket is issued and the
// reservation becomes CONFIRMED with that code, all in one
// transaction. Every other event/status combination is acknowledged
// without action.
func (s *ReservationService) HandlePaymentEvent(ctx context.Context, ev payment.WebhookEvent) error {
	if ev.Event != payment.EventPaymentSuccessful || ev.Data.Status != "completed" {
		return nil
	}
	id, ok := ev.Data.Metadata.ParseReservationID()
	if !ok {
		return ErrInvalidEvent
	}
	code, _, err := s.issuer.Issue(id)
	if err != nil {
		return err
	}
	if err := s.reservations.ConfirmWithTicket(ctx, id, code, ev.Data.ID); err != nil {
		return err
	}
	if res, err := s.reservations.GetByID(ctx, id); err == nil {
		s.publishConfirmed(ctx, res)
	}
	return nil
}

// SendReminders publishes a reminder for each confirmed reservation
// starting inside the lead window that has not been reminded yet. It
// returns the number of reminders actually published.
func (s *ReservationService) SendReminders(ctx context.Context) (int, error) {
	const reminderType = "START_REMINDER"
	candidates, err := s.reservations.DueForReminder(ctx, s.now().UTC(), s.reminderLead)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, c := range candidates {
		fresh, err := s.reminders.MarkSent(ctx, c.ReservationID, reminderType)
		if err != nil {
			log.Printf("reservation %d: mark reminder failed: %v", c.ReservationID, err)
			continue
		}
		if !fresh {
			continue
		}
		ev := queue.ReminderEvent{
			ReservationID: c.ReservationID,
			UserID:        c.UserID,
			Phone:         c.Phone,
			SpotNumber:    c.SpotNumber,
			LocationName:  c.LocationName,
			StartTime:     c.StartTime.Format(time.RFC3339),
			ReminderType:  reminderType,
		}
		if s.publisher != nil {
			if err := s.publisher.PublishReminder(ctx, ev); err != nil {
				log.Printf("reservation %d: publish reminder failed: %v", c.ReservationID, err)
			}
		}
		sent++
	}
	return sent, nil
}

func (s *ReservationService) publishConfirmed(ctx context.Context, res *model.Reservation) {
	if s.publisher == nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		SpotID:        res.SpotID,
		StartTime:     res.StartTime.UTC().Format(time.RFC3339),
		EndTime:       res.EndTime.UTC().Format(time.RFC3339),
		PriceCents:    res.PriceCents,
		ConfirmedAt:   s.now().UTC().Format(time.RFC3339),
	}
	if det, err := s.reservations.GetDetail(ctx, res.ID); err == nil {
		ev.SpotNumber = det.SpotNumber
		ev.LocationName = det.LocationName
	}
	if err := s.publisher.PublishReservationConfirmed(ctx, ev); err != nil {
		log.Printf("reservation %d: publish confirmed event failed: %v", res.ID, err)
	}
}

var _ ReservationAPI = (*ReservationService)(nil)
