package handler

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/service"
)

// ReservationHandler serves the reservation lifecycle endpoints. All
// business rules live behind the service.ReservationAPI seam so the
// handler can be tested without a database.
type ReservationHandler struct {
	Svc service.ReservationAPI
}

func NewReservationHandler(svc service.ReservationAPI) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	SpotID     uint64 `json:"spot_id"`
	StartTime  string `json:"start_time"` // RFC3339
	EndTime    string `json:"end_time"`   // RFC3339
	PriceCents int64  `json:"price_cents"`
}

// reservationPart is the reservation shape returned by the lifecycle
// endpoints.
type reservationPart struct {
	ID              uint64  `json:"id"`
	UserID          uint64  `json:"user_id"`
	SpotID          uint64  `json:"spot_id"`
	Status          string  `json:"status"`
	PriceCents      int64   `json:"price_cents"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	TimerStarted    bool    `json:"timer_started"`
	TimerStartedAt  *string `json:"timer_started_at,omitempty"`
	QRCode          *string `json:"qr_code,omitempty"`
	PaymentIntentID *string `json:"payment_intent_id,omitempty"`
}

// userIDFromContext reads the subject claim stored by the JWT
// middleware. Numeric JSON claims decode as float64.
func userIDFromContext(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case uint64:
		return v, true
	default:
		return 0, false
	}
}

func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create books a spot for the authenticated driver. The reservation
// starts PENDING; a window overlapping a confirmed reservation on the
// same spot is rejected with 409.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := userIDFromContext(c)
	if !ok || uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token de acceso requerido"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}
	start, err1 := time.Parse(time.RFC3339, req.StartTime)
	end, err2 := time.Parse(time.RFC3339, req.EndTime)
	if req.SpotID == 0 || err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spot_id, start_time y end_time son requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Create(ctx, service.CreateReservationInput{
		UserID:     uid,
		SpotID:     req.SpotID,
		StartTime:  start,
		EndTime:    end,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWindow):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "la ventana de reservación es inválida"})
		case errors.Is(err, service.ErrSpotUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "el cajón no está disponible"})
		case errors.Is(err, repository.ErrOverlap):
			return c.JSON(http.StatusConflict, echo.Map{"error": "el cajón ya está reservado en ese horario"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cajón no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo crear la reservación"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"reservation": toReservationPart(res),
	})
}

// Detail handles GET /api/reservations/:id, returning the
// denormalized reservation view.
func (h *ReservationHandler) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	det, err := h.Svc.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reservation": det})
}

// Confirm handles POST /api/reservations/:id/confirm. The transition
// to CONFIRMED and the timer start happen as one atomic update; a
// missing reservation returns 404 with nothing written.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.Confirm(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo confirmar la reservación"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"reservation": toReservationPart(res),
	})
}

// GenerateQR handles POST /api/reservations/:id/generate-qr. A fresh
// code is derived on every call and stored as the verification anchor.
// With ?format=png the raw PNG bytes come back; otherwise the response
// is JSON carrying the code and the PNG base64-encoded.
func (h *ReservationHandler) GenerateQR(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, png, err := h.Svc.IssueTicket(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo generar el código QR"})
	}

	if c.QueryParam("format") == "png" {
		return c.Blob(http.StatusOK, "image/png", png)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"qr_code": code,
		"png":     base64.StdEncoding.EncodeToString(png),
	})
}

// VerifyQR handles POST /api/reservations/:id/verify-qr. The check is
// fail-closed: any lookup failure reads as an invalid ticket, never an
// error.
func (h *ReservationHandler) VerifyQR(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "código requerido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"valid":   h.Svc.VerifyTicket(ctx, id, req.Code),
	})
}

func toReservationPart(res *model.Reservation) reservationPart {
	p := reservationPart{
		ID:              res.ID,
		UserID:          res.UserID,
		SpotID:          res.SpotID,
		Status:          string(res.Status),
		PriceCents:      res.PriceCents,
		StartTime:       res.StartTime.UTC().Format(time.RFC3339),
		EndTime:         res.EndTime.UTC().Format(time.RFC3339),
		TimerStarted:    res.TimerStarted,
		QRCode:          res.QRCode,
		PaymentIntentID: res.PaymentIntentID,
	}
	if res.TimerStartedAt != nil {
		iso := res.TimerStartedAt.UTC().Format(time.RFC3339)
		p.TimerStartedAt = &iso
	}
	return p
}
