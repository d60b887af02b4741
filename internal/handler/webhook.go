package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/payment"
	"github.com/aparcame/parking-reservation/internal/service"
)

// WebhookHandler receives callbacks from the hosted payment provider.
// The signature is verified over the raw body before the JSON is
// decoded, so a tampered payload never reaches the service layer.
type WebhookHandler struct {
	Secret string
	Svc    service.ReservationAPI
}

func NewWebhookHandler(secret string, svc service.ReservationAPI) *WebhookHandler {
	return &WebhookHandler{Secret: secret, Svc: svc}
}

const maxWebhookBody = 1 << 20 // 1 MiB

// HandlePaymentWebhook handles POST /api/webhooks/payment. A valid
// payment.successful event confirms the reservation, completes the
// payment row and stamps the QR ticket in one transaction. Events the
// system does not act on are acknowledged with 200 so the provider
// stops retrying them.
func (h *WebhookHandler) HandlePaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}

	sig := c.Request().Header.Get(payment.SignatureHeader)
	if !payment.VerifySignature(h.Secret, body, sig) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "firma de webhook inválida"})
	}

	var ev payment.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "evento de webhook inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Svc.HandlePaymentEvent(ctx, ev); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEvent):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "evento de webhook inválido"})
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo procesar el evento"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
