package handler

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/service"
)

// CronHandler serves the scheduled endpoints invoked by an external
// cron runner. Each request must carry the shared cron secret as a
// bearer token; the reminder sweep is additionally gated behind a
// feature flag and reports itself disabled without touching the
// database when the flag is off.
type CronHandler struct {
	Secret  string
	Enabled bool
	Svc     service.ReservationAPI
}

func NewCronHandler(secret string, enabled bool, svc service.ReservationAPI) *CronHandler {
	return &CronHandler{Secret: secret, Enabled: enabled, Svc: svc}
}

func (h *CronHandler) authorized(c echo.Context) bool {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) == 1
}

// SendReminders handles GET /api/cron/send-reminders. When enabled it
// publishes a reminder for every confirmed reservation starting inside
// the lead window that has not been reminded yet, and returns how many
// went out.
func (h *CronHandler) SendReminders(c echo.Context) error {
	if !h.authorized(c) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "no autorizado"})
	}
	if !h.Enabled {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "enabled": false, "sent": 0})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	sent, err := h.Svc.SendReminders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudieron enviar los recordatorios"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "enabled": true, "sent": sent})
}
