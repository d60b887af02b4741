package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aparcame/parking-reservation/internal/payment"
)

func signBody(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookContext(body, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payment", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(payment.SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	svc := &MockReservationAPI{}
	h := NewWebhookHandler("whsec_test", svc)

	body := `{"event":"payment.successful","data":{"id":"tx_1","status":"completed","metadata":{"reservationId":"5"}}}`

	// missing signature
	c, rec := webhookContext(body, "")
	assert.NoError(t, h.HandlePaymentWebhook(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// signed with the wrong secret
	c, rec = webhookContext(body, signBody("other-secret", body))
	assert.NoError(t, h.HandlePaymentWebhook(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	svc.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_ProcessesSignedEvent(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("HandlePaymentEvent", mock.Anything, mock.MatchedBy(func(ev payment.WebhookEvent) bool {
		return ev.Event == payment.EventPaymentSuccessful &&
			ev.Data.ID == "tx_1" &&
			ev.Data.Metadata.ReservationID == "5"
	})).Return(nil)
	h := NewWebhookHandler("whsec_test", svc)

	body := `{"event":"payment.successful","data":{"id":"tx_1","status":"completed","metadata":{"reservationId":"5"}}}`
	c, rec := webhookContext(body, signBody("whsec_test", body))

	assert.NoError(t, h.HandlePaymentWebhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestWebhookHandler_RejectsMalformedJSON(t *testing.T) {
	svc := &MockReservationAPI{}
	h := NewWebhookHandler("whsec_test", svc)

	body := `{not-json`
	c, rec := webhookContext(body, signBody("whsec_test", body))

	assert.NoError(t, h.HandlePaymentWebhook(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "HandlePaymentEvent", mock.Anything, mock.Anything)
}
