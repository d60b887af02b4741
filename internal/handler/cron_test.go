package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func cronContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/cron/send-reminders", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCronHandler_RejectsWithoutSecret(t *testing.T) {
	svc := &MockReservationAPI{}
	h := NewCronHandler("cron-secret", true, svc)

	c, rec := cronContext("")
	assert.NoError(t, h.SendReminders(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = cronContext("Bearer wrong-secret")
	assert.NoError(t, h.SendReminders(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	svc.AssertNotCalled(t, "SendReminders", mock.Anything)
}

func TestCronHandler_DisabledFlagShortCircuits(t *testing.T) {
	svc := &MockReservationAPI{}
	h := NewCronHandler("cron-secret", false, svc)

	c, rec := cronContext("Bearer cron-secret")
	assert.NoError(t, h.SendReminders(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Enabled bool `json:"enabled"`
		Sent    int  `json:"sent"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.False(t, out.Enabled)
	assert.Zero(t, out.Sent)
	svc.AssertNotCalled(t, "SendReminders", mock.Anything)
}

func TestCronHandler_RunsSweepWhenEnabled(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("SendReminders", mock.Anything).Return(3, nil)
	h := NewCronHandler("cron-secret", true, svc)

	c, rec := cronContext("Bearer cron-secret")
	assert.NoError(t, h.SendReminders(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Enabled bool `json:"enabled"`
		Sent    int  `json:"sent"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Enabled)
	assert.Equal(t, 3, out.Sent)
	svc.AssertExpectations(t)
}
