package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/payment"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/service"
)

// MockReservationAPI is a mock implementation of service.ReservationAPI.
type MockReservationAPI struct {
	mock.Mock
}

func (m *MockReservationAPI) Create(ctx context.Context, input service.CreateReservationInput) (*model.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationAPI) Confirm(ctx context.Context, id uint64) (*model.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *MockReservationAPI) Detail(ctx context.Context, id uint64) (*repository.ReservationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.ReservationDetail), args.Error(1)
}

func (m *MockReservationAPI) ListAll(ctx context.Context) ([]repository.ReservationDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.ReservationDetail), args.Error(1)
}

func (m *MockReservationAPI) IssueTicket(ctx context.Context, id uint64) (string, []byte, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Get(1).([]byte), args.Error(2)
}

func (m *MockReservationAPI) VerifyTicket(ctx context.Context, id uint64, code string) bool {
	args := m.Called(ctx, id, code)
	return args.Bool(0)
}

func (m *MockReservationAPI) HandlePaymentEvent(ctx context.Context, ev payment.WebhookEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockReservationAPI) SendReminders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func newEchoContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestReservationHandler_Confirm_NotFound(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("Confirm", mock.Anything, uint64(99)).Return(nil, sql.ErrNoRows)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/99/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	assert.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertExpectations(t)
}

func TestReservationHandler_Confirm_Success(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &MockReservationAPI{}
	svc.On("Confirm", mock.Anything, uint64(5)).Return(&model.Reservation{
		ID: 5, Status: model.StatusConfirmed,
		TimerStarted: true, TimerStartedAt: &now,
		StartTime: now.Add(time.Hour), EndTime: now.Add(3 * time.Hour),
	}, nil)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/5/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	assert.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Success     bool `json:"success"`
		Reservation struct {
			Status         string  `json:"status"`
			TimerStarted   bool    `json:"timer_started"`
			TimerStartedAt *string `json:"timer_started_at"`
		} `json:"reservation"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, "CONFIRMED", out.Reservation.Status)
	assert.True(t, out.Reservation.TimerStarted)
	assert.NotNil(t, out.Reservation.TimerStartedAt)
}

func TestReservationHandler_Confirm_BadID(t *testing.T) {
	h := NewReservationHandler(&MockReservationAPI{})

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/abc/confirm", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	assert.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationHandler_Create_RequiresToken(t *testing.T) {
	h := NewReservationHandler(&MockReservationAPI{})

	c, rec := newEchoContext(http.MethodPost, "/api/reservations", `{"spot_id":7}`)

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReservationHandler_Create_OverlapConflict(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, repository.ErrOverlap)
	h := NewReservationHandler(svc)

	body := `{"spot_id":7,"start_time":"2026-03-01T10:00:00Z","end_time":"2026-03-01T12:00:00Z"}`
	c, rec := newEchoContext(http.MethodPost, "/api/reservations", body)
	c.Set("user_id", float64(3)) // as the JWT middleware stores it

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReservationHandler_Create_Success(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateReservationInput) bool {
		return in.UserID == 3 && in.SpotID == 7
	})).Return(&model.Reservation{ID: 42, UserID: 3, SpotID: 7, Status: model.StatusPending}, nil)
	h := NewReservationHandler(svc)

	body := `{"spot_id":7,"start_time":"2026-03-01T10:00:00Z","end_time":"2026-03-01T12:00:00Z"}`
	c, rec := newEchoContext(http.MethodPost, "/api/reservations", body)
	c.Set("user_id", float64(3))

	assert.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestReservationHandler_GenerateQR_JSON(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("IssueTicket", mock.Anything, uint64(5)).Return("A1B2C3D4E5F6", []byte{0x89, 'P', 'N', 'G'}, nil)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/5/generate-qr", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	assert.NoError(t, h.GenerateQR(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		QRCode string `json:"qr_code"`
		PNG    string `json:"png"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "A1B2C3D4E5F6", out.QRCode)
	assert.NotEmpty(t, out.PNG)
}

func TestReservationHandler_GenerateQR_PNG(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	svc := &MockReservationAPI{}
	svc.On("IssueTicket", mock.Anything, uint64(5)).Return("A1B2C3D4E5F6", png, nil)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/5/generate-qr?format=png", "")
	c.SetParamNames("id")
	c.SetParamValues("5")

	assert.NoError(t, h.GenerateQR(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, png, rec.Body.Bytes())
}

func TestReservationHandler_VerifyQR(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("VerifyTicket", mock.Anything, uint64(5), "A1B2C3D4E5F6").Return(true)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodPost, "/api/reservations/5/verify-qr", `{"code":"A1B2C3D4E5F6"}`)
	c.SetParamNames("id")
	c.SetParamValues("5")

	assert.NoError(t, h.VerifyQR(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Valid bool `json:"valid"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Valid)
}

func TestReservationHandler_Detail_NotFound(t *testing.T) {
	svc := &MockReservationAPI{}
	svc.On("Detail", mock.Anything, uint64(99)).Return(nil, sql.ErrNoRows)
	h := NewReservationHandler(svc)

	c, rec := newEchoContext(http.MethodGet, "/api/reservations/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")

	assert.NoError(t, h.Detail(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
