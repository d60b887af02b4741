package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/aparcame/parking-reservation/internal/config"
	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/utils"
)

// MockUserStore is a mock implementation of UserStore.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, name string, email *string, phone, plate, password string, cost int) (uint64, error) {
	args := m.Called(ctx, name, email, phone, plate, password, cost)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockUserStore) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	args := m.Called(ctx, phone)
	return args.Get(0).(model.User), args.Error(1)
}

func testAuthConfig() config.Config {
	return config.Config{
		JWTSecret:        "jwt-secret",
		UserTokenTTLDays: 7,
		AdminTokenTTLHrs: 24,
		BcryptCost:       4,
		AdminEmail:       "admin@example.com",
		AdminPassword:    "s3cret",
	}
}

func TestAuthHandler_Register_RequiresFields(t *testing.T) {
	users := &MockUserStore{}
	h := NewAuthHandler(testAuthConfig(), users)

	c, rec := newEchoContext(http.MethodPost, "/api/auth/register", `{"name":"Ana"}`)

	assert.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	users := &MockUserStore{}
	// password omitted: the license plate doubles as the initial password
	users.On("Create", mock.Anything, "Ana", (*string)(nil), "+5218111234567", "ABC123", "ABC123", 4).
		Return(uint64(9), nil)
	h := NewAuthHandler(testAuthConfig(), users)

	body := `{"name":"Ana","phone":"+5218111234567","license_plate":"abc123"}`
	c, rec := newEchoContext(http.MethodPost, "/api/auth/register", body)

	assert.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var out struct {
		Success bool `json:"success"`
		User    struct {
			ID           uint64 `json:"id"`
			Phone        string `json:"phone"`
			LicensePlate string `json:"license_plate"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.Equal(t, uint64(9), out.User.ID)
	assert.Equal(t, "+5218111234567", out.User.Phone)
	assert.Equal(t, "ABC123", out.User.LicensePlate)
	assert.NotEmpty(t, out.Access.Token)
	users.AssertExpectations(t)
}

func TestAuthHandler_Register_DuplicatePhone(t *testing.T) {
	users := &MockUserStore{}
	users.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(uint64(0), repository.ErrPhoneExists)
	h := NewAuthHandler(testAuthConfig(), users)

	body := `{"name":"Ana","phone":"+5218111234567","license_plate":"ABC123"}`
	c, rec := newEchoContext(http.MethodPost, "/api/auth/register", body)

	assert.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	var out struct {
		Error string `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Error)
}

func TestAuthHandler_Login(t *testing.T) {
	hash, err := utils.HashPassword("hunter2", 4)
	assert.NoError(t, err)

	users := &MockUserStore{}
	users.On("GetByPhone", mock.Anything, "+5218111234567").
		Return(model.User{ID: 9, Name: "Ana", Phone: "+5218111234567", LicensePlate: "ABC123", PasswordHash: hash}, nil)
	h := NewAuthHandler(testAuthConfig(), users)

	// wrong password
	c, rec := newEchoContext(http.MethodPost, "/api/auth/login",
		`{"phone":"+5218111234567","password":"wrong"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// correct password
	c, rec = newEchoContext(http.MethodPost, "/api/auth/login",
		`{"phone":"+5218111234567","password":"hunter2"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthHandler_Login_UnknownPhone(t *testing.T) {
	users := &MockUserStore{}
	users.On("GetByPhone", mock.Anything, "+5210000000000").
		Return(model.User{}, sql.ErrNoRows)
	h := NewAuthHandler(testAuthConfig(), users)

	c, rec := newEchoContext(http.MethodPost, "/api/auth/login",
		`{"phone":"+5210000000000","password":"hunter2"}`)
	assert.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	h := NewAuthHandler(testAuthConfig(), &MockUserStore{})

	// wrong password
	c, rec := newEchoContext(http.MethodPost, "/api/auth/admin-login",
		`{"email":"admin@example.com","password":"wrong"}`)
	assert.NoError(t, h.AdminLogin(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// correct credentials; email match is case-insensitive
	c, rec = newEchoContext(http.MethodPost, "/api/auth/admin-login",
		`{"email":"Admin@Example.com","password":"s3cret"}`)
	assert.NoError(t, h.AdminLogin(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Success bool `json:"success"`
		Access  struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Success)
	assert.NotEmpty(t, out.Access.Token)
}
