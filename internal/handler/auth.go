// Package handler exposes the HTTP layer: request parsing, status
// mapping and JSON responses. Business rules live in the repository
// and service packages; handlers translate between them and the wire.
package handler

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/config"
	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/utils"
)

// UserStore is the slice of UserRepo the auth endpoints use.
type UserStore interface {
	Create(ctx context.Context, name string, email *string, phone, plate, password string, cost int) (uint64, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
}

// AuthHandler bundles dependencies for the registration and admin
// login endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

var _ UserStore = (*repository.UserRepo)(nil)

// ----- DTOs -----

type registerReq struct {
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        string  `json:"phone"`
	LicensePlate string  `json:"license_plate"`
	Password     string  `json:"password"` // optional; defaults to the license plate
}

type adminLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID           uint64  `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        string  `json:"phone"`
	LicensePlate string  `json:"license_plate"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Register creates a driver account and returns a signed user token
// right away. The phone number is the login identifier and must be
// unique; when no password is given the license plate is used as the
// initial password.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.LicensePlate = strings.ToUpper(strings.TrimSpace(req.LicensePlate))
	if req.Name == "" || req.Phone == "" || req.LicensePlate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre, teléfono y placa son requeridos"})
	}
	if req.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*req.Email))
		if e == "" {
			req.Email = nil
		} else {
			req.Email = &e
		}
	}
	password := req.Password
	if password == "" {
		password = req.LicensePlate
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Phone, req.LicensePlate, password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrPhoneExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "el teléfono ya está registrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo crear el usuario"})
	}

	ttl := time.Duration(h.Cfg.UserTokenTTLDays) * 24 * time.Hour
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uid, utils.RoleUser, ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo emitir el token"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"user": userPart{
			ID:           uid,
			Name:         req.Name,
			Email:        req.Email,
			Phone:        req.Phone,
			LicensePlate: req.LicensePlate,
		},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Login verifies a driver's phone/password pair and returns a fresh
// user token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Phone == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "teléfono y contraseña son requeridos"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
	}

	ttl := time.Duration(h.Cfg.UserTokenTTLDays) * 24 * time.Hour
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, utils.RoleUser, ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo emitir el token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user": userPart{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Phone:        u.Phone,
			LicensePlate: u.LicensePlate,
		},
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// AdminLogin checks the fixed admin credentials from configuration and
// returns a short-lived admin token. There is exactly one admin
// identity; its token carries the ADMIN role claim that the admin
// routes require.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(req.Email))), []byte(strings.ToLower(h.Cfg.AdminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.AdminPassword)) == 1
	if !emailOK || !passOK {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "credenciales inválidas"})
	}

	ttl := time.Duration(h.Cfg.AdminTokenTTLHrs) * time.Hour
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, 0, utils.RoleAdmin, ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo emitir el token"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
