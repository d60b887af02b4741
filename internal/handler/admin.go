package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/repository"
	"github.com/aparcame/parking-reservation/internal/service"
)

// SpotStore is the slice of SpotRepo the admin console uses. The
// seam keeps the handler testable without a database.
type SpotStore interface {
	GetByID(ctx context.Context, id uint64) (model.ParkingSpot, error)
	UpdatePrice(ctx context.Context, id uint64, priceCents int64) error
	ToggleAvailability(ctx context.Context, id uint64) (bool, error)
	ListActiveReservations(ctx context.Context, spotID uint64) ([]repository.SpotReservationRow, error)
}

// AdminHandler serves the admin console endpoints: spot management
// for a location and the reservation listings. All routes sit behind
// JWT auth; the global reservation listing additionally requires the
// ADMIN role.
type AdminHandler struct {
	Locations *repository.LocationRepo
	Spots     SpotStore
	Svc       service.ReservationAPI
}

func NewAdminHandler(locations *repository.LocationRepo, spots SpotStore, svc service.ReservationAPI) *AdminHandler {
	return &AdminHandler{Locations: locations, Spots: spots, Svc: svc}
}

var _ SpotStore = (*repository.SpotRepo)(nil)

// ListLocationSpots handles GET /api/admin/locations/:id/parking-spots.
func (h *AdminHandler) ListLocationSpots(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Locations.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ubicación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	spots, err := h.Locations.ListSpots(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": spots})
}

type updatePriceReq struct {
	PriceCents int64 `json:"price_cents"`
}

// UpdateSpotPrice handles PATCH /api/admin/parking-spots/:id/price.
// Negative prices are rejected before anything is written.
func (h *AdminHandler) UpdateSpotPrice(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}
	var req updatePriceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cuerpo de solicitud inválido"})
	}
	if req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "el precio no puede ser negativo"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Spots.UpdatePrice(ctx, id, req.PriceCents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cajón no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo actualizar el precio"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "price_cents": req.PriceCents})
}

// ToggleSpotAvailability handles POST /api/admin/parking-spots/:id/toggle-availability.
// Flipping a spot back to available while a confirmed reservation is
// in progress is refused with 400 and the flag stays unchanged.
func (h *AdminHandler) ToggleSpotAvailability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	available, err := h.Spots.ToggleAvailability(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cajón no encontrado"})
		case errors.Is(err, repository.ErrSpotOccupied):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "el cajón tiene una reservación confirmada en curso"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no se pudo cambiar la disponibilidad"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "is_available": available})
}

// ListSpotReservations handles GET /api/admin/parking-spots/:id/reservations,
// returning only reservations that have not finished yet.
func (h *AdminHandler) ListSpotReservations(c echo.Context) error {
	id, err := pathID(c)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Spots.GetByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "cajón no encontrado"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	rows, err := h.Spots.ListActiveReservations(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": rows})
}

// ListAllReservations handles GET /api/admin/reservations. The route
// is registered behind RequireRole(ADMIN).
func (h *AdminHandler) ListAllReservations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Svc.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": items})
}
