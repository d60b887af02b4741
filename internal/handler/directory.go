package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aparcame/parking-reservation/internal/model"
	"github.com/aparcame/parking-reservation/internal/repository"
)

// DirectoryHandler serves the public browsing endpoints. Responses
// expose only the fields a driver needs to pick a spot.
type DirectoryHandler struct {
	Locations *repository.LocationRepo
}

func NewDirectoryHandler(locations *repository.LocationRepo) *DirectoryHandler {
	return &DirectoryHandler{Locations: locations}
}

// PublicLocation is the location shape exposed to unauthenticated
// clients.
type PublicLocation struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	TotalSpots uint32  `json:"total_spots"`
}

// PublicSpot is the spot shape exposed to unauthenticated clients.
type PublicSpot struct {
	ID          uint64 `json:"id"`
	SpotNumber  string `json:"spot_number"`
	PriceCents  int64  `json:"price_cents"`
	IsAvailable bool   `json:"is_available"`
}

// SearchLocations handles GET /api/locations?q=. An empty q lists
// every location; otherwise the substring is matched against name,
// address and city.
func (h *DirectoryHandler) SearchLocations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	locations, err := h.Locations.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	items := make([]PublicLocation, 0, len(locations))
	for _, l := range locations {
		items = append(items, publicLocation(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "items": items})
}

// LocationDetails handles GET /api/location-details?id=. The response
// nests the location's spots so a client can render the picker with
// one request.
func (h *DirectoryHandler) LocationDetails(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "parámetro id inválido"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	loc, err := h.Locations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ubicación no encontrada"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}
	spots, err := h.Locations.ListSpots(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "error de base de datos"})
	}

	items := make([]PublicSpot, 0, len(spots))
	for _, s := range spots {
		items = append(items, PublicSpot{
			ID:          s.ID,
			SpotNumber:  s.SpotNumber,
			PriceCents:  s.PriceCents,
			IsAvailable: s.IsAvailable,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"location": publicLocation(loc),
		"spots":    items,
	})
}

func publicLocation(l model.Location) PublicLocation {
	return PublicLocation{
		ID:         l.ID,
		Name:       l.Name,
		Address:    l.Address,
		City:       l.City,
		State:      l.State,
		Country:    l.Country,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		TotalSpots: l.TotalSpots,
	}
}
