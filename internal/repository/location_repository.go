package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aparcame/parking-reservation/internal/model"
)

// LocationRepo provides read access to locations and their spots.
// Locations are written only by seed and admin tooling, so this
// repository is a pure query surface.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo returns a new LocationRepo bound to the given database.
func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

const locationCols = `id, name, address, city, state, country, latitude, longitude, total_spots, created_at, updated_at`

func scanLocation(row interface{ Scan(...any) error }, l *model.Location) error {
	return row.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Country,
		&l.Latitude, &l.Longitude, &l.TotalSpots, &l.CreatedAt, &l.UpdatedAt)
}

// Search returns locations whose name, address or city contains the
// given substring (case-insensitive). An empty query returns all
// locations. Results are ordered by name for deterministic output.
func (r *LocationRepo) Search(ctx context.Context, q string) ([]model.Location, error) {
	query := `SELECT ` + locationCols + ` FROM locations`
	args := []any{}
	q = strings.TrimSpace(q)
	if q != "" {
		query += ` WHERE LOWER(name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ?`
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like, like)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Location, 0)
	for rows.Next() {
		var l model.Location
		if err := scanLocation(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches one location. sql.ErrNoRows is returned when the
// location does not exist.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (model.Location, error) {
	var l model.Location
	err := scanLocation(r.db.QueryRowContext(ctx,
		`SELECT `+locationCols+` FROM locations WHERE id = ?`, id), &l)
	return l, err
}

// ListSpots returns all spots of a location ordered by spot number.
func (r *LocationRepo) ListSpots(ctx context.Context, locationID uint64) ([]model.ParkingSpot, error) {
	const q = `SELECT id, location_id, spot_number, price_cents, is_available, created_at, updated_at
               FROM parking_spots
               WHERE location_id = ?
               ORDER BY spot_number`
	rows, err := r.db.QueryContext(ctx, q, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.ParkingSpot, 0)
	for rows.Next() {
		var s model.ParkingSpot
		if err := rows.Scan(&s.ID, &s.LocationID, &s.SpotNumber, &s.PriceCents,
			&s.IsAvailable, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
