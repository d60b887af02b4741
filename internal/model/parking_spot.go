package model

import "time"

// ParkingSpot describes a single numbered spot inside a location.
// Spots are uniquely identified by their location and spot number.
// Availability is flipped by admin action; flipping a spot back to
// available is refused while a confirmed reservation is in progress.
//
// Fields:
//  ID          – primary key identifier.
//  LocationID  – location to which this spot belongs.
//  SpotNumber  – number of the spot within the location.
//  PriceCents  – price per reservation window in cents.
//  IsAvailable – whether the spot can currently be booked.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type ParkingSpot struct {
	ID          uint64    // parking_spots.id
	LocationID  uint64    // parking_spots.location_id
	SpotNumber  string    // parking_spots.spot_number
	PriceCents  int64     // parking_spots.price_cents
	IsAvailable bool      // parking_spots.is_available
	CreatedAt   time.Time // parking_spots.created_at
	UpdatedAt   time.Time // parking_spots.updated_at
}
