package model

import "time"

// Location represents a parking facility that groups a set of
// parking spots.  Locations are created by seed or admin tooling
// and are read-only for regular users.  This struct corresponds
// to a row in the `locations` table.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – display name of the facility.
//  Address    – street address.
//  City       – city name.
//  State      – state or province.
//  Country    – country name.
//  Latitude   – geographic latitude.
//  Longitude  – geographic longitude.
//  TotalSpots – number of parking spots in the facility.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Location struct {
	ID         uint64    // locations.id
	Name       string    // locations.name
	Address    string    // locations.address
	City       string    // locations.city
	State      string    // locations.state
	Country    string    // locations.country
	Latitude   float64   // locations.latitude
	Longitude  float64   // locations.longitude
	TotalSpots uint32    // locations.total_spots
	CreatedAt  time.Time // locations.created_at
	UpdatedAt  time.Time // locations.updated_at
}
