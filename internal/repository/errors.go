// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// parsing driver error strings. Row absence is reported with the
// standard sql.ErrNoRows.
package repository

import "errors"

// ErrPhoneExists is returned when registering a user whose phone
// number is already taken. Handlers translate this into HTTP 409.
var ErrPhoneExists = errors.New("phone already exists")

// ErrSpotOccupied is returned when a spot cannot be marked available
// because a confirmed reservation's window contains the current
// instant. Handlers translate this into HTTP 400 per the observed
// API contract (conflict-by-policy, not 409).
var ErrSpotOccupied = errors.New("spot has an active confirmed reservation")

// ErrOverlap is returned when creating a reservation whose window
// overlaps an existing confirmed reservation on the same spot.
var ErrOverlap = errors.New("reservation window overlaps a confirmed reservation")
