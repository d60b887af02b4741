package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReservationStatus(t *testing.T) {
	cases := map[string]ReservationStatus{
		"PENDING":    StatusPending,
		"confirmed":  StatusConfirmed,
		" Cancelled": StatusCancelled,
		"completed ": StatusCompleted,
	}
	for raw, want := range cases {
		got, ok := ParseReservationStatus(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}

	_, ok := ParseReservationStatus("EXPIRED")
	assert.False(t, ok)
	_, ok = ParseReservationStatus("")
	assert.False(t, ok)
}
