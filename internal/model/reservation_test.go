package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{ReservationStatusHeld, ReservationStatusConfirmed, true},
		{ReservationStatusHeld, ReservationStatusDonated, true},
		{ReservationStatusHeld, ReservationStatusCancelled, true},
		{ReservationStatusHeld, ReservationStatusClaimed, false},
		{ReservationStatusDonated, ReservationStatusClaimed, true},
		{ReservationStatusDonated, ReservationStatusCancelled, false},
		{ReservationStatusConfirmed, ReservationStatusPickedUp, true},
		{ReservationStatusConfirmed, ReservationStatusConfirmed, false},
		{ReservationStatusClaimed, ReservationStatusPickedUp, true},
		{ReservationStatusPickedUp, ReservationStatusClaimed, false},
		{ReservationStatusCancelled, ReservationStatusHeld, false},
		{ReservationStatus("BOGUS"), ReservationStatusHeld, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestReservationStatus_Predicates(t *testing.T) {
	assert.True(t, ReservationStatusPickedUp.IsTerminal())
	assert.True(t, ReservationStatusCancelled.IsTerminal())
	assert.False(t, ReservationStatusDonated.IsTerminal())
	assert.False(t, ReservationStatus("BOGUS").IsTerminal())

	assert.False(t, ReservationStatusHeld.HoldsInventory())
	assert.False(t, ReservationStatusCancelled.HoldsInventory())
	assert.True(t, ReservationStatusDonated.HoldsInventory())
	assert.True(t, ReservationStatusClaimed.HoldsInventory())

	assert.True(t, ReservationStatusClaimed.CountsTowardQuota())
	assert.True(t, ReservationStatusPickedUp.CountsTowardQuota())
	assert.False(t, ReservationStatusConfirmed.CountsTowardQuota())
}

func TestReservation_IsOwnedBy(t *testing.T) {
	owner := 7
	r := &Reservation{UserID: &owner}
	assert.True(t, r.IsOwnedBy(7))
	assert.False(t, r.IsOwnedBy(8))

	pooled := &Reservation{}
	assert.False(t, pooled.IsOwnedBy(7))
}
