package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arinvel/slot-reservation/internal/model"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to model.BookingStatus
		ok       bool
	}{
		{model.BookingPending, model.BookingConfirmed, true},
		{model.BookingPending, model.BookingCancelled, true},
		{model.BookingPending, model.BookingCompleted, false},
		{model.BookingConfirmed, model.BookingCancelled, true},
		{model.BookingConfirmed, model.BookingCompleted, true},
		{model.BookingConfirmed, model.BookingPending, false},
		{model.BookingCancelled, model.BookingConfirmed, false},
		{model.BookingCancelled, model.BookingPending, false},
		{model.BookingCompleted, model.BookingCancelled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.False(t, model.BookingPending.Terminal())
	assert.False(t, model.BookingConfirmed.Terminal())
	assert.True(t, model.BookingCancelled.Terminal())
	assert.True(t, model.BookingCompleted.Terminal())
}

func TestTicketStateTransitions(t *testing.T) {
	cases := []struct {
		from, to model.TicketState
		ok       bool
	}{
		{model.TicketUnissued, model.TicketIssued, true},
		{model.TicketUnissued, model.TicketRedeemed, false},
		{model.TicketIssued, model.TicketRevoked, true},
		{model.TicketIssued, model.TicketRedeemed, true},
		{model.TicketRevoked, model.TicketIssued, true},
		{model.TicketRevoked, model.TicketRedeemed, false},
		{model.TicketRedeemed, model.TicketIssued, false},
		{model.TicketRedeemed, model.TicketRevoked, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestSlotAvailableCapacityFloorsAtZero(t *testing.T) {
	s := model.Slot{OriginalCapacity: 4, BookedCount: 1}
	assert.Equal(t, uint32(3), s.AvailableCapacity())

	s.BookedCount = 4
	assert.Equal(t, uint32(0), s.AvailableCapacity())
	assert.False(t, s.Overbooked())

	// Legacy overbooked rows report zero, never wrap.
	s.BookedCount = 6
	assert.Equal(t, uint32(0), s.AvailableCapacity())
	assert.True(t, s.Overbooked())

	// Both accessors answer on a bare value, not only an addressable
	// variable.
	assert.Equal(t, uint32(3), model.Slot{OriginalCapacity: 4, BookedCount: 1}.AvailableCapacity())
	assert.False(t, model.Slot{OriginalCapacity: 4, BookedCount: 1}.Overbooked())
}

func TestValidTimeRange(t *testing.T) {
	assert.True(t, model.ValidTimeRange(540, 600))
	// Overnight windows wrap midnight and are valid.
	assert.True(t, model.ValidTimeRange(1380, 120))
	// Zero-length windows are not.
	assert.False(t, model.ValidTimeRange(600, 600))
}

func TestHoldActive(t *testing.T) {
	now := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	h := model.Hold{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, h.Active(now))
	// Expiry is exclusive: a hold is dead at its own expiry instant.
	h.ExpiresAt = now
	assert.False(t, h.Active(now))
	h.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, h.Active(now))
}

func TestBookingQuantity(t *testing.T) {
	b := model.Booking{Adults: 2, Children: 3}
	assert.Equal(t, uint32(5), b.Quantity())
}
