package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

func holdFixture(capacity uint32) (*memStore, *engine.HoldManager) {
	s := newMemStore()
	s.addService(model.Service{ID: 1, TenantID: 1, Name: "harbour tour", BasePriceCents: 1000, IsActive: true})
	s.addSlot(model.Slot{ID: 10, ServiceID: 1, OriginalCapacity: capacity, IsAvailable: true})
	return s, engine.NewHoldManager(s, 5*time.Minute, fixedNow)
}

func TestCreateHoldReservesEffectiveCapacity(t *testing.T) {
	s, m := holdFixture(5)

	h, err := m.CreateHold(context.Background(), 10, 3, "sess-1")
	require.NoError(t, err)
	assert.NotZero(t, h.ID)
	assert.NotEmpty(t, h.HoldToken)
	assert.Equal(t, testNow.Add(5*time.Minute), h.ExpiresAt)

	// Holds never touch the booked count.
	assert.Equal(t, uint32(0), s.slotState(10).BookedCount)

	avail, err := m.EffectiveAvailable(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), avail)
}

func TestCreateHoldRejectsOverCommitment(t *testing.T) {
	_, m := holdFixture(5)

	_, err := m.CreateHold(context.Background(), 10, 3, "sess-1")
	require.NoError(t, err)

	_, err = m.CreateHold(context.Background(), 10, 3, "sess-2")
	require.ErrorIs(t, err, engine.ErrCapacityExceeded)
	var capErr *engine.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(3), capErr.Requested)
	assert.Equal(t, uint32(2), capErr.Available)
}

func TestCreateHoldReplacesOwnSessionHold(t *testing.T) {
	s, m := holdFixture(5)

	_, err := m.CreateHold(context.Background(), 10, 4, "sess-1")
	require.NoError(t, err)

	// Re-holding must replace, not stack: 4 then 5 would exceed capacity
	// if both counted.
	h, err := m.CreateHold(context.Background(), 10, 5, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), h.Quantity)
	assert.Equal(t, 1, s.holdCount())
}

func TestExpiredHoldsFreeCapacityWithoutCleanup(t *testing.T) {
	s, _ := holdFixture(5)
	past := engine.NewHoldManager(s, 5*time.Minute, func() time.Time { return testNow.Add(-time.Hour) })
	_, err := past.CreateHold(context.Background(), 10, 5, "ghost")
	require.NoError(t, err)

	// The expired row still exists, yet a present-time manager sees full
	// capacity and can hold all of it.
	m := engine.NewHoldManager(s, 5*time.Minute, fixedNow)
	avail, err := m.EffectiveAvailable(context.Background(), 10, "")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), avail)

	_, err = m.CreateHold(context.Background(), 10, 5, "sess-1")
	require.NoError(t, err)
}

func TestReleaseHoldsIsIdempotent(t *testing.T) {
	_, m := holdFixture(5)
	_, err := m.CreateHold(context.Background(), 10, 2, "sess-1")
	require.NoError(t, err)

	n, err := m.ReleaseHolds(context.Background(), "sess-1", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.ReleaseHolds(context.Background(), "sess-1", 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateHoldZeroQuantityRejected(t *testing.T) {
	_, m := holdFixture(5)

	_, err := m.CreateHold(context.Background(), 10, 0, "sess-1")
	assert.ErrorIs(t, err, engine.ErrCapacityExceeded)
}

func TestCreateHoldUnknownSlot(t *testing.T) {
	_, m := holdFixture(5)

	_, err := m.CreateHold(context.Background(), 404, 1, "sess-1")
	assert.ErrorIs(t, err, engine.ErrSlotNotFound)
}

func TestCreateHoldUnavailableSlot(t *testing.T) {
	s, m := holdFixture(5)
	s.addSlot(model.Slot{ID: 11, ServiceID: 1, OriginalCapacity: 5, IsAvailable: false})

	_, err := m.CreateHold(context.Background(), 11, 1, "sess-1")
	assert.ErrorIs(t, err, engine.ErrInvalidState)
}
