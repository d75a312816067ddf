package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

var testNow = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// fixture builds a store with one tenant-1 service and two slots of the
// given capacities.
func fixture(capA, capB uint32) (*memStore, *engine.Coordinator) {
	s := newMemStore()
	s.addService(model.Service{ID: 1, TenantID: 1, Name: "harbour tour", BasePriceCents: 1000, IsActive: true})
	s.addSlot(model.Slot{ID: 10, ServiceID: 1, Date: testNow, StartMinute: 540, EndMinute: 600, OriginalCapacity: capA, IsAvailable: true})
	s.addSlot(model.Slot{ID: 20, ServiceID: 1, Date: testNow, StartMinute: 600, EndMinute: 660, OriginalCapacity: capB, IsAvailable: true})
	co := engine.NewCoordinator(s, nil, nil, fixedNow)
	return s, co
}

func mustCreate(t *testing.T, co *engine.Coordinator, slotID uint64, adults, children uint32) *model.Booking {
	t.Helper()
	b, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: slotID, SessionID: "sess-1", UserID: 7, Adults: adults, Children: children,
	})
	require.NoError(t, err)
	return b
}

func TestCreateConfirmsAndIssuesTicket(t *testing.T) {
	s, co := fixture(4, 4)

	b := mustCreate(t, co, 10, 2, 1)

	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Equal(t, model.TicketIssued, b.Ticket.State)
	require.NotNil(t, b.Ticket.Token)
	assert.Len(t, *b.Ticket.Token, 64)
	// 2 adults at base price, 1 child at half.
	assert.Equal(t, uint32(2500), b.PriceCents)

	slot := s.slotState(10)
	assert.Equal(t, uint32(3), slot.BookedCount)
	assert.False(t, slot.IsOverbooked)
	assert.Equal(t, []model.AuditKind{model.AuditCreate}, s.auditKinds(b.ID))
}

func TestCreateRejectsEmptyParty(t *testing.T) {
	_, co := fixture(4, 4)

	_, err := co.Create(context.Background(), engine.CreateInput{SlotID: 10, SessionID: "s", UserID: 7})
	assert.ErrorIs(t, err, engine.ErrInvalidState)
}

func TestCreateFullSlotLeavesNoTrace(t *testing.T) {
	s, co := fixture(2, 2)
	mustCreate(t, co, 10, 2, 0)

	_, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: 10, SessionID: "sess-2", UserID: 8, Adults: 1,
	})
	require.ErrorIs(t, err, engine.ErrCapacityExceeded)
	var capErr *engine.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, uint32(1), capErr.Requested)
	assert.Equal(t, uint32(0), capErr.Available)

	// The failed create must not leave a booking, ticket or count behind.
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
}

// With capacity k and more than k concurrent single-unit creates, exactly
// k succeed and the slot never overshoots.
func TestCreateConcurrentNeverOversells(t *testing.T) {
	const workers = 16
	const capacity = 5
	s, co := fixture(capacity, 1)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = co.Create(context.Background(), engine.CreateInput{
				SlotID: 10, SessionID: "sess", UserID: uint64(100 + i), Adults: 1,
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, engine.ErrCapacityExceeded)
		}
	}
	assert.Equal(t, capacity, ok)
	assert.Equal(t, uint32(capacity), s.slotState(10).BookedCount)
}

func TestCreateConsumesHold(t *testing.T) {
	s, co := fixture(2, 2)
	holds := engine.NewHoldManager(s, 5*time.Minute, fixedNow)

	h, err := holds.CreateHold(context.Background(), 10, 2, "sess-1")
	require.NoError(t, err)

	b, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: 10, HoldID: h.ID, SessionID: "sess-1", UserID: 7, Adults: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.Zero(t, s.holdCount())
}

func TestCreateExpiredHoldFailsWholeBooking(t *testing.T) {
	s, co := fixture(2, 2)
	holds := engine.NewHoldManager(s, 5*time.Minute, func() time.Time { return testNow.Add(-10 * time.Minute) })

	h, err := holds.CreateHold(context.Background(), 10, 2, "sess-1")
	require.NoError(t, err)

	_, err = co.Create(context.Background(), engine.CreateInput{
		SlotID: 10, HoldID: h.ID, SessionID: "sess-1", UserID: 7, Adults: 2,
	})
	assert.ErrorIs(t, err, engine.ErrExpiredHold)
	assert.Equal(t, uint32(0), s.slotState(10).BookedCount)
}

func TestCreateUnknownHoldFails(t *testing.T) {
	_, co := fixture(2, 2)

	_, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: 10, HoldID: 999, SessionID: "sess-1", UserID: 7, Adults: 1,
	})
	assert.ErrorIs(t, err, engine.ErrExpiredHold)
}

func TestEditTimeMovesCapacityAndRevokesTicket(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)
	oldToken := *b.Ticket.Token

	res, err := co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.NoError(t, err)
	assert.False(t, res.NoOp)
	assert.Equal(t, uint64(20), res.Booking.SlotID)
	assert.Equal(t, uint64(10), res.OldSlotID)

	assert.Equal(t, uint32(0), s.slotState(10).BookedCount)
	assert.Equal(t, uint32(2), s.slotState(20).BookedCount)

	// The old credential must die with the move.
	stored := s.bookingState(b.ID)
	assert.Equal(t, model.TicketRevoked, stored.Ticket.State)
	assert.Nil(t, stored.Ticket.Token)
	assert.Equal(t, []model.AuditKind{model.AuditCreate, model.AuditEdit}, s.auditKinds(b.ID))

	// A reissued credential never repeats the revoked one.
	tickets := engine.NewTicketLifecycle(s, fixedNow)
	newToken, err := tickets.Reissue(context.Background(), b.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)
}

// The canonical worked example: a full two-unit booking moves from a full
// slot to an empty one of equal capacity.
func TestEditTimeFullSlotToEmptySlot(t *testing.T) {
	s, co := fixture(2, 2)
	b := mustCreate(t, co, 10, 2, 0)
	require.Equal(t, uint32(0), s.slotState(10).AvailableCapacity())

	res, err := co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), res.Booking.SlotID)
	assert.Equal(t, uint32(2), s.slotState(10).AvailableCapacity())
	assert.Equal(t, uint32(0), s.slotState(20).AvailableCapacity())
}

func TestEditTimeSameSlotIsNoOp(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)

	res, err := co.EditTime(context.Background(), b.ID, 10, 7, "sess-1")
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	// No edit audit, no ticket churn.
	assert.Equal(t, []model.AuditKind{model.AuditCreate}, s.auditKinds(b.ID))
	assert.Equal(t, model.TicketIssued, s.bookingState(b.ID).Ticket.State)
}

// A booking already occupying a slot keeps it even after the slot is
// closed to new bookings.
func TestEditTimeSameSlotAllowedWhenSlotClosed(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)
	s.slots[10].IsAvailable = false

	res, err := co.EditTime(context.Background(), b.ID, 10, 7, "sess-1")
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
}

func TestEditTimeRequiresOwnership(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)

	_, err := co.EditTime(context.Background(), b.ID, 20, 99, "sess-99")
	assert.ErrorIs(t, err, engine.ErrForbidden)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	assert.Equal(t, uint32(0), s.slotState(20).BookedCount)
	assert.Equal(t, model.TicketIssued, s.bookingState(b.ID).Ticket.State)
}

func TestCancelRequiresOwnership(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)

	_, err := co.Cancel(context.Background(), b.ID, 99)
	assert.ErrorIs(t, err, engine.ErrForbidden)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	assert.Equal(t, model.BookingConfirmed, s.bookingState(b.ID).Status)
}

func TestEditTimeInsufficientTargetChangesNothing(t *testing.T) {
	s, co := fixture(4, 1)
	b := mustCreate(t, co, 10, 2, 0)

	_, err := co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.ErrorIs(t, err, engine.ErrCapacityExceeded)

	// Atomicity: the source keeps its units, the target gains none, the
	// ticket survives untouched.
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	assert.Equal(t, uint32(0), s.slotState(20).BookedCount)
	assert.Equal(t, model.TicketIssued, s.bookingState(b.ID).Ticket.State)
	assert.Equal(t, []model.AuditKind{model.AuditCreate}, s.auditKinds(b.ID))
}

// Other sessions' unexpired holds on the target slot count against a
// transfer, but the mover's own holds do not.
func TestEditTimeHoldExclusion(t *testing.T) {
	s, co := fixture(4, 2)
	holds := engine.NewHoldManager(s, 5*time.Minute, fixedNow)
	b := mustCreate(t, co, 10, 2, 0)

	// A competing session holds one unit of the target: only one unit
	// remains, the two-unit move must fail.
	_, err := holds.CreateHold(context.Background(), 20, 1, "competitor")
	require.NoError(t, err)
	_, err = co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.ErrorIs(t, err, engine.ErrCapacityExceeded)

	// The mover's own hold on the target is not competition.
	_, err = holds.ReleaseHolds(context.Background(), "competitor", 20)
	require.NoError(t, err)
	_, err = holds.CreateHold(context.Background(), 20, 2, "sess-1")
	require.NoError(t, err)
	res, err := co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), res.Booking.SlotID)
}

// Expired holds are invisible to every capacity computation.
func TestEditTimeIgnoresExpiredHolds(t *testing.T) {
	s, co := fixture(4, 2)
	past := engine.NewHoldManager(s, 5*time.Minute, func() time.Time { return testNow.Add(-time.Hour) })
	b := mustCreate(t, co, 10, 2, 0)

	_, err := past.CreateHold(context.Background(), 20, 2, "ghost")
	require.NoError(t, err)

	res, err := co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(20), res.Booking.SlotID)
}

func TestEditTimeRejectsCrossTenantTarget(t *testing.T) {
	s, co := fixture(4, 4)
	s.addService(model.Service{ID: 2, TenantID: 9, Name: "other tenant", BasePriceCents: 500, IsActive: true})
	s.addSlot(model.Slot{ID: 30, ServiceID: 2, OriginalCapacity: 10, IsAvailable: true})
	b := mustCreate(t, co, 10, 2, 0)

	_, err := co.EditTime(context.Background(), b.ID, 30, 7, "sess-1")
	assert.ErrorIs(t, err, engine.ErrSlotNotFound)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
}

// Opposite-direction moves between the same pair of slots both complete.
func TestEditTimeOppositeDirections(t *testing.T) {
	s, co := fixture(4, 4)
	b1 := mustCreate(t, co, 10, 1, 0)
	b2, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: 20, SessionID: "sess-2", UserID: 8, Adults: 1,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var err1, err2 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err1 = co.EditTime(context.Background(), b1.ID, 20, 7, "sess-1")
	}()
	go func() {
		defer wg.Done()
		_, err2 = co.EditTime(context.Background(), b2.ID, 10, 8, "sess-2")
	}()
	wg.Wait()

	require.NoError(t, err1)
	require.NoError(t, err2)
	// Bookings swapped places; total booked units conserved.
	assert.Equal(t, uint32(1), s.slotState(10).BookedCount)
	assert.Equal(t, uint32(1), s.slotState(20).BookedCount)
}

func TestCancelReleasesCapacityAndRevokesTicket(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 1)

	got, err := co.Cancel(context.Background(), b.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, uint32(0), s.slotState(10).BookedCount)

	stored := s.bookingState(b.ID)
	assert.Equal(t, model.TicketRevoked, stored.Ticket.State)
	assert.Nil(t, stored.Ticket.Token)
	assert.Equal(t, []model.AuditKind{model.AuditCreate, model.AuditCancel}, s.auditKinds(b.ID))
}

func TestTerminalBookingIsImmutable(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)
	_, err := co.Cancel(context.Background(), b.ID, 7)
	require.NoError(t, err)

	_, err = co.Cancel(context.Background(), b.ID, 7)
	assert.ErrorIs(t, err, engine.ErrInvalidState)
	_, err = co.EditTime(context.Background(), b.ID, 20, 7, "sess-1")
	assert.ErrorIs(t, err, engine.ErrInvalidState)
	_, err = co.Complete(context.Background(), b.ID, 7)
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	// Double cancel must not release units twice.
	assert.Equal(t, uint32(0), s.slotState(10).BookedCount)
}

func TestCompleteKeepsCapacity(t *testing.T) {
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)

	got, err := co.Complete(context.Background(), b.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, got.Status)
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	assert.Equal(t, []model.AuditKind{model.AuditCreate, model.AuditComplete}, s.auditKinds(b.ID))
}

func TestCreateUnavailableSlotRejected(t *testing.T) {
	s, co := fixture(4, 4)
	s.addSlot(model.Slot{ID: 40, ServiceID: 1, OriginalCapacity: 4, IsAvailable: false})

	_, err := co.Create(context.Background(), engine.CreateInput{
		SlotID: 40, SessionID: "sess-1", UserID: 7, Adults: 1,
	})
	assert.ErrorIs(t, err, engine.ErrInvalidState)
}
