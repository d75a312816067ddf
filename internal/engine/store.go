package engine

import (
	"context"
	"time"

	"github.com/arinvel/slot-reservation/internal/model"
)

// Store is the transactional boundary the engine runs on.  The MySQL
// implementation lives in internal/repository; tests use an in-memory
// store.  WithTx must guarantee that fn's effects are atomic: if fn
// returns an error the transaction is rolled back and the error returned
// unchanged, otherwise the transaction is committed.  Store
// implementations translate their own lock-timeout and serialization
// failures to ErrConcurrentModification.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx exposes the row-level operations available inside one transaction.
// Every *ForUpdate accessor acquires an exclusive lock on the row it
// returns and blocks until the lock is granted, which is the only
// suspension point the engine has.  Rows the engine mutates are only ever
// read through these locking accessors.
type Tx interface {
	// SlotForUpdate locks and returns one slot row.  Returns
	// ErrSlotNotFound when the slot does not exist.
	SlotForUpdate(ctx context.Context, slotID uint64) (*model.Slot, error)
	// UpdateSlotCounts writes a slot's booked count and derived
	// overbooking flag.  The row must already be locked by this
	// transaction.
	UpdateSlotCounts(ctx context.Context, slotID uint64, bookedCount uint32, overbooked bool) error

	// HoldByID returns a hold regardless of expiry, or nil when no such
	// hold exists.  Expiry is the caller's concern so that consumption
	// can distinguish "gone" from "expired".
	HoldByID(ctx context.Context, holdID uint64) (*model.Hold, error)
	// ActiveHoldQuantity sums the quantities of unexpired holds on a
	// slot.  When excludeSession is non-empty, holds owned by that
	// session are left out of the sum.  This is the own-hold exclusion
	// used during transfers and re-holds.
	ActiveHoldQuantity(ctx context.Context, slotID uint64, now time.Time, excludeSession string) (uint32, error)
	// InsertHold persists a new hold and fills in its generated ID.
	InsertHold(ctx context.Context, h *model.Hold) error
	// DeleteHold removes a hold by ID.  Deleting an absent hold is not an
	// error; holds vanish when consumed or replaced.
	DeleteHold(ctx context.Context, holdID uint64) error
	// DeleteHoldsBySession removes every hold a session has on a slot and
	// returns how many were removed.
	DeleteHoldsBySession(ctx context.Context, sessionID string, slotID uint64) (int, error)

	// BookingForUpdate locks and returns one booking row.  Returns
	// ErrBookingNotFound when the booking does not exist.  Acquiring this
	// lock first is what serializes concurrent edits and cancels of the
	// same booking.
	BookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error)
	// BookingByTokenForUpdate locks and returns the booking carrying the
	// given live ticket token.  Returns ErrTicketNotFound when no booking
	// carries the token.
	BookingByTokenForUpdate(ctx context.Context, token string) (*model.Booking, error)
	// InsertBooking persists a new booking and fills in its generated ID.
	InsertBooking(ctx context.Context, b *model.Booking) error
	// UpdateBookingSlot rewrites a booking's slot reference and price.
	UpdateBookingSlot(ctx context.Context, bookingID, slotID uint64, priceCents uint32) error
	// UpdateBookingStatus rewrites a booking's lifecycle status.
	UpdateBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error
	// UpdateTicket rewrites a booking's ticket columns.
	UpdateTicket(ctx context.Context, bookingID uint64, t model.Ticket) error

	// ServiceByID returns a service row.  Returns ErrSlotNotFound when
	// the service does not exist, since a slot dangling without its
	// service is indistinguishable from a missing slot to callers.
	ServiceByID(ctx context.Context, serviceID uint64) (*model.Service, error)

	// AppendAudit writes one append-only audit entry.
	AppendAudit(ctx context.Context, e *model.AuditEntry) error
}
