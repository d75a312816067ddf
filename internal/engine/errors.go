// Package engine implements the slot capacity reservation core: the
// capacity ledger, the hold protocol, the booking transaction coordinator
// and the ticket token lifecycle.  All capacity-affecting operations run
// inside a single store transaction and either commit fully or leave no
// observable change.
package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors making up the engine's error taxonomy.  Handlers branch
// on these with errors.Is; none of them indicates a system fault.  A full
// slot is an expected outcome, not an exception.
var (
	// ErrSlotNotFound is returned when a referenced slot does not exist
	// or does not belong to the expected tenant.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrBookingNotFound is returned when a referenced booking does not
	// exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrTicketNotFound is returned when no booking carries the presented
	// ticket token.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrCapacityExceeded is returned when a requested quantity exceeds
	// the effective available capacity.  Wrapped by CapacityError, which
	// carries the numbers callers need for an actionable message.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidState is returned for operations against a booking in a
	// terminal state, or a transfer target that is unavailable or belongs
	// to a different tenant.
	ErrInvalidState = errors.New("invalid state")
	// ErrExpiredHold is returned when a supplied hold no longer exists or
	// has expired at consumption time.
	ErrExpiredHold = errors.New("hold expired")
	// ErrForbidden is returned when the acting user does not own the
	// booking an edit or cancel targets.
	ErrForbidden = errors.New("forbidden")
	// ErrConcurrentModification is returned on lock-acquisition timeouts
	// and store-level serialization failures.  Safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification")
)

// CapacityError reports a failed capacity check with enough detail for the
// calling layer to present requested vs. available quantities.  It matches
// ErrCapacityExceeded under errors.Is.
type CapacityError struct {
	SlotID    uint64
	Requested uint32
	Available uint32
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot %d: requested %d units, %d available", e.SlotID, e.Requested, e.Available)
}

// Is makes errors.Is(err, ErrCapacityExceeded) succeed for CapacityError
// values.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
