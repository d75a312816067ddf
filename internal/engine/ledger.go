package engine

import (
	"context"
	"time"

	"github.com/arinvel/slot-reservation/internal/model"
)

// Ledger owns the authoritative booked-vs-available accounting for slots.
// Every method operates on rows already inside a transaction; callers
// provide the Tx and commit or abort the whole operation.  The ledger is
// the only code that writes a slot's booked count.
type Ledger struct{}

// Reserve consumes qty units of a slot's capacity.  The slot row is
// locked before its counters are read, so concurrent reservations against
// the same slot serialize and exactly one of two racing callers gets the
// last unit.  Returns a CapacityError with no mutation when the slot
// cannot cover the request.
func (Ledger) Reserve(ctx context.Context, tx Tx, slotID uint64, qty uint32) (*model.Slot, error) {
	slot, err := tx.SlotForUpdate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := reserveLocked(ctx, tx, slot, qty); err != nil {
		return nil, err
	}
	return slot, nil
}

// Release returns qty units to a slot, floored at zero as a defence
// against double-release.  The overbooking flag is recomputed from the
// new count.
func (Ledger) Release(ctx context.Context, tx Tx, slotID uint64, qty uint32) (*model.Slot, error) {
	slot, err := tx.SlotForUpdate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := releaseLocked(ctx, tx, slot, qty); err != nil {
		return nil, err
	}
	return slot, nil
}

// LockPair locks two distinct slot rows in ascending id order regardless
// of the direction the caller intends to move capacity.  The fixed order
// is what prevents two opposite-direction transfers between the same pair
// of slots from deadlocking against each other.  The slots are returned
// in the caller's (from, to) order.
func (Ledger) LockPair(ctx context.Context, tx Tx, fromID, toID uint64) (from, to *model.Slot, err error) {
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	a, err := tx.SlotForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	b, err := tx.SlotForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	if a.ID == fromID {
		return a, b, nil
	}
	return b, a, nil
}

// Transfer atomically moves qty units from one locked slot to another.
// Both rows must already be locked via LockPair.  The destination's
// capacity is checked net of other sessions' unexpired holds; holds owned
// by excludeSession are not counted as competition, which lets a customer
// re-hold their own in-flight edit without self-blocking.  On any failure
// neither slot is mutated.
func (Ledger) Transfer(ctx context.Context, tx Tx, from, to *model.Slot, qty uint32, excludeSession string, now time.Time) error {
	held, err := tx.ActiveHoldQuantity(ctx, to.ID, now, excludeSession)
	if err != nil {
		return err
	}
	avail := to.AvailableCapacity()
	if held >= avail {
		avail = 0
	} else {
		avail -= held
	}
	if qty > avail {
		return &CapacityError{SlotID: to.ID, Requested: qty, Available: avail}
	}
	if err := releaseLocked(ctx, tx, from, qty); err != nil {
		return err
	}
	return reserveLocked(ctx, tx, to, qty)
}

// reserveLocked increments the booked count of an already locked slot
// after checking raw available capacity.
func reserveLocked(ctx context.Context, tx Tx, slot *model.Slot, qty uint32) error {
	if avail := slot.AvailableCapacity(); qty > avail {
		return &CapacityError{SlotID: slot.ID, Requested: qty, Available: avail}
	}
	slot.BookedCount += qty
	slot.IsOverbooked = slot.Overbooked()
	return tx.UpdateSlotCounts(ctx, slot.ID, slot.BookedCount, slot.IsOverbooked)
}

// releaseLocked decrements the booked count of an already locked slot,
// floored at zero.
func releaseLocked(ctx context.Context, tx Tx, slot *model.Slot, qty uint32) error {
	if qty >= slot.BookedCount {
		slot.BookedCount = 0
	} else {
		slot.BookedCount -= qty
	}
	slot.IsOverbooked = slot.Overbooked()
	return tx.UpdateSlotCounts(ctx, slot.ID, slot.BookedCount, slot.IsOverbooked)
}
