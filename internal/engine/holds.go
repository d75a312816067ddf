package engine

import (
	"context"
	"time"

	"github.com/arinvel/slot-reservation/internal/model"
	"github.com/arinvel/slot-reservation/internal/utils"
)

// HoldManager issues and releases the short-lived soft reservations made
// during checkout.  Holds never touch a slot's booked count; they only
// subtract from effective availability while unexpired.  There is no
// background sweeper: expiry is a read-time predicate applied by every
// capacity computation, so abandoned holds free capacity on their own.
type HoldManager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewHoldManager builds a HoldManager.  ttl is the fixed policy lifetime
// of new holds; clients must finalise or re-create before it elapses.
// A nil now func defaults to time.Now in UTC.
func NewHoldManager(store Store, ttl time.Duration, now func() time.Time) *HoldManager {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &HoldManager{store: store, ttl: ttl, now: now}
}

// TTL returns the policy lifetime applied to new holds.
func (m *HoldManager) TTL() time.Duration { return m.ttl }

// CreateHold reserves qty units of a slot's effective capacity for a
// session.  Any prior holds the same session has on the slot are replaced
// rather than stacked, so re-holding during checkout cannot self-block.
// The capacity check runs against the slot's availability minus all other
// sessions' unexpired holds, under the slot row lock.
func (m *HoldManager) CreateHold(ctx context.Context, slotID uint64, qty uint32, sessionID string) (*model.Hold, error) {
	if qty == 0 {
		return nil, &CapacityError{SlotID: slotID, Requested: 0, Available: 0}
	}
	now := m.now()
	var created *model.Hold
	err := m.store.WithTx(ctx, func(tx Tx) error {
		slot, err := tx.SlotForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		if !slot.IsAvailable {
			return ErrInvalidState
		}
		// Replace the session's prior holds before measuring competition;
		// what remains on the slot belongs to other sessions.
		if _, err := tx.DeleteHoldsBySession(ctx, sessionID, slotID); err != nil {
			return err
		}
		held, err := tx.ActiveHoldQuantity(ctx, slotID, now, "")
		if err != nil {
			return err
		}
		avail := slot.AvailableCapacity()
		if held >= avail {
			avail = 0
		} else {
			avail -= held
		}
		if qty > avail {
			return &CapacityError{SlotID: slotID, Requested: qty, Available: avail}
		}
		token, err := utils.NewOpaqueToken(32)
		if err != nil {
			return err
		}
		h := &model.Hold{
			SlotID:    slotID,
			SessionID: sessionID,
			Quantity:  qty,
			HoldToken: token,
			ExpiresAt: now.Add(m.ttl),
			CreatedAt: now,
		}
		if err := tx.InsertHold(ctx, h); err != nil {
			return err
		}
		created = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ReleaseHolds drops every hold a session has on a slot and returns how
// many were removed.  Releasing when no holds exist is not an error.
func (m *HoldManager) ReleaseHolds(ctx context.Context, sessionID string, slotID uint64) (int, error) {
	released := 0
	err := m.store.WithTx(ctx, func(tx Tx) error {
		n, err := tx.DeleteHoldsBySession(ctx, sessionID, slotID)
		if err != nil {
			return err
		}
		released = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// EffectiveAvailable reports a slot's capacity net of unexpired holds.
// When excludeSession is non-empty, that session's own holds are not
// counted, the variant used while a session edits a booking it already
// holds capacity for.  This is the capacity-math primitive shared by hold
// creation and the coordinator's transfer check.
func (m *HoldManager) EffectiveAvailable(ctx context.Context, slotID uint64, excludeSession string) (uint32, error) {
	now := m.now()
	var avail uint32
	err := m.store.WithTx(ctx, func(tx Tx) error {
		slot, err := tx.SlotForUpdate(ctx, slotID)
		if err != nil {
			return err
		}
		held, err := tx.ActiveHoldQuantity(ctx, slotID, now, excludeSession)
		if err != nil {
			return err
		}
		avail = slot.AvailableCapacity()
		if held >= avail {
			avail = 0
		} else {
			avail -= held
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return avail, nil
}
