package model

import "time"

// Hold is a short-lived soft reservation of slot capacity made during
// checkout, before a booking is finalised.  A hold never mutates a slot's
// booked count; it only subtracts from the slot's effective availability
// while unexpired.  Expiry is evaluated lazily: every capacity computation
// filters on ExpiresAt, so abandoned holds free capacity with no cleanup
// process.
//
// Fields:
//  ID        – primary key identifier.
//  SlotID    – slot whose capacity is being held.
//  SessionID – caller-supplied correlation id; a session's own holds are
//              excluded from competing-capacity checks during an edit.
//  Quantity  – units of capacity reserved.
//  HoldToken – opaque token returned to the client for reference.
//  ExpiresAt – when the hold stops counting against capacity.
//  CreatedAt – when the hold was created.
type Hold struct {
	ID        uint64    // holds.id
	SlotID    uint64    // holds.slot_id
	SessionID string    // holds.session_id
	Quantity  uint32    // holds.quantity
	HoldToken string    // holds.hold_token
	ExpiresAt time.Time // holds.expires_at
	CreatedAt time.Time // holds.created_at
}

// Active reports whether the hold still counts against capacity at the
// given instant.
func (h *Hold) Active(now time.Time) bool {
	return h.ExpiresAt.After(now)
}
