package model

import "time"

// Slot is a bookable time unit of finite capacity for a service.  Slots
// are generated ahead of time from a shift template and are never
// physically deleted while bookings reference them.
//
// Fields:
//  ID               – primary key identifier.
//  ServiceID        – service the slot belongs to.
//  ShiftID          – shift template the slot was generated from.
//  Date             – calendar date of the slot (UTC midnight).
//  StartMinute      – start of the slot as minutes past midnight.
//  EndMinute        – end of the slot as minutes past midnight.  A slot
//                     whose end is numerically below its start spans
//                     midnight and is valid (overnight slot).
//  OriginalCapacity – configured maximum number of units.
//  BookedCount      – confirmed units consumed.
//  IsAvailable      – administrative flag; unavailable slots refuse new
//                     bookings but keep existing ones.
//  IsOverbooked     – derived, true when BookedCount > OriginalCapacity.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Slot struct {
	ID               uint64    // slots.id
	ServiceID        uint64    // slots.service_id
	ShiftID          uint64    // slots.shift_id
	Date             time.Time // slots.slot_date
	StartMinute      uint16    // slots.start_minute
	EndMinute        uint16    // slots.end_minute
	OriginalCapacity uint32    // slots.original_capacity
	BookedCount      uint32    // slots.booked_count
	IsAvailable      bool      // slots.is_available
	IsOverbooked     bool      // slots.is_overbooked
	CreatedAt        time.Time // slots.created_at
	UpdatedAt        time.Time // slots.updated_at
}

// AvailableCapacity returns the free units of the slot, floored at zero so
// an overbooked slot reports zero rather than a negative number.
func (s Slot) AvailableCapacity() uint32 {
	if s.BookedCount >= s.OriginalCapacity {
		return 0
	}
	return s.OriginalCapacity - s.BookedCount
}

// Overbooked recomputes the derived overbooking flag from the counters.
func (s Slot) Overbooked() bool {
	return s.BookedCount > s.OriginalCapacity
}

// ValidTimeRange reports whether the slot's time range is acceptable.
// Overnight ranges (end < start) are allowed; only a degenerate range
// where start equals end is rejected.
func ValidTimeRange(startMinute, endMinute uint16) bool {
	return startMinute != endMinute
}
