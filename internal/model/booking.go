package model

import "time"

// BookingStatus is the closed set of booking lifecycle states.  Transitions
// are validated through CanTransitionTo rather than ad hoc string
// comparisons scattered across call sites.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// bookingTransitions is the explicit transition table for booking states.
// CANCELLED and COMPLETED are terminal: nothing leaves them.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled, BookingCompleted},
}

// CanTransitionTo reports whether moving from s to next is a legal
// transition.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
// Terminal bookings are immutable with respect to slot and time.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// Valid reports whether s is one of the known statuses.  Used when
// scanning rows from the store.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

// Booking is a confirmed reservation of a quantity of slot capacity.  Its
// consumed quantity is reflected in exactly one slot's booked count at any
// externally observable instant; during a slot transfer both slots are
// touched only inside a single transaction.
//
// Fields:
//  ID          – primary key identifier.
//  SlotID      – slot currently consumed by the booking.
//  ServiceID   – service the booking belongs to (denormalised for tenant
//                checks during transfers).
//  UserID      – customer who owns the booking.
//  Adults      – adult party members (>= 0).
//  Children    – child party members (>= 0).
//  PriceCents  – total price as an opaque value from the pricing provider.
//  Status      – lifecycle state, see BookingStatus.
//  Ticket      – single-use access credential, see Ticket.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID         uint64        // bookings.id
	SlotID     uint64        // bookings.slot_id
	ServiceID  uint64        // bookings.service_id
	UserID     uint64        // bookings.user_id
	Adults     uint32        // bookings.adults
	Children   uint32        // bookings.children
	PriceCents uint32        // bookings.price_cents
	Status     BookingStatus // bookings.status
	Ticket     Ticket        // ticket_* columns on bookings
	CreatedAt  time.Time     // bookings.created_at
	UpdatedAt  time.Time     // bookings.updated_at
}

// Quantity returns the units of slot capacity the booking consumes.
// Party composition is immutable during a time edit, so this value never
// changes after creation.
func (b *Booking) Quantity() uint32 {
	return b.Adults + b.Children
}
