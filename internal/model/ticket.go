package model

import "time"

// TicketState is the closed set of ticket token states.  The state is kept
// separate from the redemption stamp so a ticket revoked by a time edit is
// distinguishable from one genuinely scanned at the gate.
type TicketState string

const (
	// TicketUnissued means no token has been generated yet.
	TicketUnissued TicketState = "UNISSUED"
	// TicketIssued means the booking carries a live, redeemable token.
	TicketIssued TicketState = "ISSUED"
	// TicketRevoked means the token was invalidated by an edit and a
	// replacement is pending reissue.
	TicketRevoked TicketState = "REVOKED"
	// TicketRedeemed means the token was scanned at the gate; redemption
	// is single-use and final.
	TicketRedeemed TicketState = "REDEEMED"
)

// ticketTransitions is the explicit transition table for ticket states.
// A revoked ticket returns to ISSUED when a fresh token is generated.
var ticketTransitions = map[TicketState][]TicketState{
	TicketUnissued: {TicketIssued},
	TicketIssued:   {TicketRevoked, TicketRedeemed},
	TicketRevoked:  {TicketIssued},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s TicketState) CanTransitionTo(next TicketState) bool {
	for _, t := range ticketTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Redeemable reports whether a token in this state is accepted at the gate.
func (s TicketState) Redeemable() bool {
	return s == TicketIssued
}

// Ticket carries the single-use access credential bound to one booking
// version.  The token is cleared whenever the ticket leaves the ISSUED
// state; ScannedAt/ScannedBy record the most recent redemption or
// revocation event.
type Ticket struct {
	Token     *string     // bookings.ticket_token (nullable)
	State     TicketState // bookings.ticket_state
	ScannedAt *time.Time  // bookings.ticket_scanned_at (nullable)
	ScannedBy *uint64     // bookings.ticket_scanned_by (nullable actor id)
}
