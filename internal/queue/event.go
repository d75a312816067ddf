// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns reissue requests into fresh
// ticket tokens.
package queue

// TicketReissueRequestedEvent is published after a time edit commits with
// the booking's ticket revoked.  The consumer issues the replacement
// token in its own transaction and hands it to delivery.
type TicketReissueRequestedEvent struct {
	EventID   string `json:"event_id"`
	BookingID uint64 `json:"booking_id"`
	EmittedAt string `json:"emitted_at"`
}

// BookingAuditEvent mirrors a committed audit entry for external
// reporting consumers.  Downstream systems get the full transition record
// without querying the primary database.
type BookingAuditEvent struct {
	EventID       string `json:"event_id"`
	AuditID       string `json:"audit_id"`
	BookingID     uint64 `json:"booking_id"`
	Kind          string `json:"kind"`
	OldSlotID     uint64 `json:"old_slot_id"`
	NewSlotID     uint64 `json:"new_slot_id"`
	OldPriceCents uint32 `json:"old_price_cents"`
	NewPriceCents uint32 `json:"new_price_cents"`
	ActorID       uint64 `json:"actor_id"`
	OccurredAt    string `json:"occurred_at"`
}

// Queue names shared by publisher and consumer.  Both sides declare the
// queue so startup order does not matter.
const (
	TicketReissueQueue = "ticket.reissue"
	BookingAuditQueue  = "booking.audit"
)
