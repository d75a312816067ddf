package model

import "time"

// AuditKind identifies the capacity-affecting transition an audit entry
// records.
type AuditKind string

const (
	AuditCreate   AuditKind = "CREATE"
	AuditEdit     AuditKind = "EDIT"
	AuditCancel   AuditKind = "CANCEL"
	AuditComplete AuditKind = "COMPLETE"
	AuditRedeem   AuditKind = "REDEEM"
)

// AuditEntry is an append-only record of a capacity-affecting transition.
// Entries are written inside the same transaction as the transition they
// describe and are never updated or deleted; external reporting consumes
// them through the audit fan-out queue.
type AuditEntry struct {
	ID            string    // audit_entries.id (uuid)
	BookingID     uint64    // audit_entries.booking_id
	Kind          AuditKind // audit_entries.kind
	OldSlotID     uint64    // audit_entries.old_slot_id (0 when not applicable)
	NewSlotID     uint64    // audit_entries.new_slot_id (0 when not applicable)
	OldPriceCents uint32    // audit_entries.old_price_cents
	NewPriceCents uint32    // audit_entries.new_price_cents
	ActorID       uint64    // audit_entries.actor_id (0 for system)
	CreatedAt     time.Time // audit_entries.created_at
}
