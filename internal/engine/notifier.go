package engine

import (
	"context"

	"github.com/arinvel/slot-reservation/internal/model"
)

// Notifier receives signals the engine emits after a transaction commits.
// Implementations must be best-effort: a delivery failure is logged by the
// implementation and never propagates back into the engine, since the
// capacity transaction it refers to has already committed.
type Notifier interface {
	// TicketReissueRequested signals that a booking's ticket was revoked
	// inside a committed transaction and a replacement token should be
	// issued asynchronously.
	TicketReissueRequested(ctx context.Context, bookingID uint64)
	// BookingAudit fans a committed audit entry out to external
	// reporting consumers.
	BookingAudit(ctx context.Context, e model.AuditEntry)
}

// NopNotifier discards all signals.  Useful in tests and tooling.
type NopNotifier struct{}

func (NopNotifier) TicketReissueRequested(context.Context, uint64) {}
func (NopNotifier) BookingAudit(context.Context, model.AuditEntry) {}
