package repository

import (
	"context"
	"database/sql"

	"github.com/arinvel/slot-reservation/internal/model"
)

// AuditRepo provides access to the append-only audit_entries table.
// Entries are written inside the same transaction as the transition they
// record; there is deliberately no update or delete.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// AppendTx inserts one audit entry within the provided transaction.
func (r *AuditRepo) AppendTx(ctx context.Context, tx *sql.Tx, e *model.AuditEntry) error {
	const q = `INSERT INTO audit_entries
               (id, booking_id, kind, old_slot_id, new_slot_id, old_price_cents, new_price_cents, actor_id, created_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		e.ID, e.BookingID, string(e.Kind), e.OldSlotID, e.NewSlotID,
		e.OldPriceCents, e.NewPriceCents, e.ActorID,
		e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return translateErr(err)
}

// ListByBooking returns a booking's audit trail oldest first, for
// display and reconciliation.
func (r *AuditRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.AuditEntry, error) {
	const q = `SELECT id, booking_id, kind, old_slot_id, new_slot_id,
                      old_price_cents, new_price_cents, actor_id, created_at
               FROM audit_entries WHERE booking_id = ? ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q, bookingID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	out := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.BookingID, &kind, &e.OldSlotID, &e.NewSlotID,
			&e.OldPriceCents, &e.NewPriceCents, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = model.AuditKind(kind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
