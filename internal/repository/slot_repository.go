package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

// SlotRepo provides data access to the slots table.  Capacity counters
// are only ever read through GetForUpdateTx, which takes an exclusive row
// lock, and written through UpdateCountsTx inside the same transaction.
// Browsing queries that do not mutate counters read without locks.
type SlotRepo struct {
	db *sql.DB
}

// NewSlotRepo returns a new SlotRepo bound to the given database.
func NewSlotRepo(db *sql.DB) *SlotRepo { return &SlotRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *SlotRepo) DB() *sql.DB { return r.db }

const slotColumns = `id, service_id, shift_id, slot_date, start_minute, end_minute,
               original_capacity, booked_count, is_available, is_overbooked,
               created_at, updated_at`

// scanSlot reads one slot row from any row scanner.
func scanSlot(row interface{ Scan(...interface{}) error }) (*model.Slot, error) {
	var s model.Slot
	err := row.Scan(
		&s.ID, &s.ServiceID, &s.ShiftID, &s.Date, &s.StartMinute, &s.EndMinute,
		&s.OriginalCapacity, &s.BookedCount, &s.IsAvailable, &s.IsOverbooked,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetForUpdateTx locks a slot row exclusively and returns it.  The lock
// is held until the transaction commits or rolls back, serializing every
// capacity mutation of the slot.  Returns engine.ErrSlotNotFound when the
// slot does not exist.
func (r *SlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, slotID uint64) (*model.Slot, error) {
	const q = `SELECT ` + slotColumns + ` FROM slots WHERE id = ? FOR UPDATE`
	s, err := scanSlot(tx.QueryRowContext(ctx, q, slotID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrSlotNotFound
		}
		return nil, translateErr(err)
	}
	return s, nil
}

// UpdateCountsTx writes a slot's booked count and overbooking flag.  The
// caller must hold the row lock from GetForUpdateTx.
func (r *SlotRepo) UpdateCountsTx(ctx context.Context, tx *sql.Tx, slotID uint64, bookedCount uint32, overbooked bool) error {
	const q = `UPDATE slots SET booked_count = ?, is_overbooked = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, bookedCount, overbooked, slotID)
	return translateErr(err)
}

// SlotAvailability is the read model returned to browsing clients.  The
// held quantity is folded in so the listed availability matches what a
// hold request would actually see.
type SlotAvailability struct {
	ID          uint64 `json:"id"`
	ServiceID   uint64 `json:"service_id"`
	Date        string `json:"date"`
	StartMinute uint16 `json:"start_minute"`
	EndMinute   uint16 `json:"end_minute"`
	Capacity    uint32 `json:"capacity"`
	BookedCount uint32 `json:"booked_count"`
	HeldCount   uint32 `json:"held_count"`
	Available   uint32 `json:"available"`
	IsAvailable bool   `json:"is_available"`
}

// ListByService returns a service's slots for a calendar date together
// with their effective availability.  Unexpired holds are aggregated in
// SQL so a single query serves the browse endpoint; no locks are taken.
func (r *SlotRepo) ListByService(ctx context.Context, serviceID uint64, date time.Time) ([]SlotAvailability, error) {
	const q = `SELECT s.id, s.service_id, s.slot_date, s.start_minute, s.end_minute,
                      s.original_capacity, s.booked_count, s.is_available,
                      COALESCE(SUM(CASE WHEN h.expires_at > UTC_TIMESTAMP() THEN h.quantity ELSE 0 END), 0)
               FROM slots s
               LEFT JOIN holds h ON h.slot_id = s.id
               WHERE s.service_id = ? AND s.slot_date = ?
               GROUP BY s.id, s.service_id, s.slot_date, s.start_minute, s.end_minute,
                        s.original_capacity, s.booked_count, s.is_available
               ORDER BY s.start_minute`
	rows, err := r.db.QueryContext(ctx, q, serviceID, date.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	out := make([]SlotAvailability, 0)
	for rows.Next() {
		var (
			sa       SlotAvailability
			slotDate time.Time
			capTotal uint32
			held     uint64
		)
		if err := rows.Scan(&sa.ID, &sa.ServiceID, &slotDate, &sa.StartMinute, &sa.EndMinute,
			&capTotal, &sa.BookedCount, &sa.IsAvailable, &held); err != nil {
			return nil, err
		}
		sa.Date = slotDate.UTC().Format("2006-01-02")
		sa.Capacity = capTotal
		sa.HeldCount = uint32(held)
		avail := uint32(0)
		if sa.BookedCount < capTotal {
			avail = capTotal - sa.BookedCount
		}
		if sa.HeldCount >= avail {
			avail = 0
		} else {
			avail -= sa.HeldCount
		}
		sa.Available = avail
		out = append(out, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
