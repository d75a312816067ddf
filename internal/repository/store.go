package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

// Store bundles the repositories behind the engine's transactional
// interface.  One Store serves the whole process; every engine operation
// gets a fresh *sql.Tx through WithTx.
type Store struct {
	db       *sql.DB
	Slots    *SlotRepo
	Holds    *HoldRepo
	Bookings *BookingRepo
	Services *ServiceRepo
	Audit    *AuditRepo
	Users    *UserRepo
}

// NewStore builds a Store and its repositories over one database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		Slots:    NewSlotRepo(db),
		Holds:    NewHoldRepo(db),
		Bookings: NewBookingRepo(db),
		Services: NewServiceRepo(db),
		Audit:    NewAuditRepo(db),
		Users:    NewUserRepo(db),
	}
}

// DB exposes the underlying handle for health checks and tooling.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx opens a transaction, hands the engine a Tx view over it, and
// commits when fn succeeds.  On any error the transaction is rolled back
// and the error returned unchanged, already translated to the engine
// taxonomy by the repository layer.
func (s *Store) WithTx(ctx context.Context, fn func(tx engine.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translateErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translateErr(err)
	}
	committed = true
	return nil
}

// storeTx adapts one *sql.Tx to the engine.Tx interface by delegating to
// the repositories' *Tx methods.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) SlotForUpdate(ctx context.Context, slotID uint64) (*model.Slot, error) {
	return t.store.Slots.GetForUpdateTx(ctx, t.tx, slotID)
}

func (t *storeTx) UpdateSlotCounts(ctx context.Context, slotID uint64, bookedCount uint32, overbooked bool) error {
	return t.store.Slots.UpdateCountsTx(ctx, t.tx, slotID, bookedCount, overbooked)
}

func (t *storeTx) HoldByID(ctx context.Context, holdID uint64) (*model.Hold, error) {
	return t.store.Holds.GetByIDTx(ctx, t.tx, holdID)
}

func (t *storeTx) ActiveHoldQuantity(ctx context.Context, slotID uint64, now time.Time, excludeSession string) (uint32, error) {
	return t.store.Holds.ActiveQuantityTx(ctx, t.tx, slotID, now, excludeSession)
}

func (t *storeTx) InsertHold(ctx context.Context, h *model.Hold) error {
	return t.store.Holds.CreateTx(ctx, t.tx, h)
}

func (t *storeTx) DeleteHold(ctx context.Context, holdID uint64) error {
	return t.store.Holds.DeleteTx(ctx, t.tx, holdID)
}

func (t *storeTx) DeleteHoldsBySession(ctx context.Context, sessionID string, slotID uint64) (int, error) {
	return t.store.Holds.DeleteBySessionTx(ctx, t.tx, sessionID, slotID)
}

func (t *storeTx) BookingForUpdate(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return t.store.Bookings.GetForUpdateTx(ctx, t.tx, bookingID)
}

func (t *storeTx) BookingByTokenForUpdate(ctx context.Context, token string) (*model.Booking, error) {
	return t.store.Bookings.GetByTokenForUpdateTx(ctx, t.tx, token)
}

func (t *storeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	return t.store.Bookings.CreateTx(ctx, t.tx, b)
}

func (t *storeTx) UpdateBookingSlot(ctx context.Context, bookingID, slotID uint64, priceCents uint32) error {
	return t.store.Bookings.UpdateSlotTx(ctx, t.tx, bookingID, slotID, priceCents)
}

func (t *storeTx) UpdateBookingStatus(ctx context.Context, bookingID uint64, status model.BookingStatus) error {
	return t.store.Bookings.UpdateStatusTx(ctx, t.tx, bookingID, status)
}

func (t *storeTx) UpdateTicket(ctx context.Context, bookingID uint64, ticket model.Ticket) error {
	return t.store.Bookings.UpdateTicketTx(ctx, t.tx, bookingID, ticket)
}

func (t *storeTx) ServiceByID(ctx context.Context, serviceID uint64) (*model.Service, error) {
	return t.store.Services.GetByIDTx(ctx, t.tx, serviceID)
}

func (t *storeTx) AppendAudit(ctx context.Context, e *model.AuditEntry) error {
	return t.store.Audit.AppendTx(ctx, t.tx, e)
}
