package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arinvel/slot-reservation/internal/model"
)

// Coordinator runs the transactional booking operations.  Every public
// method is one Store.WithTx call: all of its effects commit together or
// none do, and no partial capacity or ticket state is ever observable
// outside the transaction.  The coordinator is the sole writer of booked
// counts, booking statuses and ticket columns.
type Coordinator struct {
	store    Store
	ledger   Ledger
	pricer   Pricer
	notifier Notifier
	now      func() time.Time
}

// NewCoordinator builds a Coordinator.  A nil pricer falls back to
// BasePricer, a nil notifier to NopNotifier and a nil now func to
// time.Now in UTC.
func NewCoordinator(store Store, pricer Pricer, notifier Notifier, now func() time.Time) *Coordinator {
	if pricer == nil {
		pricer = BasePricer{}
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Coordinator{store: store, pricer: pricer, notifier: notifier, now: now}
}

// CreateInput carries the parameters of a booking creation.  HoldID is
// optional: when present the hold is consumed inside the same transaction
// and must still be alive.  SessionID correlates the request with the
// caller's holds.
type CreateInput struct {
	SlotID    uint64
	HoldID    uint64 // 0 when the caller holds nothing
	SessionID string
	UserID    uint64
	Adults    uint32
	Children  uint32
}

// Create reserves capacity and creates a confirmed booking with a live
// ticket in one transaction.  Party composition must total at least one
// unit.  Any failure (slot missing or unavailable, hold expired,
// capacity short) rolls back all three effects.
func (co *Coordinator) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	qty := in.Adults + in.Children
	if qty == 0 {
		return nil, ErrInvalidState
	}
	now := co.now()
	var (
		booking *model.Booking
		audit   model.AuditEntry
	)
	err := co.store.WithTx(ctx, func(tx Tx) error {
		slot, err := tx.SlotForUpdate(ctx, in.SlotID)
		if err != nil {
			return err
		}
		if !slot.IsAvailable {
			return ErrInvalidState
		}
		if in.HoldID != 0 {
			h, err := tx.HoldByID(ctx, in.HoldID)
			if err != nil {
				return err
			}
			if h == nil || !h.Active(now) {
				return ErrExpiredHold
			}
			if h.SlotID != in.SlotID {
				return ErrInvalidState
			}
			if err := tx.DeleteHold(ctx, h.ID); err != nil {
				return err
			}
		}
		if err := reserveLocked(ctx, tx, slot, qty); err != nil {
			return err
		}
		svc, err := tx.ServiceByID(ctx, slot.ServiceID)
		if err != nil {
			return err
		}
		price, err := co.pricer.Quote(ctx, svc, slot, in.Adults, in.Children)
		if err != nil {
			return err
		}
		b := &model.Booking{
			SlotID:     slot.ID,
			ServiceID:  slot.ServiceID,
			UserID:     in.UserID,
			Adults:     in.Adults,
			Children:   in.Children,
			PriceCents: price,
			Status:     model.BookingConfirmed,
			Ticket:     model.Ticket{State: model.TicketUnissued},
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		if _, err := issueTicketLocked(ctx, tx, b); err != nil {
			return err
		}
		audit = model.AuditEntry{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Kind:          model.AuditCreate,
			NewSlotID:     slot.ID,
			NewPriceCents: price,
			ActorID:       in.UserID,
			CreatedAt:     now,
		}
		if err := tx.AppendAudit(ctx, &audit); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.notifier.BookingAudit(ctx, audit)
	return booking, nil
}

// EditResult reports the outcome of a time edit.  NoOp is set when the
// target slot equals the current one and nothing was touched.
type EditResult struct {
	Booking       *model.Booking
	NoOp          bool
	PriceChanged  bool
	OldSlotID     uint64
	OldPriceCents uint32
}

// EditTime atomically moves a booking from its current slot to another.
// The booking row is locked first, serializing concurrent edits and
// cancels of the same booking; then both slot rows are locked in
// canonical order and the transfer runs net of other sessions' holds.
// The booking's ticket is revoked inside the same transaction and a
// reissue signal is emitted after commit.  Only the booking's owner may
// edit it; terminal bookings are immutable; a transfer to the booking's
// current slot is a no-op success.
func (co *Coordinator) EditTime(ctx context.Context, bookingID, newSlotID, actorID uint64, sessionID string) (*EditResult, error) {
	now := co.now()
	var (
		res     EditResult
		audit   model.AuditEntry
		revoked bool
	)
	err := co.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != actorID {
			return ErrForbidden
		}
		if b.Status.Terminal() {
			return ErrInvalidState
		}
		if b.SlotID == newSlotID {
			// The availability flag is not rechecked here: a booking
			// already occupying the slot keeps its place even when the
			// slot has since been closed to new bookings.
			res = EditResult{Booking: b, NoOp: true, OldSlotID: b.SlotID, OldPriceCents: b.PriceCents}
			return nil
		}
		from, to, err := co.ledger.LockPair(ctx, tx, b.SlotID, newSlotID)
		if err != nil {
			return err
		}
		if !to.IsAvailable {
			return ErrInvalidState
		}
		fromSvc, err := tx.ServiceByID(ctx, from.ServiceID)
		if err != nil {
			return err
		}
		toSvc, err := tx.ServiceByID(ctx, to.ServiceID)
		if err != nil {
			return err
		}
		if fromSvc.TenantID != toSvc.TenantID {
			return ErrSlotNotFound
		}
		qty := b.Quantity()
		if err := co.ledger.Transfer(ctx, tx, from, to, qty, sessionID, now); err != nil {
			return err
		}
		newPrice, err := co.pricer.Quote(ctx, toSvc, to, b.Adults, b.Children)
		if err != nil {
			return err
		}
		if err := revokeTicketLocked(ctx, tx, b, actorID, now); err != nil {
			return err
		}
		oldSlot, oldPrice := b.SlotID, b.PriceCents
		if err := tx.UpdateBookingSlot(ctx, b.ID, to.ID, newPrice); err != nil {
			return err
		}
		b.SlotID = to.ID
		b.ServiceID = to.ServiceID
		b.PriceCents = newPrice
		audit = model.AuditEntry{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Kind:          model.AuditEdit,
			OldSlotID:     oldSlot,
			NewSlotID:     to.ID,
			OldPriceCents: oldPrice,
			NewPriceCents: newPrice,
			ActorID:       actorID,
			CreatedAt:     now,
		}
		if err := tx.AppendAudit(ctx, &audit); err != nil {
			return err
		}
		res = EditResult{
			Booking:       b,
			PriceChanged:  newPrice != oldPrice,
			OldSlotID:     oldSlot,
			OldPriceCents: oldPrice,
		}
		revoked = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if revoked {
		co.notifier.TicketReissueRequested(ctx, res.Booking.ID)
		co.notifier.BookingAudit(ctx, audit)
	}
	return &res, nil
}

// Cancel releases a booking's capacity back to its slot and moves it to
// CANCELLED.  The booking row lock serializes against concurrent edits;
// only the owner may cancel, and cancelling a terminal booking fails
// with ErrInvalidState and zero side effects.  A live ticket is revoked
// in the same transaction.
func (co *Coordinator) Cancel(ctx context.Context, bookingID, actorID uint64) (*model.Booking, error) {
	now := co.now()
	var (
		booking *model.Booking
		audit   model.AuditEntry
	)
	err := co.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.UserID != actorID {
			return ErrForbidden
		}
		if !b.Status.CanTransitionTo(model.BookingCancelled) {
			return ErrInvalidState
		}
		if _, err := co.ledger.Release(ctx, tx, b.SlotID, b.Quantity()); err != nil {
			return err
		}
		if err := revokeTicketLocked(ctx, tx, b, actorID, now); err != nil {
			return err
		}
		b.Status = model.BookingCancelled
		if err := tx.UpdateBookingStatus(ctx, b.ID, b.Status); err != nil {
			return err
		}
		audit = model.AuditEntry{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Kind:          model.AuditCancel,
			OldSlotID:     b.SlotID,
			NewSlotID:     b.SlotID,
			OldPriceCents: b.PriceCents,
			NewPriceCents: b.PriceCents,
			ActorID:       actorID,
			CreatedAt:     now,
		}
		if err := tx.AppendAudit(ctx, &audit); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.notifier.BookingAudit(ctx, audit)
	return booking, nil
}

// Complete moves a confirmed booking to COMPLETED without touching
// capacity: the slot's units were consumed and the service was delivered.
// Usually driven by gate redemption; exposed for staff tooling.
func (co *Coordinator) Complete(ctx context.Context, bookingID, actorID uint64) (*model.Booking, error) {
	now := co.now()
	var (
		booking *model.Booking
		audit   model.AuditEntry
	)
	err := co.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if !b.Status.CanTransitionTo(model.BookingCompleted) {
			return ErrInvalidState
		}
		b.Status = model.BookingCompleted
		if err := tx.UpdateBookingStatus(ctx, b.ID, b.Status); err != nil {
			return err
		}
		audit = model.AuditEntry{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Kind:          model.AuditComplete,
			OldSlotID:     b.SlotID,
			NewSlotID:     b.SlotID,
			OldPriceCents: b.PriceCents,
			NewPriceCents: b.PriceCents,
			ActorID:       actorID,
			CreatedAt:     now,
		}
		if err := tx.AppendAudit(ctx, &audit); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	co.notifier.BookingAudit(ctx, audit)
	return booking, nil
}
