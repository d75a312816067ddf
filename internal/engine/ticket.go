package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arinvel/slot-reservation/internal/model"
	"github.com/arinvel/slot-reservation/internal/utils"
)

// ticketTokenBytes is the entropy of a ticket token; 32 bytes yield a 64
// character hex string.
const ticketTokenBytes = 32

// TicketLifecycle issues, revokes and redeems the single-use access
// credential attached to each booking.  Issue and Redeem open their own
// transactions; the coordinator revokes tickets in-transaction through
// revokeTicketLocked during an edit.
type TicketLifecycle struct {
	store Store
	now   func() time.Time
}

// NewTicketLifecycle builds a TicketLifecycle.  A nil now func defaults
// to time.Now in UTC.
func NewTicketLifecycle(store Store, now func() time.Time) *TicketLifecycle {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &TicketLifecycle{store: store, now: now}
}

// Issue generates a fresh token for a booking and moves its ticket to the
// ISSUED state, clearing any prior revocation stamp.  Issue on a terminal
// booking, or on one whose ticket cannot legally become ISSUED (for
// example a redeemed one), fails with ErrInvalidState and no change.
func (t *TicketLifecycle) Issue(ctx context.Context, bookingID uint64) (string, error) {
	var token string
	err := t.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		tok, err := issueTicketLocked(ctx, tx, b)
		if err != nil {
			return err
		}
		token = tok
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Reissue is the asynchronous half of a time edit: it generates the
// replacement token for a booking whose ticket the coordinator revoked.
// Semantically identical to Issue.
func (t *TicketLifecycle) Reissue(ctx context.Context, bookingID uint64) (string, error) {
	return t.Issue(ctx, bookingID)
}

// Invalidate revokes a booking's live token outside of an edit, recording
// the acting user and time.  The token is cleared and never accepted
// again.
func (t *TicketLifecycle) Invalidate(ctx context.Context, bookingID, actorID uint64) error {
	now := t.now()
	return t.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		return revokeTicketLocked(ctx, tx, b, actorID, now)
	})
}

// Redeem accepts a token at the gate.  The token must belong to a
// confirmed booking in the ISSUED state; redemption is single-use, clears
// the token, completes the booking and appends a REDEEM audit entry.  A
// revoked or already redeemed token is rejected with ErrInvalidState.
func (t *TicketLifecycle) Redeem(ctx context.Context, token string, actorID uint64) (*model.Booking, error) {
	now := t.now()
	var redeemed *model.Booking
	err := t.store.WithTx(ctx, func(tx Tx) error {
		b, err := tx.BookingByTokenForUpdate(ctx, token)
		if err != nil {
			return err
		}
		if !b.Ticket.State.CanTransitionTo(model.TicketRedeemed) {
			return ErrInvalidState
		}
		if b.Status != model.BookingConfirmed {
			return ErrInvalidState
		}
		b.Ticket.Token = nil
		b.Ticket.State = model.TicketRedeemed
		b.Ticket.ScannedAt = &now
		b.Ticket.ScannedBy = &actorID
		if err := tx.UpdateTicket(ctx, b.ID, b.Ticket); err != nil {
			return err
		}
		b.Status = model.BookingCompleted
		if err := tx.UpdateBookingStatus(ctx, b.ID, b.Status); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, &model.AuditEntry{
			ID:            uuid.NewString(),
			BookingID:     b.ID,
			Kind:          model.AuditRedeem,
			OldSlotID:     b.SlotID,
			NewSlotID:     b.SlotID,
			OldPriceCents: b.PriceCents,
			NewPriceCents: b.PriceCents,
			ActorID:       actorID,
			CreatedAt:     now,
		}); err != nil {
			return err
		}
		redeemed = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

// issueTicketLocked generates and stores a fresh token on an already
// locked booking.  Shared by Issue and the coordinator's create path.
// A terminal booking never receives a token, so a cancel racing an
// asynchronous reissue leaves the ticket revoked.
func issueTicketLocked(ctx context.Context, tx Tx, b *model.Booking) (string, error) {
	if b.Status.Terminal() {
		return "", ErrInvalidState
	}
	if !b.Ticket.State.CanTransitionTo(model.TicketIssued) {
		return "", ErrInvalidState
	}
	token, err := utils.NewOpaqueToken(ticketTokenBytes)
	if err != nil {
		return "", err
	}
	b.Ticket.Token = &token
	b.Ticket.State = model.TicketIssued
	b.Ticket.ScannedAt = nil
	b.Ticket.ScannedBy = nil
	if err := tx.UpdateTicket(ctx, b.ID, b.Ticket); err != nil {
		return "", err
	}
	return token, nil
}

// revokeTicketLocked clears the token of an already locked booking and
// stamps the revocation actor and time.  An unissued ticket is left
// untouched; a redeemed one cannot be revoked.
func revokeTicketLocked(ctx context.Context, tx Tx, b *model.Booking, actorID uint64, now time.Time) error {
	switch b.Ticket.State {
	case model.TicketUnissued, model.TicketRevoked:
		return nil
	case model.TicketRedeemed:
		return ErrInvalidState
	}
	b.Ticket.Token = nil
	b.Ticket.State = model.TicketRevoked
	b.Ticket.ScannedAt = &now
	b.Ticket.ScannedBy = &actorID
	return tx.UpdateTicket(ctx, b.ID, b.Ticket)
}
