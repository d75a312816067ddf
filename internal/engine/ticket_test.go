package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

func ticketFixture(t *testing.T) (*memStore, *engine.Coordinator, *engine.TicketLifecycle, *model.Booking) {
	t.Helper()
	s, co := fixture(4, 4)
	b := mustCreate(t, co, 10, 2, 0)
	return s, co, engine.NewTicketLifecycle(s, fixedNow), b
}

func TestRedeemCompletesBookingOnce(t *testing.T) {
	s, _, tickets, b := ticketFixture(t)
	token := *b.Ticket.Token

	got, err := tickets.Redeem(context.Background(), token, 42)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, got.Status)
	assert.Equal(t, model.TicketRedeemed, got.Ticket.State)
	require.NotNil(t, got.Ticket.ScannedAt)
	assert.Equal(t, testNow, *got.Ticket.ScannedAt)
	require.NotNil(t, got.Ticket.ScannedBy)
	assert.Equal(t, uint64(42), *got.Ticket.ScannedBy)

	// Single use: the second scan no longer finds the token.
	_, err = tickets.Redeem(context.Background(), token, 42)
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)

	// Redemption consumes no capacity and leaves a redeem audit entry.
	assert.Equal(t, uint32(2), s.slotState(10).BookedCount)
	assert.Equal(t, []model.AuditKind{model.AuditCreate, model.AuditRedeem}, s.auditKinds(b.ID))
}

func TestRedeemUnknownToken(t *testing.T) {
	_, _, tickets, _ := ticketFixture(t)

	_, err := tickets.Redeem(context.Background(), "no-such-token", 42)
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)
}

func TestRevokedTokenCannotBeRedeemed(t *testing.T) {
	s, _, tickets, b := ticketFixture(t)
	token := *b.Ticket.Token

	require.NoError(t, tickets.Invalidate(context.Background(), b.ID, 42))

	// The token was cleared on revocation, so the gate sees it as unknown.
	_, err := tickets.Redeem(context.Background(), token, 42)
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)

	stored := s.bookingState(b.ID)
	assert.Equal(t, model.TicketRevoked, stored.Ticket.State)
	assert.Nil(t, stored.Ticket.Token)
}

// A stale token that somehow survives revocation is still rejected by the
// state machine, not just by token lookup.
func TestRedeemRevokedStateRejected(t *testing.T) {
	s, _, tickets, b := ticketFixture(t)
	token := *b.Ticket.Token

	stored := s.bookings[b.ID]
	stored.Ticket.State = model.TicketRevoked

	_, err := tickets.Redeem(context.Background(), token, 42)
	assert.ErrorIs(t, err, engine.ErrInvalidState)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	_, _, tickets, b := ticketFixture(t)

	require.NoError(t, tickets.Invalidate(context.Background(), b.ID, 42))
	require.NoError(t, tickets.Invalidate(context.Background(), b.ID, 42))
}

func TestReissueAfterRevocationYieldsFreshToken(t *testing.T) {
	s, _, tickets, b := ticketFixture(t)
	oldToken := *b.Ticket.Token

	require.NoError(t, tickets.Invalidate(context.Background(), b.ID, 42))

	newToken, err := tickets.Reissue(context.Background(), b.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldToken, newToken)

	stored := s.bookingState(b.ID)
	assert.Equal(t, model.TicketIssued, stored.Ticket.State)
	require.NotNil(t, stored.Ticket.Token)
	assert.Equal(t, newToken, *stored.Ticket.Token)
	// Reissue clears the revocation stamp.
	assert.Nil(t, stored.Ticket.ScannedAt)
	assert.Nil(t, stored.Ticket.ScannedBy)

	// The old token stays dead even though a new one is live.
	_, err = tickets.Redeem(context.Background(), oldToken, 42)
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)
}

func TestRedeemedTicketCannotBeReissued(t *testing.T) {
	_, _, tickets, b := ticketFixture(t)

	_, err := tickets.Redeem(context.Background(), *b.Ticket.Token, 42)
	require.NoError(t, err)

	_, err = tickets.Reissue(context.Background(), b.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidState)
	err = tickets.Invalidate(context.Background(), b.ID, 42)
	assert.ErrorIs(t, err, engine.ErrInvalidState)
}

// A cancelled booking never regains a live token, even when the reissue
// request was already queued before the cancel landed.
func TestCancelledBookingCannotBeReissued(t *testing.T) {
	s, co, tickets, b := ticketFixture(t)
	_, err := co.Cancel(context.Background(), b.ID, 7)
	require.NoError(t, err)

	_, err = tickets.Reissue(context.Background(), b.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	stored := s.bookingState(b.ID)
	assert.Equal(t, model.TicketRevoked, stored.Ticket.State)
	assert.Nil(t, stored.Ticket.Token)
}

func TestRedeemCancelledBookingRejected(t *testing.T) {
	_, co, tickets, b := ticketFixture(t)
	token := *b.Ticket.Token
	_, err := co.Cancel(context.Background(), b.ID, 7)
	require.NoError(t, err)

	// Cancellation revoked the ticket, so the token is gone.
	_, err = tickets.Redeem(context.Background(), token, 42)
	assert.ErrorIs(t, err, engine.ErrTicketNotFound)
}

func TestIssueUnknownBooking(t *testing.T) {
	_, _, tickets, _ := ticketFixture(t)

	_, err := tickets.Issue(context.Background(), 9999)
	assert.ErrorIs(t, err, engine.ErrBookingNotFound)
}
