package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming the submitted token
	"time"     // formatting the scan timestamp

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/engine" // ticket lifecycle
)

// ScanHandler exposes the gate-side ticket endpoints.  Routes using it
// are restricted to STAFF by middleware.
type ScanHandler struct {
	Tickets  *engine.TicketLifecycle
	Notifier engine.Notifier
}

// NewScanHandler constructs a ScanHandler.  A nil notifier disables the
// reissue request emitted after a staff invalidation.
func NewScanHandler(tickets *engine.TicketLifecycle, notifier engine.Notifier) *ScanHandler {
	if tickets == nil {
		panic("nil ticket lifecycle passed to NewScanHandler")
	}
	if notifier == nil {
		notifier = engine.NopNotifier{}
	}
	return &ScanHandler{Tickets: tickets, Notifier: notifier}
}

// Scan handles POST /v1/tickets/scan.  The body carries the opaque ticket
// token read from the customer's QR code.  A valid first scan redeems the
// ticket and completes its booking; a second scan of the same token, or a
// scan of a revoked token, responds 409.  An unknown token responds 404,
// so a forged and an already-rotated token look the same to the gate.
func (h *ScanHandler) Scan(c echo.Context) error {
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	token := strings.TrimSpace(body.Token)
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	booking, err := h.Tickets.Redeem(c.Request().Context(), token, staffID)
	if handled, resp := engineError(c, err); handled {
		return resp
	}
	scannedAt := ""
	if booking.Ticket.ScannedAt != nil {
		scannedAt = booking.Ticket.ScannedAt.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": booking.ID,
		"slot_id":    booking.SlotID,
		"adults":     booking.Adults,
		"children":   booking.Children,
		"status":     booking.Status,
		"scanned_at": scannedAt,
	})
}

// Invalidate handles POST /v1/bookings/:id/ticket/invalidate.  Staff use
// it to revoke a ticket that leaked (a forwarded screenshot, a disputed
// charge) without cancelling the booking.  A replacement is issued asynchronously.
func (h *ScanHandler) Invalidate(c echo.Context) error {
	staffID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	if err := h.Tickets.Invalidate(c.Request().Context(), bookingID, staffID); err != nil {
		_, resp := engineError(c, err)
		return resp
	}
	h.Notifier.TicketReissueRequested(c.Request().Context(), bookingID)
	return c.NoContent(http.StatusNoContent)
}
