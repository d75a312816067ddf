package handler

import (
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/engine"     // booking coordinator
	"github.com/arinvel/slot-reservation/internal/repository" // read models for listing
)

// BookingHandler exposes the booking lifecycle endpoints.  Writes go
// through the coordinator, which owns transactional capacity movement;
// reads go straight to the repository read models.
type BookingHandler struct {
	Coordinator *engine.Coordinator
	Bookings    *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies must
// be non-nil.
func NewBookingHandler(co *engine.Coordinator, bookings *repository.BookingRepo) *BookingHandler {
	if co == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Coordinator: co, Bookings: bookings}
}

// CreateBooking handles POST /v1/bookings.  The body names the slot,
// party size and optionally the hold to consume.  On success the booking
// is confirmed, capacity is debited and a ticket token is issued, all in
// one transaction.  Responds 201 with the booking and its ticket, 409
// with requested/available counts when the slot is full, 410 when the
// referenced hold has expired.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		SlotID   uint64 `json:"slot_id"`
		HoldID   uint64 `json:"hold_id"`
		Adults   uint32 `json:"adults"`
		Children uint32 `json:"children"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id is required"})
	}
	if body.Adults+body.Children == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party size must be positive"})
	}

	booking, err := h.Coordinator.Create(c.Request().Context(), engine.CreateInput{
		SlotID:    body.SlotID,
		HoldID:    body.HoldID,
		SessionID: sessionID(c, userID),
		UserID:    userID,
		Adults:    body.Adults,
		Children:  body.Children,
	})
	if handled, resp := engineError(c, err); handled {
		return resp
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"booking_id":   booking.ID,
		"slot_id":      booking.SlotID,
		"status":       booking.Status,
		"price_cents":  booking.PriceCents,
		"ticket_token": booking.Ticket.Token,
	})
}

// EditBookingSlot handles PATCH /v1/bookings/:id/slot.  It moves the
// booking's party to another slot of the same service, re-prices it and
// revokes the old ticket so a replacement can be issued.  Moving to the
// slot the booking already occupies succeeds without changing anything.
// Responds 409 with requested/available counts when the target slot
// cannot absorb the party.
func (h *BookingHandler) EditBookingSlot(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		SlotID uint64 `json:"slot_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SlotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slot_id is required"})
	}

	res, err := h.Coordinator.EditTime(c.Request().Context(), bookingID, body.SlotID, userID, sessionID(c, userID))
	if handled, resp := engineError(c, err); handled {
		return resp
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id":    res.Booking.ID,
		"slot_id":       res.Booking.SlotID,
		"no_op":         res.NoOp,
		"price_cents":   res.Booking.PriceCents,
		"price_changed": res.PriceChanged,
	})
}

// CancelBooking handles DELETE /v1/bookings/:id.  It cancels the booking,
// credits its capacity back to the slot and revokes any outstanding
// ticket.  Cancelling a terminal booking responds 409.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	if _, err := h.Coordinator.Cancel(c.Request().Context(), bookingID, userID); err != nil {
		_, resp := engineError(c, err)
		return resp
	}
	return c.NoContent(http.StatusNoContent)
}

// GetBooking handles GET /v1/bookings/:id.  It returns the booking detail
// for the authenticated user.  A booking owned by someone else is
// indistinguishable from a missing one and responds 404.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Bookings.GetDetailForUser(c.Request().Context(), bookingID, userID)
	if err != nil {
		if errors.Is(err, engine.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item": detail,
	})
}

// ListBookings handles GET /v1/my-bookings.  It returns every booking the
// current user has made, newest first.  An empty history yields an empty
// array rather than 404.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
	})
}
