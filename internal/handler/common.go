package handler // handler defines http handlers

import (
	"errors"   // errors provides Is comparisons against engine sentinels
	"net/http" // HTTP status codes
	"strconv"  // strconv formats the fallback session key
	"strings"  // strings provides trimming helpers

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/arinvel/slot-reservation/internal/engine"     // engine holds the booking error taxonomy
	"github.com/arinvel/slot-reservation/internal/middleware" // middleware stores the authenticated identity
)

// getUserID extracts the authenticated user id placed in the context by
// the JWT middleware.  Handlers return 401 when it is absent.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.CurrentUserID(c)
	if !ok || id == 0 {
		return 0, errors.New("user_id missing from context")
	}
	return id, nil
}

// sessionID resolves the hold session for the current request.  Clients
// that manage their own checkout session pass it in the X-Session-ID
// header; otherwise each authenticated user gets a stable per-user
// session so repeat holds replace one another instead of stacking.
func sessionID(c echo.Context, userID uint64) string {
	if s := strings.TrimSpace(c.Request().Header.Get("X-Session-ID")); s != "" {
		return s
	}
	return "user-" + strconv.FormatUint(userID, 10)
}

// engineError translates the engine error taxonomy into an HTTP response.
// Returns false when err is nil so callers can fall through to their
// success path.
func engineError(c echo.Context, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	var capErr *engine.CapacityError
	switch {
	case errors.As(err, &capErr):
		return true, c.JSON(http.StatusConflict, echo.Map{
			"error":     "capacity exceeded",
			"slot_id":   capErr.SlotID,
			"requested": capErr.Requested,
			"available": capErr.Available,
		})
	case errors.Is(err, engine.ErrCapacityExceeded):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "capacity exceeded"})
	case errors.Is(err, engine.ErrSlotNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "slot not found"})
	case errors.Is(err, engine.ErrBookingNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, engine.ErrTicketNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	case errors.Is(err, engine.ErrForbidden):
		return true, c.JSON(http.StatusForbidden, echo.Map{"error": "not your booking"})
	case errors.Is(err, engine.ErrExpiredHold):
		return true, c.JSON(http.StatusGone, echo.Map{"error": "hold expired"})
	case errors.Is(err, engine.ErrInvalidState):
		return true, c.JSON(http.StatusConflict, echo.Map{"error": "operation not allowed in current state"})
	case errors.Is(err, engine.ErrConcurrentModification):
		c.Response().Header().Set("Retry-After", "1")
		return true, c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "conflicting update in progress, retry"})
	}
	return true, c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
