package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // parsing the date query parameter

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/repository" // slot availability read model
)

// AvailabilityHandler serves the public slot-availability listing.  The
// route sits behind the Redis response cache, so the quantities it
// reports may lag writes by the cache TTL.
type AvailabilityHandler struct {
	Slots *repository.SlotRepo
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(slots *repository.SlotRepo) *AvailabilityHandler {
	if slots == nil {
		panic("nil slot repository passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Slots: slots}
}

// ListSlots handles GET /v1/services/:id/slots?date=YYYY-MM-DD.  It
// returns each slot of the service on that date with its effective
// availability, net of unexpired holds.  A missing date defaults to
// today in UTC.
func (h *AvailabilityHandler) ListSlots(c echo.Context) error {
	serviceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || serviceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	date := time.Now().UTC()
	if raw := c.QueryParam("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
	}
	items, err := h.Slots.ListByService(c.Request().Context(), serviceID, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load slots"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"service_id": serviceID,
		"date":       date.Format("2006-01-02"),
		"items":      items,
	})
}
