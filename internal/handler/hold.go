package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // formatting expiry timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/engine" // hold manager
)

// HoldHandler exposes the soft-hold endpoints customers use during
// checkout.  JWT authentication has already run; methods return 401 only
// when the user id cannot be extracted from the context.
type HoldHandler struct {
	Holds *engine.HoldManager
}

// NewHoldHandler constructs a HoldHandler.  The manager must be non-nil.
func NewHoldHandler(holds *engine.HoldManager) *HoldHandler {
	if holds == nil {
		panic("nil hold manager passed to NewHoldHandler")
	}
	return &HoldHandler{Holds: holds}
}

// CreateHold handles POST /v1/slots/:id/holds.  The body carries a JSON
// object with a positive "quantity".  A new hold replaces any earlier
// hold the same session had on the slot.  Responds 201 with the hold id,
// token and expiry; 409 with requested/available counts when the slot
// cannot cover the quantity.
func (h *HoldHandler) CreateHold(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}
	var body struct {
		Quantity uint32 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Quantity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	hold, err := h.Holds.CreateHold(c.Request().Context(), slotID, body.Quantity, sessionID(c, userID))
	if handled, resp := engineError(c, err); handled {
		return resp
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hold_id":    hold.ID,
		"hold_token": hold.HoldToken,
		"quantity":   hold.Quantity,
		"expires_at": hold.ExpiresAt.Format(time.RFC3339),
	})
}

// ReleaseHolds handles DELETE /v1/slots/:id/holds.  It drops every hold
// the current session has on the slot and reports how many were removed.
// Releasing when nothing is held succeeds with released=0.
func (h *HoldHandler) ReleaseHolds(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	slotID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid slot id"})
	}

	released, err := h.Holds.ReleaseHolds(c.Request().Context(), sessionID(c, userID), slotID)
	if handled, resp := engineError(c, err); handled {
		return resp
	}
	return c.JSON(http.StatusOK, echo.Map{
		"released": released,
	})
}
