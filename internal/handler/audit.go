package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // formatting entry timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/arinvel/slot-reservation/internal/repository" // audit trail reads
)

// AuditHandler serves a booking's transition history to staff tooling.
type AuditHandler struct {
	Audit *repository.AuditRepo
}

// NewAuditHandler constructs an AuditHandler.
func NewAuditHandler(audit *repository.AuditRepo) *AuditHandler {
	if audit == nil {
		panic("nil audit repository passed to NewAuditHandler")
	}
	return &AuditHandler{Audit: audit}
}

type auditItem struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	OldSlotID     uint64 `json:"old_slot_id,omitempty"`
	NewSlotID     uint64 `json:"new_slot_id,omitempty"`
	OldPriceCents uint32 `json:"old_price_cents"`
	NewPriceCents uint32 `json:"new_price_cents"`
	ActorID       uint64 `json:"actor_id"`
	CreatedAt     string `json:"created_at"`
}

// History handles GET /v1/bookings/:id/audit.  It returns every recorded
// transition of a booking oldest first.  A booking with no entries yields
// an empty array, which staff read as "this id was never booked".
func (h *AuditHandler) History(c echo.Context) error {
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	entries, err := h.Audit.ListByBooking(c.Request().Context(), bookingID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit trail"})
	}
	items := make([]auditItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, auditItem{
			ID:            e.ID,
			Kind:          string(e.Kind),
			OldSlotID:     e.OldSlotID,
			NewSlotID:     e.NewSlotID,
			OldPriceCents: e.OldPriceCents,
			NewPriceCents: e.NewPriceCents,
			ActorID:       e.ActorID,
			CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"booking_id": bookingID,
		"items":      items,
	})
}
