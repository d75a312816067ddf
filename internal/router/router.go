package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/arinvel/slot-reservation/internal/handler"    // import the handlers that implement business logic
	"github.com/arinvel/slot-reservation/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/arinvel/slot-reservation/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and applies the necessary
// middleware.  Unauthenticated operations live under /v1/auth, while the
// protected profile endpoint lives under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Route group under /v1/auth for operations that do not require an
	// existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	// Profile endpoint requires a valid access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers unauthenticated browse endpoints.  The optional
// cache middleware wraps the slot listing so repeated availability polls are
// served from Redis instead of the database.
func RegisterPublic(e *echo.Echo, av *handler.AvailabilityHandler, cache echo.MiddlewareFunc) {
	// Effective per-slot availability for a service on a given date.
	if cache != nil {
		e.GET("/v1/services/:id/slots", av.ListSlots, cache)
	} else {
		e.GET("/v1/services/:id/slots", av.ListSlots)
	}
}

// RegisterCustomer registers the hold and booking endpoints.  All routes
// require a valid access token; both customers and staff may call them,
// staff acting on a customer's behalf at the desk.
func RegisterCustomer(e *echo.Echo, h *handler.HoldHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleStaff))

	// Soft holds made while a checkout is in flight.
	g.POST("/slots/:id/holds", h.CreateHold)
	g.DELETE("/slots/:id/holds", h.ReleaseHolds)

	// Booking lifecycle.
	g.POST("/bookings", b.CreateBooking)
	g.PATCH("/bookings/:id/slot", b.EditBookingSlot)
	g.DELETE("/bookings/:id", b.CancelBooking)
	g.GET("/bookings/:id", b.GetBooking)
	g.GET("/my-bookings", b.ListBookings)
}

// RegisterStaff registers the gate-side endpoints.  Only STAFF tokens pass
// the role check.
func RegisterStaff(e *echo.Echo, s *handler.ScanHandler, a *handler.AuditHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff))

	g.POST("/tickets/scan", s.Scan)
	g.POST("/bookings/:id/ticket/invalidate", s.Invalidate)
	g.GET("/bookings/:id/audit", a.History)
}
