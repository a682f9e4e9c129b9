package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/bus-seat-reservation/internal/handler" // import the handlers that implement the API
)

// RegisterRoutes registers routes that sit outside the versioned API on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterTrips registers trip, occupancy and report endpoints under /v1.
func RegisterTrips(e *echo.Echo, h *handler.BookingHandler) {
	g := e.Group("/v1")
	g.POST("/trips", h.CreateTrip)
	g.GET("/trips", h.ListTrips)
	g.GET("/trips/:id", h.GetTrip)
	g.GET("/trips/:id/occupancy", h.TripOccupancy)
	g.GET("/occupancy", h.AllOccupancy)
	g.GET("/reports/summary", h.Summary)
}

// RegisterReservations registers seat reservation endpoints under /v1.
// Reservations are addressed by the id handed out when the seat was booked.
func RegisterReservations(e *echo.Echo, h *handler.BookingHandler) {
	g := e.Group("/v1")
	g.POST("/trips/:id/seats/:seat/reservation", h.ReserveSeat)
	g.GET("/reservations", h.ListReservations)
	g.GET("/reservations/:rid", h.GetReservation)
	g.DELETE("/reservations/:rid", h.CancelReservation)
}

// Register wires every route of the API onto e.
func Register(e *echo.Echo, h *handler.BookingHandler) {
	RegisterRoutes(e)
	RegisterTrips(e, h)
	RegisterReservations(e, h)
}
