package handler // handler defines http handlers

import (
    "errors"   // errors wraps parse failures
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities
    "time"     // time parses departure times

    "github.com/labstack/echo/v4" // echo defines request context types

    "github.com/iliyamo/bus-seat-reservation/internal/service" // service guards the registry
)

// departLayouts are the accepted depart_time formats, tried in order.
var departLayouts = []string{"2006-01-02 15:04", time.RFC3339}

// errBadDepartTime is returned when depart_time matches no accepted layout.
var errBadDepartTime = errors.New("depart_time must be YYYY-MM-DD HH:mm or RFC3339")

// BookingHandler exposes the reservation service over HTTP.  Trip, seat
// and report endpoints all hang off this one type.
type BookingHandler struct {
    Svc *service.ReservationService // Svc serialises every registry access
}

// NewBookingHandler constructs a BookingHandler and panics if svc is nil.
func NewBookingHandler(svc *service.ReservationService) *BookingHandler {
    if svc == nil {
        panic("nil service passed to NewBookingHandler")
    }
    return &BookingHandler{Svc: svc}
}

// parseDepartTime accepts the operator layout in the local zone or a full
// RFC3339 timestamp.
func parseDepartTime(raw string) (time.Time, error) {
    raw = strings.TrimSpace(raw)
    for _, layout := range departLayouts {
        if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
            return t, nil
        }
    }
    return time.Time{}, errBadDepartTime
}

// jsonError writes the {"error": msg} body used by every handler.
func jsonError(c echo.Context, status int, msg string) error {
    return c.JSON(status, map[string]string{"error": msg})
}

// badRequest is shorthand for a 400 response.
func badRequest(c echo.Context, msg string) error {
    return jsonError(c, http.StatusBadRequest, msg)
}
