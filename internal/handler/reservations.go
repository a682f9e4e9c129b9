package handler

import (
    "errors"   // errors.Is matches service sentinels
    "net/http" // http provides status code constants
    "strconv"  // strconv parses the seat number path parameter
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/service"
)

// ReserveSeat handles POST /v1/trips/:id/seats/:seat/reservation.  An
// unknown trip is 404, a non-numeric seat is 400 and a taken or
// out-of-range seat is 409.
func (h *BookingHandler) ReserveSeat(c echo.Context) error {
    seatNo, err := strconv.Atoi(c.Param("seat")) // parse the seat number from the URL
    if err != nil {
        return badRequest(c, "invalid seat number")
    }
    var body struct {
        PassengerName  string `json:"passenger_name"`
        PassengerPhone string `json:"passenger_phone"`
    }
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    ticket, err := h.Svc.Reserve(c.Request().Context(), c.Param("id"), seatNo,
        strings.TrimSpace(body.PassengerName), strings.TrimSpace(body.PassengerPhone))
    switch {
    case err == nil:
        return c.JSON(http.StatusCreated, ticket)
    case errors.Is(err, service.ErrTripNotFound):
        return jsonError(c, http.StatusNotFound, "trip not found")
    case errors.Is(err, service.ErrSeatUnavailable):
        return jsonError(c, http.StatusConflict, "seat taken or out of range")
    default:
        return jsonError(c, http.StatusInternalServerError, "could not reserve seat")
    }
}

// ListReservations handles GET /v1/reservations
func (h *BookingHandler) ListReservations(c echo.Context) error {
    return c.JSON(http.StatusOK, map[string]any{"items": h.Svc.Reservations()})
}

// GetReservation handles GET /v1/reservations/:rid and returns the ticket
func (h *BookingHandler) GetReservation(c echo.Context) error {
    ticket, ok := h.Svc.Reservation(c.Param("rid"))
    if !ok {
        return jsonError(c, http.StatusNotFound, "reservation not found")
    }
    return c.JSON(http.StatusOK, ticket)
}

// CancelReservation handles DELETE /v1/reservations/:rid.  The response
// carries the seat as it was before cancellation.
func (h *BookingHandler) CancelReservation(c echo.Context) error {
    ticket, ok := h.Svc.Cancel(c.Request().Context(), c.Param("rid"))
    if !ok {
        return jsonError(c, http.StatusNotFound, "reservation not found")
    }
    return c.JSON(http.StatusOK, map[string]any{"cancelled": ticket})
}
