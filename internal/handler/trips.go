package handler

import (
    "errors"   // errors.Is matches registry sentinels
    "net/http" // http provides status code constants
    "strings"  // strings offers trimming utilities

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/service"
)

// CreateTrip handles POST /v1/trips and registers a new trip
func (h *BookingHandler) CreateTrip(c echo.Context) error {
    var body struct { // anonymous struct to bind incoming JSON
        TripID      string `json:"trip_id"`
        Origin      string `json:"origin"`
        Destination string `json:"destination"`
        DepartTime  string `json:"depart_time"`
        Capacity    int    `json:"capacity"`
        TicketPrice int    `json:"ticket_price"`
    }
    if err := c.Bind(&body); err != nil { // bind the request body into the struct
        return badRequest(c, "invalid request body")
    }
    departs, err := parseDepartTime(body.DepartTime)
    if err != nil {
        return badRequest(c, err.Error())
    }
    trip, err := h.Svc.CreateTrip(service.CreateTripInput{
        ID:          strings.TrimSpace(body.TripID),
        Origin:      strings.TrimSpace(body.Origin),
        Destination: strings.TrimSpace(body.Destination),
        DepartTime:  departs,
        Capacity:    body.Capacity,
        TicketPrice: body.TicketPrice,
    })
    switch {
    case err == nil:
        return c.JSON(http.StatusCreated, trip) // 201 and the created trip
    case errors.Is(err, model.ErrDuplicateID):
        return jsonError(c, http.StatusConflict, "trip id already exists")
    case errors.Is(err, model.ErrEmptyID):
        return badRequest(c, "trip_id is required")
    case errors.Is(err, model.ErrInvalidArgument):
        return badRequest(c, err.Error())
    default:
        return jsonError(c, http.StatusInternalServerError, "could not create trip")
    }
}

// ListTrips handles GET /v1/trips
func (h *BookingHandler) ListTrips(c echo.Context) error {
    return c.JSON(http.StatusOK, map[string]any{"items": h.Svc.ListTrips()})
}

// GetTrip handles GET /v1/trips/:id and returns the trip with its seat map
func (h *BookingHandler) GetTrip(c echo.Context) error {
    trip, ok := h.Svc.GetTrip(c.Param("id"))
    if !ok {
        return jsonError(c, http.StatusNotFound, "trip not found")
    }
    return c.JSON(http.StatusOK, trip)
}

// TripOccupancy handles GET /v1/trips/:id/occupancy
func (h *BookingHandler) TripOccupancy(c echo.Context) error {
    occ, ok := h.Svc.Occupancy(c.Param("id"))
    if !ok {
        return jsonError(c, http.StatusNotFound, "trip not found")
    }
    return c.JSON(http.StatusOK, occ)
}

// AllOccupancy handles GET /v1/occupancy
func (h *BookingHandler) AllOccupancy(c echo.Context) error {
    return c.JSON(http.StatusOK, map[string]any{"items": h.Svc.AllOccupancy()})
}

// Summary handles GET /v1/reports/summary
func (h *BookingHandler) Summary(c echo.Context) error {
    return c.JSON(http.StatusOK, h.Svc.Summary())
}
