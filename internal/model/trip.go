package model

import (
    "fmt"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// Trip represents a scheduled bus journey with a fixed number of seats and
// a single ticket price.  Seats are created empty when the trip is built
// and are numbered contiguously from 1 to Capacity.  A trip is never
// resized.
//
// Fields:
//  id          – trip identifier assigned by the operator (e.g. SFR1001).
//  origin      – departure city.
//  destination – arrival city.
//  departTime  – scheduled departure.
//  capacity    – total number of seats, always positive.
//  ticketPrice – price of one seat in whole currency units, always positive.
//  seats       – seats[i] holds seat number i+1.
type Trip struct {
    id          string
    origin      string
    destination string
    departTime  time.Time
    capacity    int
    ticketPrice int
    seats       []*Seat

    clock utils.Clock
    ids   utils.IDGenerator
}

// TripOption customises how a trip stamps and identifies reservations.
type TripOption func(*Trip)

// WithClock sets the time source used when a seat is reserved.
func WithClock(c utils.Clock) TripOption {
    return func(t *Trip) {
        if c != nil {
            t.clock = c
        }
    }
}

// WithIDGenerator sets the source of reservation ids.
func WithIDGenerator(g utils.IDGenerator) TripOption {
    return func(t *Trip) {
        if g != nil {
            t.ids = g
        }
    }
}

// NewTrip builds a trip and allocates its seats.  It returns an error
// wrapping ErrInvalidArgument when capacity or ticketPrice is not positive.
func NewTrip(id, origin, destination string, departTime time.Time, capacity, ticketPrice int, opts ...TripOption) (*Trip, error) {
    if capacity <= 0 {
        return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidArgument, capacity)
    }
    if ticketPrice <= 0 {
        return nil, fmt.Errorf("%w: ticket price must be positive, got %d", ErrInvalidArgument, ticketPrice)
    }
    t := &Trip{
        id:          id,
        origin:      origin,
        destination: destination,
        departTime:  departTime,
        capacity:    capacity,
        ticketPrice: ticketPrice,
        seats:       make([]*Seat, capacity),
        clock:       utils.SystemClock{},
        ids:         utils.NewUUIDGenerator(),
    }
    for _, opt := range opts {
        opt(t)
    }
    for i := range t.seats {
        t.seats[i] = newSeat(i + 1)
    }
    return t, nil
}

func (t *Trip) ID() string            { return t.id }
func (t *Trip) Origin() string        { return t.origin }
func (t *Trip) Destination() string   { return t.destination }
func (t *Trip) DepartTime() time.Time { return t.departTime }
func (t *Trip) Capacity() int         { return t.capacity }
func (t *Trip) TicketPrice() int      { return t.ticketPrice }

// seat returns the live seat for a number, or nil when out of range.
func (t *Trip) seat(number int) *Seat {
    if number < 1 || number > t.capacity {
        return nil
    }
    return t.seats[number-1]
}

// Seat returns a copy of the seat with the given number.  The boolean is
// false when number is outside 1..Capacity.
func (t *Trip) Seat(number int) (Seat, bool) {
    s := t.seat(number)
    if s == nil {
        return Seat{}, false
    }
    return *s, true
}

// AllSeats returns copies of every seat in seat-number order.
func (t *Trip) AllSeats() []Seat {
    return t.filter(func(*Seat) bool { return true })
}

// ReservedSeats returns copies of the reserved seats in seat-number order.
func (t *Trip) ReservedSeats() []Seat {
    return t.filter(func(s *Seat) bool { return s.reserved })
}

// AvailableSeats returns copies of the empty seats in seat-number order.
func (t *Trip) AvailableSeats() []Seat {
    return t.filter(func(s *Seat) bool { return !s.reserved })
}

func (t *Trip) filter(keep func(*Seat) bool) []Seat {
    out := make([]Seat, 0, len(t.seats))
    for _, s := range t.seats {
        if keep(s) {
            out = append(out, *s)
        }
    }
    return out
}

// ReservedCount returns the number of reserved seats.
func (t *Trip) ReservedCount() int {
    n := 0
    for _, s := range t.seats {
        if s.reserved {
            n++
        }
    }
    return n
}

// OccupancyRate returns the reserved share of the trip as a percentage in
// the range [0, 100].
func (t *Trip) OccupancyRate() float64 {
    return float64(t.ReservedCount()) / float64(t.capacity) * 100
}

// Revenue returns the reserved seat count times the ticket price.
func (t *Trip) Revenue() int {
    return t.ReservedCount() * t.ticketPrice
}

func (t *Trip) findByReservationID(reservationID string) *Seat {
    if reservationID == "" {
        return nil
    }
    for _, s := range t.seats {
        if s.reserved && s.reservationID == reservationID {
            return s
        }
    }
    return nil
}

// FindSeatByReservationID returns a copy of the reserved seat holding the
// given reservation id.  An empty id never matches.
func (t *Trip) FindSeatByReservationID(reservationID string) (Seat, bool) {
    s := t.findByReservationID(reservationID)
    if s == nil {
        return Seat{}, false
    }
    return *s, true
}

// ReserveSeatDirect reserves a seat for a passenger and returns a copy of
// the reserved seat.  The boolean is false when the seat number is out of
// range or the seat is already reserved; in both cases nothing changes.
func (t *Trip) ReserveSeatDirect(number int, passengerName, passengerPhone string) (Seat, bool) {
    s := t.seat(number)
    if s == nil || s.reserved {
        return Seat{}, false
    }
    s.Reserve(passengerName, passengerPhone, t.clock.Now(), t.ids.NewID())
    return *s, true
}

// CancelReservation empties the seat holding reservationID and returns the
// seat as it was before cancellation.  The boolean is false when no seat on
// this trip holds the id.
func (t *Trip) CancelReservation(reservationID string) (Seat, bool) {
    s := t.findByReservationID(reservationID)
    if s == nil {
        return Seat{}, false
    }
    before := *s
    s.Cancel()
    return before, true
}
