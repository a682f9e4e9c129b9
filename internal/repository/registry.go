package repository

import (
    "fmt"
    "strings"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

// maxIDAttempts bounds how many ids are drawn from the configured generator
// before falling back to random UUIDs.
const maxIDAttempts = 16

// Reservation pairs a trip with one of its seats.  Seat is a copy taken at
// lookup time.
type Reservation struct {
    Trip *model.Trip
    Seat model.Seat
}

// Registry owns every trip, keyed by trip id, and remembers the order in
// which trips were created.  It is not safe for concurrent use; callers
// that share a Registry between goroutines must serialise access (see
// service.ReservationService).
type Registry struct {
    trips map[string]*model.Trip
    order []string

    clock utils.Clock
    ids   utils.IDGenerator
}

// RegistryOption customises a Registry.
type RegistryOption func(*Registry)

// WithClock sets the clock handed to every trip the registry creates.
func WithClock(c utils.Clock) RegistryOption {
    return func(r *Registry) {
        if c != nil {
            r.clock = c
        }
    }
}

// WithIDGenerator sets the reservation id source handed to every trip.
func WithIDGenerator(g utils.IDGenerator) RegistryOption {
    return func(r *Registry) {
        if g != nil {
            r.ids = g
        }
    }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
    r := &Registry{
        trips: make(map[string]*model.Trip),
        clock: utils.SystemClock{},
        ids:   utils.NewUUIDGenerator(),
    }
    for _, opt := range opts {
        opt(r)
    }
    return r
}

// uniqueIDs hands out reservation ids that no reserved seat in the registry
// currently holds, so a reservation id always identifies exactly one seat.
type uniqueIDs struct {
    r *Registry
}

func (u uniqueIDs) NewID() string {
    for i := 0; i < maxIDAttempts; i++ {
        if id := u.r.ids.NewID(); id != "" && !u.r.inUse(id) {
            return id
        }
    }
    fallback := utils.NewUUIDGenerator()
    for {
        if id := fallback.NewID(); !u.r.inUse(id) {
            return id
        }
    }
}

func (r *Registry) inUse(reservationID string) bool {
    _, ok := r.FindReservation(reservationID)
    return ok
}

// CreateTrip builds and stores a trip under id with surrounding whitespace
// removed.  It fails with ErrEmptyID for a blank id, ErrDuplicateID for an
// id already present, and an error wrapping ErrInvalidArgument for a
// non-positive capacity or price.  On failure the registry is unchanged.
func (r *Registry) CreateTrip(id, origin, destination string, departTime time.Time, capacity, ticketPrice int) (*model.Trip, error) {
    id = strings.TrimSpace(id)
    if id == "" {
        return nil, ErrEmptyID
    }
    if _, exists := r.trips[id]; exists {
        return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
    }
    t, err := model.NewTrip(id, origin, destination, departTime, capacity, ticketPrice,
        model.WithClock(r.clock),
        model.WithIDGenerator(uniqueIDs{r: r}),
    )
    if err != nil {
        return nil, err
    }
    r.trips[id] = t
    r.order = append(r.order, id)
    return t, nil
}

// GetTrip returns the trip with the given id.
func (r *Registry) GetTrip(id string) (*model.Trip, bool) {
    t, ok := r.trips[id]
    return t, ok
}

// ListTrips returns every trip in creation order.
func (r *Registry) ListTrips() []*model.Trip {
    out := make([]*model.Trip, 0, len(r.order))
    for _, id := range r.order {
        out = append(out, r.trips[id])
    }
    return out
}

// TripCount returns the number of registered trips.
func (r *Registry) TripCount() int { return len(r.order) }

// FindReservation locates the seat holding reservationID without changing
// it.  Trips are searched in creation order.
func (r *Registry) FindReservation(reservationID string) (Reservation, bool) {
    for _, t := range r.ListTrips() {
        if s, ok := t.FindSeatByReservationID(reservationID); ok {
            return Reservation{Trip: t, Seat: s}, true
        }
    }
    return Reservation{}, false
}

// CancelReservation cancels the first seat, in trip creation order, that
// holds reservationID.  The returned Seat is the copy taken just before
// cancellation, so it still carries the passenger details.
func (r *Registry) CancelReservation(reservationID string) (Reservation, bool) {
    for _, t := range r.ListTrips() {
        if s, ok := t.CancelReservation(reservationID); ok {
            return Reservation{Trip: t, Seat: s}, true
        }
    }
    return Reservation{}, false
}

// Reservations returns every reserved seat across all trips, ordered by
// trip creation and then by seat number.
func (r *Registry) Reservations() []Reservation {
    var out []Reservation
    for _, t := range r.ListTrips() {
        for _, s := range t.ReservedSeats() {
            out = append(out, Reservation{Trip: t, Seat: s})
        }
    }
    return out
}

// TotalRevenue sums reserved seats times ticket price over all trips.
func (r *Registry) TotalRevenue() int {
    total := 0
    for _, t := range r.trips {
        total += t.Revenue()
    }
    return total
}

// TotalReservedSeats sums the reserved seat counts of all trips.
func (r *Registry) TotalReservedSeats() int {
    total := 0
    for _, t := range r.trips {
        total += t.ReservedCount()
    }
    return total
}
