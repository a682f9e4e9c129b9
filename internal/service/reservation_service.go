// Package service guards the reservation registry for concurrent callers
// and announces reservation changes on the message broker.
package service

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/bus-seat-reservation/internal/queue"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

var (
    // ErrTripNotFound is returned when a reservation targets an unknown trip.
    ErrTripNotFound = errors.New("trip not found")
    // ErrSeatUnavailable is returned when the seat number is outside the
    // trip or the seat is already reserved.
    ErrSeatUnavailable = errors.New("seat unavailable")
)

// eventTimeout bounds how long a single event publish may take.
const eventTimeout = 3 * time.Second

// CreateTripInput carries the fields needed to create a trip.
type CreateTripInput struct {
    ID          string
    Origin      string
    Destination string
    DepartTime  time.Time
    Capacity    int
    TicketPrice int
}

// ReservationService serialises access to a repository.Registry.  Reads
// share an RWMutex read lock; trip creation, reservation and cancellation
// take the write lock so a seat is never handed to two passengers.  Only
// value views leave the service.
type ReservationService struct {
    mu       sync.RWMutex
    registry *repository.Registry

    events queue.Publisher
    clock  utils.Clock
    log    *logrus.Entry
}

// NewReservationService wraps registry.  A nil publisher disables events.
func NewReservationService(registry *repository.Registry, events queue.Publisher, log *logrus.Logger) *ReservationService {
    if registry == nil {
        panic("nil registry passed to NewReservationService")
    }
    if events == nil {
        events = queue.NopPublisher{}
    }
    if log == nil {
        log = logrus.StandardLogger()
    }
    return &ReservationService{
        registry: registry,
        events:   events,
        clock:    utils.SystemClock{},
        log:      log.WithField("component", "reservation-service"),
    }
}

// CreateTrip registers a new trip.  Errors are those of
// repository.Registry.CreateTrip.
func (s *ReservationService) CreateTrip(in CreateTripInput) (TripView, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    t, err := s.registry.CreateTrip(in.ID, in.Origin, in.Destination, in.DepartTime, in.Capacity, in.TicketPrice)
    if err != nil {
        return TripView{}, err
    }
    s.log.WithFields(logrus.Fields{"trip_id": t.ID(), "capacity": t.Capacity(), "ticket_price": t.TicketPrice()}).Info("trip created")
    return tripView(t, false), nil
}

// ListTrips returns every trip in creation order, without seat details.
func (s *ReservationService) ListTrips() []TripView {
    s.mu.RLock()
    defer s.mu.RUnlock()
    trips := s.registry.ListTrips()
    out := make([]TripView, 0, len(trips))
    for _, t := range trips {
        out = append(out, tripView(t, false))
    }
    return out
}

// GetTrip returns a trip including its seat map.
func (s *ReservationService) GetTrip(id string) (TripView, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    t, ok := s.registry.GetTrip(id)
    if !ok {
        return TripView{}, false
    }
    return tripView(t, true), true
}

// Occupancy returns the free and reserved seat numbers of one trip.
func (s *ReservationService) Occupancy(id string) (OccupancyView, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    t, ok := s.registry.GetTrip(id)
    if !ok {
        return OccupancyView{}, false
    }
    return occupancyView(t), true
}

// AllOccupancy returns the occupancy of every trip in creation order.
func (s *ReservationService) AllOccupancy() []OccupancyView {
    s.mu.RLock()
    defer s.mu.RUnlock()
    trips := s.registry.ListTrips()
    out := make([]OccupancyView, 0, len(trips))
    for _, t := range trips {
        out = append(out, occupancyView(t))
    }
    return out
}

// Reserve books a seat and returns its ticket.  It fails with
// ErrTripNotFound or ErrSeatUnavailable and leaves state unchanged.
func (s *ReservationService) Reserve(ctx context.Context, tripID string, seatNumber int, passengerName, passengerPhone string) (Ticket, error) {
    s.mu.Lock()
    t, ok := s.registry.GetTrip(tripID)
    if !ok {
        s.mu.Unlock()
        return Ticket{}, ErrTripNotFound
    }
    seat, ok := t.ReserveSeatDirect(seatNumber, passengerName, passengerPhone)
    if !ok {
        s.mu.Unlock()
        return Ticket{}, ErrSeatUnavailable
    }
    ticket := ticketFrom(repository.Reservation{Trip: t, Seat: seat})
    s.mu.Unlock()

    s.log.WithFields(logrus.Fields{"trip_id": tripID, "seat": seatNumber, "reservation_id": seat.ReservationID()}).Info("seat reserved")
    s.publish(ctx, queue.EventReservationCreated, ticket)
    return ticket, nil
}

// Cancel cancels the reservation with the given id and returns the ticket
// as it was before cancellation.
func (s *ReservationService) Cancel(ctx context.Context, reservationID string) (Ticket, bool) {
    s.mu.Lock()
    res, ok := s.registry.CancelReservation(reservationID)
    var ticket Ticket
    if ok {
        ticket = ticketFrom(res)
    }
    s.mu.Unlock()
    if !ok {
        return Ticket{}, false
    }

    s.log.WithFields(logrus.Fields{"trip_id": ticket.TripID, "seat": ticket.Seat.Number, "reservation_id": reservationID}).Info("reservation cancelled")
    s.publish(ctx, queue.EventReservationCancelled, ticket)
    return ticket, true
}

// Reservation returns the ticket for an active reservation.
func (s *ReservationService) Reservation(reservationID string) (Ticket, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()
    res, ok := s.registry.FindReservation(reservationID)
    if !ok {
        return Ticket{}, false
    }
    return ticketFrom(res), true
}

// Reservations lists every active reservation.
func (s *ReservationService) Reservations() []Ticket {
    s.mu.RLock()
    defer s.mu.RUnlock()
    all := s.registry.Reservations()
    out := make([]Ticket, 0, len(all))
    for _, res := range all {
        out = append(out, ticketFrom(res))
    }
    return out
}

// Summary returns the revenue report.
func (s *ReservationService) Summary() repository.Report {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return s.registry.Summary()
}

// publish sends an event in the request's context.  Failures are logged and
// never surface to the caller.
func (s *ReservationService) publish(ctx context.Context, typ string, t Ticket) {
    ev := queue.ReservationEvent{
        Type:           typ,
        ReservationID:  t.Seat.ReservationID,
        TripID:         t.TripID,
        Origin:         t.Origin,
        Destination:    t.Destination,
        DepartTime:     t.DepartTime.Format(time.RFC3339),
        SeatNumber:     t.Seat.Number,
        PassengerName:  t.Seat.PassengerName,
        PassengerPhone: t.Seat.PassengerPhone,
        TicketPrice:    t.TicketPrice,
        OccurredAt:     s.clock.Now().UTC().Format(time.RFC3339),
    }
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
    defer cancel()
    if err := s.events.Publish(ctx, ev); err != nil {
        s.log.WithError(err).WithField("type", typ).Warn("event publish failed")
    }
}
