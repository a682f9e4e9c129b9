package service

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/sirupsen/logrus/hooks/test"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-seat-reservation/internal/queue"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

type recordingPublisher struct {
    mu     sync.Mutex
    events []queue.ReservationEvent
    err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.events = append(p.events, ev)
    return p.err
}

func (p *recordingPublisher) recorded() []queue.ReservationEvent {
    p.mu.Lock()
    defer p.mu.Unlock()
    return append([]queue.ReservationEvent(nil), p.events...)
}

var depart = time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, pub queue.Publisher) *ReservationService {
    t.Helper()
    logger, _ := test.NewNullLogger()
    reg := repository.NewRegistry(repository.WithIDGenerator(&utils.SequenceGenerator{Prefix: "rsv-"}))
    svc := NewReservationService(reg, pub, logger)
    _, err := svc.CreateTrip(CreateTripInput{ID: "SFR1001", Origin: "Istanbul", Destination: "Ankara", DepartTime: depart, Capacity: 10, TicketPrice: 550})
    require.NoError(t, err)
    return svc
}

func TestCreateTripErrors(t *testing.T) {
    svc := newTestService(t, nil)
    _, err := svc.CreateTrip(CreateTripInput{ID: "SFR1001", Capacity: 10, TicketPrice: 100})
    assert.True(t, errors.Is(err, repository.ErrDuplicateID))
    _, err = svc.CreateTrip(CreateTripInput{ID: "", Capacity: 10, TicketPrice: 100})
    assert.True(t, errors.Is(err, repository.ErrEmptyID))
    _, err = svc.CreateTrip(CreateTripInput{ID: "X", Capacity: 10, TicketPrice: 0})
    assert.True(t, errors.Is(err, repository.ErrInvalidArgument))
    assert.Len(t, svc.ListTrips(), 1)
}

func TestReserveAndCancelPublishEvents(t *testing.T) {
    pub := &recordingPublisher{}
    svc := newTestService(t, pub)
    ctx := context.Background()

    ticket, err := svc.Reserve(ctx, "SFR1001", 3, "Ahmet Kaya", "05330003333")
    require.NoError(t, err)
    assert.Equal(t, "rsv-0001", ticket.Seat.ReservationID)
    assert.Equal(t, 550, ticket.TicketPrice)
    require.NotNil(t, ticket.Seat.ReservedAt)

    got, ok := svc.Reservation("rsv-0001")
    require.True(t, ok)
    assert.Equal(t, 3, got.Seat.Number)

    cancelled, ok := svc.Cancel(ctx, "rsv-0001")
    require.True(t, ok)
    assert.Equal(t, "Ahmet Kaya", cancelled.Seat.PassengerName)

    _, ok = svc.Reservation("rsv-0001")
    assert.False(t, ok)
    _, ok = svc.Cancel(ctx, "rsv-0001")
    assert.False(t, ok)

    events := pub.recorded()
    require.Len(t, events, 2)
    assert.Equal(t, queue.EventReservationCreated, events[0].Type)
    assert.Equal(t, queue.EventReservationCancelled, events[1].Type)
    assert.Equal(t, "rsv-0001", events[1].ReservationID)
    assert.Equal(t, 3, events[1].SeatNumber)
    assert.Equal(t, "2025-11-03T09:00:00Z", events[0].DepartTime)
}

func TestReserveFailures(t *testing.T) {
    pub := &recordingPublisher{}
    svc := newTestService(t, pub)
    ctx := context.Background()

    _, err := svc.Reserve(ctx, "NOPE", 1, "a", "b")
    assert.ErrorIs(t, err, ErrTripNotFound)
    _, err = svc.Reserve(ctx, "SFR1001", 0, "a", "b")
    assert.ErrorIs(t, err, ErrSeatUnavailable)
    _, err = svc.Reserve(ctx, "SFR1001", 11, "a", "b")
    assert.ErrorIs(t, err, ErrSeatUnavailable)

    _, err = svc.Reserve(ctx, "SFR1001", 1, "a", "b")
    require.NoError(t, err)
    _, err = svc.Reserve(ctx, "SFR1001", 1, "c", "d")
    assert.ErrorIs(t, err, ErrSeatUnavailable)

    assert.Len(t, pub.recorded(), 1)
}

func TestPublishFailureDoesNotFailReservation(t *testing.T) {
    logger, hook := test.NewNullLogger()
    pub := &recordingPublisher{err: errors.New("broker down")}
    svc := NewReservationService(repository.NewRegistry(), pub, logger)
    _, err := svc.CreateTrip(CreateTripInput{ID: "T1", DepartTime: depart, Capacity: 2, TicketPrice: 100})
    require.NoError(t, err)

    _, err = svc.Reserve(context.Background(), "T1", 1, "a", "b")
    require.NoError(t, err)

    var warned bool
    for _, e := range hook.AllEntries() {
        if e.Level == logrus.WarnLevel && e.Message == "event publish failed" {
            warned = true
        }
    }
    assert.True(t, warned)
}

func TestConcurrentReservationsOfSameSeat(t *testing.T) {
    svc := newTestService(t, nil)
    const workers = 50

    var wg sync.WaitGroup
    var mu sync.Mutex
    successes := 0
    for i := 0; i < workers; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            if _, err := svc.Reserve(context.Background(), "SFR1001", 7, "p", "0"); err == nil {
                mu.Lock()
                successes++
                mu.Unlock()
            }
        }()
    }
    wg.Wait()

    assert.Equal(t, 1, successes)
    assert.Equal(t, 1, svc.Summary().TotalReservedSeats)
}

func TestViews(t *testing.T) {
    svc := newTestService(t, nil)
    ctx := context.Background()
    _, _ = svc.Reserve(ctx, "SFR1001", 1, "Ali Yilmaz", "05330001111")
    _, _ = svc.Reserve(ctx, "SFR1001", 2, "Zeynep Demir", "05330002222")

    trips := svc.ListTrips()
    require.Len(t, trips, 1)
    assert.Nil(t, trips[0].Seats)
    assert.Equal(t, 2, trips[0].Reserved)
    assert.Equal(t, 20.0, trips[0].OccupancyRate)
    assert.Equal(t, 1100, trips[0].Revenue)

    detail, ok := svc.GetTrip("SFR1001")
    require.True(t, ok)
    require.Len(t, detail.Seats, 10)
    assert.True(t, detail.Seats[0].Reserved)
    assert.Equal(t, "Ali Yilmaz", detail.Seats[0].PassengerName)
    assert.False(t, detail.Seats[2].Reserved)
    assert.Empty(t, detail.Seats[2].ReservationID)
    assert.Nil(t, detail.Seats[2].ReservedAt)

    occ, ok := svc.Occupancy("SFR1001")
    require.True(t, ok)
    assert.Equal(t, []int{1, 2}, occ.ReservedSeats)
    assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9, 10}, occ.AvailableSeats)
    assert.Len(t, svc.AllOccupancy(), 1)

    _, ok = svc.GetTrip("missing")
    assert.False(t, ok)
    _, ok = svc.Occupancy("missing")
    assert.False(t, ok)

    assert.Len(t, svc.Reservations(), 2)
    rep := svc.Summary()
    assert.Equal(t, 1100, rep.TotalRevenue)
}
