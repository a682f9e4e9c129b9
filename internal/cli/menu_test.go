package cli

import (
    "bytes"
    "strings"
    "testing"
    "time"

    "github.com/sirupsen/logrus/hooks/test"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-seat-reservation/internal/repository"
    "github.com/iliyamo/bus-seat-reservation/internal/utils"
)

func runSession(t *testing.T, reg *repository.Registry, lines ...string) string {
    t.Helper()
    logger, _ := test.NewNullLogger()
    var out bytes.Buffer
    m := NewMenu(reg, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out, logger)
    require.NoError(t, m.Run())
    return out.String()
}

func newRegistry() *repository.Registry {
    return repository.NewRegistry(repository.WithIDGenerator(&utils.SequenceGenerator{Prefix: "rsv-"}))
}

func TestCreateReserveCancelSession(t *testing.T) {
    reg := newRegistry()
    out := runSession(t, reg,
        "1", "SFR2001", "Ankara", "Izmir", "2025-12-01 10:00", "300",
        "4", "SFR2001", "3", "Ali Yilmaz", "05330001111",
        "4", "SFR2001", "3", "Ahmet Kaya", "05330003333",
        "5", "rsv-0001",
        "5", "rsv-0001",
        "0",
    )

    assert.Contains(t, out, "Trip created: SFR2001")
    assert.Contains(t, out, "Reservation complete! ReservationID: rsv-0001")
    assert.Contains(t, out, "Reservation failed (seat taken or invalid number).")
    assert.Contains(t, out, "Cancelled: Trip SFR2001 | Seat 3 | Passenger Ali Yilmaz")
    assert.Contains(t, out, "Reservation ID not found.")
    assert.Contains(t, out, "Goodbye!")

    trip, ok := reg.GetTrip("SFR2001")
    require.True(t, ok)
    assert.Equal(t, TripCapacity, trip.Capacity())
    assert.Equal(t, 300, trip.TicketPrice())
    assert.Zero(t, trip.ReservedCount())
}

func TestCreateTripValidation(t *testing.T) {
    reg := newRegistry()
    _, err := reg.CreateTrip("SFR1", "A", "B", time.Now(), 10, 100)
    require.NoError(t, err)

    out := runSession(t, reg,
        "1", "",
        "1", "SFR1",
        "1", "SFR2", "A", "B", "tomorrow",
        "1", "SFR3", "A", "B", "2025-12-01 10:00", "abc",
        "1", "SFR4", "A", "B", "2025-12-01 10:00", "0",
        "0",
    )
    assert.Equal(t, 2, strings.Count(out, "Invalid or existing ID."))
    assert.Contains(t, out, "Bad date format.")
    assert.Contains(t, out, "Bad ticket price.")
    assert.Contains(t, out, "Ticket price must be positive.")
    assert.Equal(t, 1, reg.TripCount())
}

func TestQueriesSession(t *testing.T) {
    reg := newRegistry()
    trip, _ := reg.CreateTrip("SFR1", "Istanbul", "Ankara", time.Date(2025, 11, 1, 9, 0, 0, 0, time.Local), 10, 550)
    trip.ReserveSeatDirect(1, "Ali Yilmaz", "05330001111")

    out := runSession(t, reg,
        "2",
        "3", "SFR1",
        "3", "NOPE",
        "4", "SFR1", "x",
        "6", "SFR1",
        "6", "",
        "7",
        "8",
        "9",
    )
    assert.Contains(t, out, "SFR1 | Istanbul -> Ankara | Departs: 01/11/2025 09:00")
    assert.Contains(t, out, "01 : TAKEN [rsv-0001] - Ali Yilmaz")
    assert.Contains(t, out, "Trip not found.")
    assert.Contains(t, out, "Invalid seat number.")
    assert.Contains(t, out, "Free seats: 2, 3, 4, 5, 6, 7, 8, 9, 10")
    assert.Contains(t, out, "Taken seats: 1")
    assert.Contains(t, out, "ReservationID: rsv-0001 | Passenger: Ali Yilmaz")
    assert.Contains(t, out, "Total revenue: 550 TL")
    assert.Contains(t, out, "Invalid choice. Try again.")
}

func TestEmptyRegistryMessages(t *testing.T) {
    out := runSession(t, newRegistry(), "2", "7")
    assert.Contains(t, out, "No trips yet.")
    assert.Contains(t, out, "No reservations.")
}
