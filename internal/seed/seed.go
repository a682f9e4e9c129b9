// Package seed loads the sample trips and passengers used for demos.
package seed

import (
    "fmt"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// Capacity is the seat count of every sample trip.
const Capacity = 10

type sampleTrip struct {
    id, origin, destination string
    daysAhead, hour, minute int
    price                   int
}

var trips = []sampleTrip{
    {"SFR1001", "İstanbul", "Ankara", 2, 9, 0, 550},
    {"SFR1002", "İzmir", "Bursa", 1, 14, 0, 450},
    {"SFR1003", "Antalya", "Konya", 3, 10, 30, 380},
    {"SFR1004", "Kırklareli", "İstanbul", 1, 8, 15, 290},
    {"SFR1005", "Trabzon", "Samsun", 2, 7, 45, 420},
}

type passenger struct{ name, phone string }

var passengers = []passenger{
    {"Ali Yılmaz", "05330001111"},
    {"Zeynep Demir", "05330002222"},
    {"Ahmet Kaya", "05330003333"},
    {"Ece Yalçın", "05330004444"},
    {"Mehmet Aksoy", "05330005555"},
    {"Furkan Çelik", "05330006666"},
    {"Selin Öztürk", "05330007777"},
    {"Caner Yücel", "05330008888"},
    {"Deniz Şahin", "05330009999"},
    {"Gizem Kılıç", "05330000000"},
}

type sampleBooking struct {
    trip string
    seat int
}

// bookings assigns passengers[i] to a trip and seat.
var bookings = []sampleBooking{
    {"SFR1001", 1}, {"SFR1001", 2}, {"SFR1001", 3},
    {"SFR1002", 5}, {"SFR1002", 6},
    {"SFR1003", 1}, {"SFR1003", 2},
    {"SFR1004", 3}, {"SFR1004", 4},
    {"SFR1005", 10},
}

// Booking is one reservation made by Load.
type Booking struct {
    Trip *model.Trip
    Seat model.Seat
}

// Load creates the five sample trips relative to now and reserves one seat
// for each of the ten sample passengers.  It fails if a sample trip id is
// already registered.
func Load(reg *repository.Registry, now time.Time) ([]Booking, error) {
    for _, st := range trips {
        day := now.AddDate(0, 0, st.daysAhead)
        departs := time.Date(day.Year(), day.Month(), day.Day(), st.hour, st.minute, 0, 0, now.Location())
        if _, err := reg.CreateTrip(st.id, st.origin, st.destination, departs, Capacity, st.price); err != nil {
            return nil, fmt.Errorf("seed trip %s: %w", st.id, err)
        }
    }

    return book(reg, bookings)
}

// book reserves table[i] for passengers[i].  Any booking that cannot be
// made is an error, so Load either books every sample passenger or fails.
func book(reg *repository.Registry, table []sampleBooking) ([]Booking, error) {
    if len(table) > len(passengers) {
        return nil, fmt.Errorf("seed: %d bookings for %d passengers", len(table), len(passengers))
    }
    out := make([]Booking, 0, len(table))
    for i, b := range table {
        t, ok := reg.GetTrip(b.trip)
        if !ok {
            return nil, fmt.Errorf("seed booking %d: trip %s not found", i, b.trip)
        }
        p := passengers[i]
        s, ok := t.ReserveSeatDirect(b.seat, p.name, p.phone)
        if !ok {
            return nil, fmt.Errorf("seed booking %d: seat %d on %s unavailable", i, b.seat, b.trip)
        }
        out = append(out, Booking{Trip: t, Seat: s})
    }
    return out, nil
}
