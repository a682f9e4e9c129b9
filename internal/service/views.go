package service

import (
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// SeatView is a read-only copy of a seat suitable for JSON responses.
type SeatView struct {
    Number         int        `json:"number"`
    Reserved       bool       `json:"reserved"`
    PassengerName  string     `json:"passenger_name,omitempty"`
    PassengerPhone string     `json:"passenger_phone,omitempty"`
    ReservedAt     *time.Time `json:"reserved_at,omitempty"`
    ReservationID  string     `json:"reservation_id,omitempty"`
}

// TripView is a read-only copy of a trip with its derived figures.  Seats
// is only filled for detail responses.
type TripView struct {
    ID            string     `json:"trip_id"`
    Origin        string     `json:"origin"`
    Destination   string     `json:"destination"`
    DepartTime    time.Time  `json:"depart_time"`
    Capacity      int        `json:"capacity"`
    TicketPrice   int        `json:"ticket_price"`
    Reserved      int        `json:"reserved"`
    OccupancyRate float64    `json:"occupancy_rate"`
    Revenue       int        `json:"revenue"`
    Seats         []SeatView `json:"seats,omitempty"`
}

// OccupancyView lists which seats of a trip are free and which are taken.
type OccupancyView struct {
    TripView
    AvailableSeats []int `json:"available_seats"`
    ReservedSeats  []int `json:"reserved_seats"`
}

// Ticket describes one reservation together with the trip it belongs to.
type Ticket struct {
    TripID      string    `json:"trip_id"`
    Origin      string    `json:"origin"`
    Destination string    `json:"destination"`
    DepartTime  time.Time `json:"depart_time"`
    TicketPrice int       `json:"ticket_price"`
    Seat        SeatView  `json:"seat"`
}

func seatView(s model.Seat) SeatView {
    v := SeatView{Number: s.Number(), Reserved: s.IsReserved()}
    if s.IsReserved() {
        at := s.ReservationTime()
        v.PassengerName = s.PassengerName()
        v.PassengerPhone = s.PassengerPhone()
        v.ReservedAt = &at
        v.ReservationID = s.ReservationID()
    }
    return v
}

func tripView(t *model.Trip, withSeats bool) TripView {
    v := TripView{
        ID:            t.ID(),
        Origin:        t.Origin(),
        Destination:   t.Destination(),
        DepartTime:    t.DepartTime(),
        Capacity:      t.Capacity(),
        TicketPrice:   t.TicketPrice(),
        Reserved:      t.ReservedCount(),
        OccupancyRate: t.OccupancyRate(),
        Revenue:       t.Revenue(),
    }
    if withSeats {
        seats := t.AllSeats()
        v.Seats = make([]SeatView, 0, len(seats))
        for _, s := range seats {
            v.Seats = append(v.Seats, seatView(s))
        }
    }
    return v
}

func occupancyView(t *model.Trip) OccupancyView {
    return OccupancyView{
        TripView:       tripView(t, false),
        AvailableSeats: seatNumbers(t.AvailableSeats()),
        ReservedSeats:  seatNumbers(t.ReservedSeats()),
    }
}

func seatNumbers(seats []model.Seat) []int {
    out := make([]int, 0, len(seats))
    for _, s := range seats {
        out = append(out, s.Number())
    }
    return out
}

func ticketFrom(res repository.Reservation) Ticket {
    return Ticket{
        TripID:      res.Trip.ID(),
        Origin:      res.Trip.Origin(),
        Destination: res.Trip.Destination(),
        DepartTime:  res.Trip.DepartTime(),
        TicketPrice: res.Trip.TicketPrice(),
        Seat:        seatView(res.Seat),
    }
}
