package model

import "time"

// shortIDLen is the number of reservation id characters shown to users.
const shortIDLen = 8

// Seat describes one reservable seat on a trip.  A seat is either empty or
// reserved; the passenger name, phone, reservation time and reservation id
// are set together when the seat is reserved and cleared together when the
// reservation is cancelled.
//
// Fields:
//  number          – seat number, 1..capacity of the owning trip.
//  reserved        – whether the seat is currently taken.
//  passengerName   – name of the passenger (empty when not reserved).
//  passengerPhone  – phone of the passenger (empty when not reserved).
//  reservedAt      – when the reservation was made (zero when not reserved).
//  reservationID   – opaque token used to cancel (empty when not reserved).
type Seat struct {
    number         int
    reserved       bool
    passengerName  string
    passengerPhone string
    reservedAt     time.Time
    reservationID  string
}

func newSeat(number int) *Seat { return &Seat{number: number} }

func (s *Seat) Number() int                { return s.number }
func (s *Seat) IsReserved() bool           { return s.reserved }
func (s *Seat) PassengerName() string      { return s.passengerName }
func (s *Seat) PassengerPhone() string     { return s.passengerPhone }
func (s *Seat) ReservationTime() time.Time { return s.reservedAt }
func (s *Seat) ReservationID() string      { return s.reservationID }

// ShortReservationID returns the first eight characters of the reservation
// id, or the whole id when it is shorter.  Empty seats return "".
func (s *Seat) ShortReservationID() string {
    if len(s.reservationID) <= shortIDLen {
        return s.reservationID
    }
    return s.reservationID[:shortIDLen]
}

// Reserve takes the seat for a passenger.  Reserving a seat that is already
// reserved is silently ignored and keeps the existing reservation.
func (s *Seat) Reserve(passengerName, passengerPhone string, at time.Time, reservationID string) {
    if s.reserved {
        return
    }
    s.reserved = true
    s.passengerName = passengerName
    s.passengerPhone = passengerPhone
    s.reservedAt = at
    s.reservationID = reservationID
}

// Cancel empties the seat.  It is safe to call on an empty seat.
func (s *Seat) Cancel() {
    s.reserved = false
    s.passengerName = ""
    s.passengerPhone = ""
    s.reservedAt = time.Time{}
    s.reservationID = ""
}
