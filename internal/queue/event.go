// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// QueueName is the durable queue carrying reservation events.
const QueueName = "reservation.events"

// Event types carried in ReservationEvent.Type.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published whenever a seat is reserved or a
// reservation is cancelled.  It carries enough information for downstream
// consumers to log or notify without querying the service.
type ReservationEvent struct {
    Type           string `json:"type"`
    ReservationID  string `json:"reservation_id"`
    TripID         string `json:"trip_id"`
    Origin         string `json:"origin"`
    Destination    string `json:"destination"`
    DepartTime     string `json:"depart_time"`
    SeatNumber     int    `json:"seat_number"`
    PassengerName  string `json:"passenger_name"`
    PassengerPhone string `json:"passenger_phone"`
    TicketPrice    int    `json:"ticket_price"`
    OccurredAt     string `json:"occurred_at"`
}
