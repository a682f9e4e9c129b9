// Package console renders trips, seats, tickets and reports as plain text
// for the interactive menu.
package console

import (
    "fmt"
    "io"
    "strconv"
    "strings"
    "time"

    "github.com/iliyamo/bus-seat-reservation/internal/model"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
)

const (
    // InputLayout is how operators type departure times.
    InputLayout = "2006-01-02 15:04"
    // DisplayLayout is how times are printed.
    DisplayLayout = "02/01/2006 15:04"
    // Currency is appended to every price.
    Currency = "TL"

    none   = "(none)"
    noInfo = "(no info)"
)

// ParseDepartTime parses a time typed as YYYY-MM-DD HH:mm in the local zone.
func ParseDepartTime(s string) (time.Time, error) {
    return time.ParseInLocation(InputLayout, strings.TrimSpace(s), time.Local)
}

// FormatTime renders t with DisplayLayout, or "(no info)" for the zero time.
func FormatTime(t time.Time) string {
    if t.IsZero() {
        return noInfo
    }
    return t.Format(DisplayLayout)
}

// ShortID returns the display prefix of a reservation id.
func ShortID(s model.Seat) string {
    if id := s.ShortReservationID(); id != "" {
        return id
    }
    return none
}

// SeatList joins seat numbers with ", ", or returns "(none)".
func SeatList(seats []model.Seat) string {
    if len(seats) == 0 {
        return none
    }
    parts := make([]string, 0, len(seats))
    for _, s := range seats {
        parts = append(parts, strconv.Itoa(s.Number()))
    }
    return strings.Join(parts, ", ")
}

// TripLine is the one-line listing of a trip.
func TripLine(t *model.Trip) string {
    return fmt.Sprintf("%s | %s -> %s | Departs: %s | Cap: %d | Taken: %d | Occupancy: %4.1f%% | Price: %d %s",
        t.ID(), t.Origin(), t.Destination(), FormatTime(t.DepartTime()),
        t.Capacity(), t.ReservedCount(), t.OccupancyRate(), t.TicketPrice(), Currency)
}

// SummaryLine is the per-trip line of the revenue report.
func SummaryLine(s repository.TripSummary) string {
    return fmt.Sprintf("%s | %s -> %s | Price: %d %s | Reserved: %d | Cap: %d | Occupancy: %4.1f%% | Revenue: %d %s",
        s.TripID, s.Origin, s.Destination, s.TicketPrice, Currency,
        s.Reserved, s.Capacity, s.OccupancyRate, s.Revenue, Currency)
}

// OccupancyLine reports reserved/capacity and the expected revenue.
func OccupancyLine(t *model.Trip) string {
    return fmt.Sprintf("%s | %s -> %s | Price: %d %s | Occupancy: %d/%d (%.2f%%) | Expected revenue: %d %s",
        t.ID(), t.Origin(), t.Destination(), t.TicketPrice(), Currency,
        t.ReservedCount(), t.Capacity(), t.OccupancyRate(), t.Revenue(), Currency)
}

// WriteTripDetails prints the trip header and its seat map.
func WriteTripDetails(w io.Writer, t *model.Trip) {
    fmt.Fprintf(w, "Trip %s (%s -> %s) - Ticket: %d %s\n", t.ID(), t.Origin(), t.Destination(), t.TicketPrice(), Currency)
    fmt.Fprintf(w, "Departs: %s | Capacity: %d | Taken: %d (%.2f%%)\n",
        FormatTime(t.DepartTime()), t.Capacity(), t.ReservedCount(), t.OccupancyRate())
    fmt.Fprintln(w, "Seats (No : Status [short id] - Passenger):")
    for _, s := range t.AllSeats() {
        status := "FREE"
        if s.IsReserved() {
            status = fmt.Sprintf("TAKEN [%s] - %s", ShortID(s), s.PassengerName())
        }
        fmt.Fprintf(w, "%02d : %s\n", s.Number(), status)
    }
}

// WriteTicket prints the receipt handed to a passenger after reserving.
func WriteTicket(w io.Writer, t *model.Trip, s model.Seat) {
    phone := s.PassengerPhone()
    if phone == "" {
        phone = none
    }
    fmt.Fprintln(w)
    fmt.Fprintln(w, "=====================================")
    fmt.Fprintln(w, "               TICKET                ")
    fmt.Fprintln(w, "=====================================")
    fmt.Fprintf(w, "Reservation ID : %s\n", s.ReservationID())
    fmt.Fprintf(w, "Passenger      : %s\n", s.PassengerName())
    fmt.Fprintf(w, "Phone          : %s\n", phone)
    fmt.Fprintf(w, "Trip ID        : %s\n", t.ID())
    fmt.Fprintf(w, "Route          : %s -> %s\n", t.Origin(), t.Destination())
    fmt.Fprintf(w, "Departs        : %s\n", FormatTime(t.DepartTime()))
    fmt.Fprintf(w, "Seat No        : %02d\n", s.Number())
    fmt.Fprintf(w, "Ticket price   : %d %s\n", t.TicketPrice(), Currency)
    fmt.Fprintf(w, "Reserved at    : %s\n", FormatTime(s.ReservationTime()))
    fmt.Fprintln(w, "-------------------------------------")
    fmt.Fprintln(w, "NOTE: keep your reservation ID. It is required to cancel.")
    fmt.Fprintln(w, "=====================================")
    fmt.Fprintln(w)
}

// ReservationLine is one entry of the all-reservations listing.
func ReservationLine(r repository.Reservation) string {
    phone := r.Seat.PassengerPhone()
    if phone == "" {
        phone = noInfo
    }
    return fmt.Sprintf("Trip %s | Seat %02d | Price: %d %s | ReservationID: %s | Passenger: %s | Phone: %s | Time: %s",
        r.Trip.ID(), r.Seat.Number(), r.Trip.TicketPrice(), Currency,
        r.Seat.ReservationID(), r.Seat.PassengerName(), phone, FormatTime(r.Seat.ReservationTime()))
}

// WriteReport prints totals followed by one SummaryLine per trip.
func WriteReport(w io.Writer, rep repository.Report) {
    fmt.Fprintln(w, "=== REPORT ===")
    fmt.Fprintf(w, "Total trips: %d\n", rep.TripCount)
    fmt.Fprintf(w, "Total reserved seats: %d\n", rep.TotalReservedSeats)
    fmt.Fprintf(w, "Total revenue: %d %s\n", rep.TotalRevenue, Currency)
    fmt.Fprintln(w, "Per trip:")
    for _, s := range rep.Trips {
        fmt.Fprintln(w, SummaryLine(s))
    }
}
