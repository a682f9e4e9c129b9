// Package cli implements the interactive text menu.  It parses and validates
// what the operator types, calls the registry, and prints the results with
// the console package.
package cli

import (
    "bufio"
    "errors"
    "fmt"
    "io"
    "strconv"
    "strings"

    "github.com/sirupsen/logrus"

    "github.com/iliyamo/bus-seat-reservation/internal/console"
    "github.com/iliyamo/bus-seat-reservation/internal/repository"
)

// TripCapacity is the fixed seat count of trips created from the menu.
const TripCapacity = 10

// Menu is a single-user interactive session over a registry.
type Menu struct {
    reg *repository.Registry
    in  *bufio.Scanner
    out io.Writer
    log *logrus.Entry
}

// NewMenu builds a menu reading commands from in and writing to out.
func NewMenu(reg *repository.Registry, in io.Reader, out io.Writer, log *logrus.Logger) *Menu {
    if log == nil {
        log = logrus.StandardLogger()
    }
    return &Menu{
        reg: reg,
        in:  bufio.NewScanner(in),
        out: out,
        log: log.WithField("component", "cli"),
    }
}

// errEOF ends the session when input runs out.
var errEOF = errors.New("end of input")

// Run shows the menu until the operator chooses 0 or input ends.
func (m *Menu) Run() error {
    for {
        m.printMenu()
        choice, err := m.readLine()
        if err != nil {
            return m.finish(err)
        }
        switch choice {
        case "1":
            err = m.createTrip()
        case "2":
            m.listTrips()
        case "3":
            err = m.showTrip()
        case "4":
            err = m.reserveSeat()
        case "5":
            err = m.cancelReservation()
        case "6":
            err = m.showOccupancy()
        case "7":
            m.listReservations()
        case "8":
            console.WriteReport(m.out, m.reg.Summary())
        case "0":
            m.println("Goodbye!")
            return nil
        default:
            m.println("Invalid choice. Try again.")
        }
        if err != nil {
            return m.finish(err)
        }
        m.println()
    }
}

func (m *Menu) finish(err error) error {
    if errors.Is(err, errEOF) {
        return nil
    }
    return err
}

func (m *Menu) printMenu() {
    m.println("=== Bus Reservation ===")
    m.println("1) Create trip")
    m.println("2) List trips")
    m.println("3) Show trip details")
    m.println("4) Reserve a seat")
    m.println("5) Cancel reservation (by reservation ID)")
    m.println("6) Show occupancy")
    m.println("7) List all reservations")
    m.println("8) Report: trips and revenue")
    m.println("0) Exit")
    m.print("Choice: ")
}

func (m *Menu) print(a ...any)                 { fmt.Fprint(m.out, a...) }
func (m *Menu) println(a ...any)               { fmt.Fprintln(m.out, a...) }
func (m *Menu) printf(format string, a ...any) { fmt.Fprintf(m.out, format, a...) }

func (m *Menu) readLine() (string, error) {
    if !m.in.Scan() {
        if err := m.in.Err(); err != nil {
            return "", err
        }
        return "", errEOF
    }
    return strings.TrimSpace(m.in.Text()), nil
}

func (m *Menu) prompt(label string) (string, error) {
    m.print(label)
    return m.readLine()
}

func (m *Menu) createTrip() error {
    m.println("--- Create trip ---")
    id, err := m.prompt("Trip ID (e.g. SFR1001): ")
    if err != nil {
        return err
    }
    if _, exists := m.reg.GetTrip(id); id == "" || exists {
        m.println("Invalid or existing ID.")
        return nil
    }
    origin, err := m.prompt("Origin: ")
    if err != nil {
        return err
    }
    dest, err := m.prompt("Destination: ")
    if err != nil {
        return err
    }
    raw, err := m.prompt("Departure (YYYY-MM-DD HH:mm): ")
    if err != nil {
        return err
    }
    departs, perr := console.ParseDepartTime(raw)
    if perr != nil {
        m.println("Bad date format. Example: 2025-11-01 13:30")
        return nil
    }
    m.printf("Capacity: %d (bus capacity is fixed at %d.)\n", TripCapacity, TripCapacity)
    rawPrice, err := m.prompt("Ticket price (" + console.Currency + "): ")
    if err != nil {
        return err
    }
    price, perr := strconv.Atoi(rawPrice)
    if perr != nil {
        m.println("Bad ticket price.")
        return nil
    }
    if price <= 0 {
        m.println("Ticket price must be positive.")
        return nil
    }
    if _, cerr := m.reg.CreateTrip(id, origin, dest, departs, TripCapacity, price); cerr != nil {
        m.log.WithError(cerr).WithField("trip_id", id).Warn("create trip failed")
        m.println("Could not create trip:", cerr)
        return nil
    }
    m.log.WithField("trip_id", id).Info("trip created")
    m.println("Trip created:", id)
    return nil
}

func (m *Menu) listTrips() {
    trips := m.reg.ListTrips()
    if len(trips) == 0 {
        m.println("No trips yet.")
        return
    }
    m.println("--- Trips ---")
    for _, t := range trips {
        m.println(console.TripLine(t))
    }
}

func (m *Menu) showTrip() error {
    id, err := m.prompt("Trip ID: ")
    if err != nil {
        return err
    }
    t, ok := m.reg.GetTrip(id)
    if !ok {
        m.println("Trip not found.")
        return nil
    }
    console.WriteTripDetails(m.out, t)
    return nil
}

func (m *Menu) reserveSeat() error {
    id, err := m.prompt("Trip ID: ")
    if err != nil {
        return err
    }
    t, ok := m.reg.GetTrip(id)
    if !ok {
        m.println("Trip not found.")
        return nil
    }
    m.printf("Trip: %s (%s -> %s) | Ticket price: %d %s\n", t.ID(), t.Origin(), t.Destination(), t.TicketPrice(), console.Currency)
    raw, err := m.prompt(fmt.Sprintf("Seat number (1..%d): ", t.Capacity()))
    if err != nil {
        return err
    }
    seatNo, perr := strconv.Atoi(raw)
    if perr != nil {
        m.println("Invalid seat number.")
        return nil
    }
    name, err := m.prompt("Passenger name: ")
    if err != nil {
        return err
    }
    phone, err := m.prompt("Phone: ")
    if err != nil {
        return err
    }
    seat, ok := t.ReserveSeatDirect(seatNo, name, phone)
    if !ok {
        m.println("Reservation failed (seat taken or invalid number).")
        return nil
    }
    m.log.WithFields(logrus.Fields{"trip_id": t.ID(), "seat": seatNo}).Info("seat reserved")
    m.println("Reservation complete! ReservationID:", seat.ReservationID())
    console.WriteTicket(m.out, t, seat)
    return nil
}

func (m *Menu) cancelReservation() error {
    rid, err := m.prompt("Reservation ID: ")
    if err != nil {
        return err
    }
    res, ok := m.reg.CancelReservation(rid)
    if !ok {
        m.println("Reservation ID not found.")
        return nil
    }
    m.printf("Cancelled: Trip %s | Seat %d | Passenger %s\n", res.Trip.ID(), res.Seat.Number(), res.Seat.PassengerName())
    m.log.WithFields(logrus.Fields{"trip_id": res.Trip.ID(), "seat": res.Seat.Number()}).Info("reservation cancelled")
    return nil
}

func (m *Menu) showOccupancy() error {
    id, err := m.prompt("Trip ID (leave empty for all trips): ")
    if err != nil {
        return err
    }
    m.println("--- Occupancy and revenue ---")
    if id == "" {
        for _, t := range m.reg.ListTrips() {
            m.println(console.OccupancyLine(t))
        }
        return nil
    }
    t, ok := m.reg.GetTrip(id)
    if !ok {
        m.println("Trip not found.")
        return nil
    }
    m.println(console.OccupancyLine(t))
    m.println("Free seats:", console.SeatList(t.AvailableSeats()))
    m.println("Taken seats:", console.SeatList(t.ReservedSeats()))
    return nil
}

func (m *Menu) listReservations() {
    m.println("--- All reservations ---")
    all := m.reg.Reservations()
    if len(all) == 0 {
        m.println("No reservations.")
        return
    }
    for _, r := range all {
        m.println(console.ReservationLine(r))
    }
}
