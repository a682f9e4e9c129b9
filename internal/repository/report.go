package repository

import "github.com/iliyamo/bus-seat-reservation/internal/model"

// TripSummary is one line of the revenue report.
type TripSummary struct {
    TripID        string  `json:"trip_id"`
    Origin        string  `json:"origin"`
    Destination   string  `json:"destination"`
    TicketPrice   int     `json:"ticket_price"`
    Reserved      int     `json:"reserved"`
    Capacity      int     `json:"capacity"`
    OccupancyRate float64 `json:"occupancy_rate"`
    Revenue       int     `json:"revenue"`
}

// Report aggregates occupancy and revenue over the whole registry.
type Report struct {
    TripCount          int           `json:"trip_count"`
    TotalReservedSeats int           `json:"total_reserved_seats"`
    TotalRevenue       int           `json:"total_revenue"`
    Trips              []TripSummary `json:"trips"`
}

// Summarize builds the report line for a single trip.
func Summarize(t *model.Trip) TripSummary {
    return TripSummary{
        TripID:        t.ID(),
        Origin:        t.Origin(),
        Destination:   t.Destination(),
        TicketPrice:   t.TicketPrice(),
        Reserved:      t.ReservedCount(),
        Capacity:      t.Capacity(),
        OccupancyRate: t.OccupancyRate(),
        Revenue:       t.Revenue(),
    }
}

// Summary returns totals and one line per trip in creation order.
func (r *Registry) Summary() Report {
    trips := r.ListTrips()
    rep := Report{
        TripCount:          len(trips),
        TotalReservedSeats: r.TotalReservedSeats(),
        TotalRevenue:       r.TotalRevenue(),
        Trips:              make([]TripSummary, 0, len(trips)),
    }
    for _, t := range trips {
        rep.Trips = append(rep.Trips, Summarize(t))
    }
    return rep
}
