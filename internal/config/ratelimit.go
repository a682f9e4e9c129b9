package config

import (
    "strings"
    "time"

    "github.com/spf13/viper"
)

// Bucket sizes one token bucket: Capacity tokens at most, RefillTokens
// added back every RefillInterval.
type Bucket struct {
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
}

// RateLimitConfig drives the Redis token bucket middleware.  Requests on
// BookingRoutes (written as "METHOD /route/template") draw from Booking,
// every other request from Default.  Seat reservation and cancellation get
// the smaller bucket because they contend for the same seats.
//   RATE_LIMIT_CAPACITY, RATE_LIMIT_REFILL_TOKENS, RATE_LIMIT_REFILL_INTERVAL – Default
//   RATE_LIMIT_BURST, RATE_LIMIT_REFILL_EVERY – shorthand overrides for Default
//   RATE_LIMIT_BOOKING_CAPACITY, RATE_LIMIT_BOOKING_REFILL_TOKENS,
//   RATE_LIMIT_BOOKING_REFILL_INTERVAL – Booking
//   RATE_LIMIT_BOOKING_ROUTES – comma separated route list
type RateLimitConfig struct {
    Enabled       bool
    Default       Bucket
    Booking       Bucket
    BookingRoutes []string
    TTL           time.Duration
    KeyStrategy   string
    Prefix        string
    Debug         bool
}

// DefaultBookingRoutes are the seat-contention endpoints of the API.
var DefaultBookingRoutes = []string{
    "POST /v1/trips/:id/seats/:seat/reservation",
    "DELETE /v1/reservations/:rid",
}

func setRateLimitDefaults(v *viper.Viper) {
    v.SetDefault("RATE_LIMIT_ENABLED", true)
    v.SetDefault("RATE_LIMIT_CAPACITY", 60)
    v.SetDefault("RATE_LIMIT_REFILL_TOKENS", 1)
    v.SetDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second)
    v.SetDefault("RATE_LIMIT_BURST", -1)
    v.SetDefault("RATE_LIMIT_REFILL_EVERY", time.Duration(0))
    v.SetDefault("RATE_LIMIT_BOOKING_CAPACITY", 10)
    v.SetDefault("RATE_LIMIT_BOOKING_REFILL_TOKENS", 1)
    v.SetDefault("RATE_LIMIT_BOOKING_REFILL_INTERVAL", 6*time.Second)
    v.SetDefault("RATE_LIMIT_BOOKING_ROUTES", strings.Join(DefaultBookingRoutes, ","))
    v.SetDefault("RATE_LIMIT_TTL", 10*time.Minute)
    v.SetDefault("RATE_LIMIT_KEY_STRATEGY", "ip_route")
    v.SetDefault("RATE_LIMIT_PREFIX", "rl")
    v.SetDefault("RATE_LIMIT_DEBUG", false)
}

func loadRateLimitConfig(v *viper.Viper) RateLimitConfig {
    def := Bucket{
        Capacity:       v.GetInt("RATE_LIMIT_CAPACITY"),
        RefillTokens:   v.GetInt("RATE_LIMIT_REFILL_TOKENS"),
        RefillInterval: v.GetDuration("RATE_LIMIT_REFILL_INTERVAL"),
    }
    if b := v.GetInt("RATE_LIMIT_BURST"); b > 0 {
        def.Capacity = b
    }
    if every := v.GetDuration("RATE_LIMIT_REFILL_EVERY"); every > 0 {
        def.RefillTokens = 1
        def.RefillInterval = every
    }
    booking := Bucket{
        Capacity:       v.GetInt("RATE_LIMIT_BOOKING_CAPACITY"),
        RefillTokens:   v.GetInt("RATE_LIMIT_BOOKING_REFILL_TOKENS"),
        RefillInterval: v.GetDuration("RATE_LIMIT_BOOKING_REFILL_INTERVAL"),
    }

    cfg := RateLimitConfig{
        Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
        Default:       def.normalized(),
        Booking:       booking.normalized(),
        BookingRoutes: splitList(v.GetString("RATE_LIMIT_BOOKING_ROUTES")),
        TTL:           v.GetDuration("RATE_LIMIT_TTL"),
        KeyStrategy:   v.GetString("RATE_LIMIT_KEY_STRATEGY"),
        Prefix:        v.GetString("RATE_LIMIT_PREFIX"),
        Debug:         v.GetBool("RATE_LIMIT_DEBUG"),
    }
    // an idle bucket must outlive a few refill periods or it resets to full
    slowest := cfg.Default.RefillInterval
    if cfg.Booking.RefillInterval > slowest {
        slowest = cfg.Booking.RefillInterval
    }
    if cfg.TTL < 5*slowest {
        cfg.TTL = 5 * slowest
    }
    return cfg
}

func (b Bucket) normalized() Bucket {
    if b.Capacity < 1 {
        b.Capacity = 1
    }
    if b.RefillTokens < 1 {
        b.RefillTokens = 1
    }
    if b.RefillInterval <= 0 {
        b.RefillInterval = time.Second
    }
    return b
}

func splitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if p = strings.TrimSpace(p); p != "" {
            out = append(out, p)
        }
    }
    return out
}
