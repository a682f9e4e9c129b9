package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
)

// Bucket names, used in keys and the X-RateLimit-Bucket header.
const (
    bucketDefault = "default"
    bucketBooking = "booking"
)

// takeToken refills the bucket continuously at ARGV[3] tokens per
// millisecond, then tries to take one token.  It returns
// {allowed, whole tokens left, milliseconds until a token is available}.
var takeToken = redis.NewScript(`
local key      = KEYS[1]
local now      = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local rate     = tonumber(ARGV[3])
local ttl      = tonumber(ARGV[4])

local tokens = tonumber(redis.call('HGET', key, 'tokens'))
local stamp  = tonumber(redis.call('HGET', key, 'stamp'))
if tokens == nil or stamp == nil then
    tokens = capacity
    stamp = now
end
tokens = math.min(capacity, tokens + math.max(0, now - stamp) * rate)

local allowed = 0
local wait = 0
if tokens >= 1 then
    allowed = 1
    tokens = tokens - 1
else
    wait = math.ceil((1 - tokens) / rate)
end

redis.call('HSET', key, 'tokens', tostring(tokens), 'stamp', tostring(now))
redis.call('EXPIRE', key, ttl)
return {allowed, math.floor(tokens), wait}
`)

type limiter struct {
    cfg     config.RateLimitConfig
    rdb     *redis.Client
    booking map[string]bool
    log     *logrus.Entry
}

// NewTokenBucket limits requests with token buckets kept in Redis.  Routes
// listed in cfg.BookingRoutes draw from the stricter cfg.Booking bucket,
// everything else from cfg.Default.  A blocked request gets 429 with
// Retry-After.  Redis errors let the request through.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    l := &limiter{
        cfg:     cfg,
        rdb:     rdb,
        booking: make(map[string]bool, len(cfg.BookingRoutes)),
        log:     logrus.WithField("component", "rate-limiter"),
    }
    for _, r := range cfg.BookingRoutes {
        l.booking[normalizeRoute(r)] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error { return l.handle(c, next) }
    }
}

// normalizeRoute upper-cases the method of "METHOD /path" and collapses
// the separating whitespace.
func normalizeRoute(r string) string {
    fields := strings.Fields(r)
    if len(fields) != 2 {
        return strings.TrimSpace(r)
    }
    return strings.ToUpper(fields[0]) + " " + fields[1]
}

func (l *limiter) bucketFor(c echo.Context) (string, config.Bucket) {
    if l.booking[c.Request().Method+" "+c.Path()] {
        return bucketBooking, l.cfg.Booking
    }
    return bucketDefault, l.cfg.Default
}

func (l *limiter) handle(c echo.Context, next echo.HandlerFunc) error {
    name, b := l.bucketFor(c)
    key := buildRateKey(l.cfg, name, c)
    interval := b.RefillInterval.Milliseconds()
    if interval < 1 {
        interval = 1
    }
    rate := float64(b.RefillTokens) / float64(interval)
    // an idle bucket must outlive a few refill periods or it resets to full
    ttl := l.cfg.TTL
    if floor := 5 * b.RefillInterval; ttl < floor {
        ttl = floor
    }
    ttlSecs := int64(ttl / time.Second)
    if ttlSecs < 1 {
        ttlSecs = 1
    }

    res, err := takeToken.Run(c.Request().Context(), l.rdb, []string{key},
        time.Now().UnixMilli(), b.Capacity, rate, ttlSecs).Int64Slice()
    if err != nil || len(res) != 3 {
        if l.cfg.Debug {
            l.log.WithError(err).WithField("key", key).Warn("rate limit check failed; allowing request")
        }
        return next(c)
    }
    allowed, remaining, waitMs := res[0] == 1, res[1], res[2]

    h := c.Response().Header()
    h.Set("X-RateLimit-Bucket", name)
    h.Set("X-RateLimit-Limit", strconv.Itoa(b.Capacity))
    h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
    if allowed {
        return next(c)
    }

    secs := (waitMs + 999) / 1000
    if secs < 1 {
        secs = 1
    }
    h.Set("Retry-After", strconv.FormatInt(secs, 10))
    l.log.WithFields(logrus.Fields{"key": key, "bucket": name, "retry_after": secs}).Info("request rate limited")
    return c.JSON(http.StatusTooManyRequests, map[string]any{
        "error":       "too many requests",
        "retry_after": secs,
    })
}

// buildRateKey scopes a bucket to the client ip, the route template, or
// both (ip_route, the default).  Keys use the route template, so every
// seat of every trip shares one client's booking bucket.
func buildRateKey(cfg config.RateLimitConfig, bucket string, c echo.Context) string {
    ip := c.RealIP()
    if ip == "" {
        ip = "unknown"
    }
    route := c.Request().Method + " " + c.Path()

    parts := []string{cfg.Prefix, bucket}
    switch strings.ToLower(cfg.KeyStrategy) {
    case "ip":
        parts = append(parts, ip)
    case "route":
        parts = append(parts, route)
    default:
        parts = append(parts, ip, route)
    }
    return strings.Join(parts, ":")
}
