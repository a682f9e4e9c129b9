package middleware

import (
    "net/http"
    "net/http/httptest"
    "strconv"
    "strings"
    "sync/atomic"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
    t.Cleanup(func() { _ = rdb.Close() })
    return mr, rdb
}

func serve(e *echo.Echo, method, target string) *httptest.ResponseRecorder {
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
    return rec
}

var cacheCfg = config.CacheConfig{
    Enabled:     true,
    Methods:     map[string]bool{http.MethodGet: true},
    TTL:         time.Minute,
    KeyStrategy: "path_query",
    Prefix:      "cache",
}

// bookingApp mimics the trip and reservation routes.  Every handler call
// is counted and reads return the current booking count so stale entries
// are visible.
func bookingApp(mw echo.MiddlewareFunc, calls *atomic.Int64) *echo.Echo {
    var booked atomic.Int64
    e := echo.New()
    e.Use(mw)
    e.GET("/v1/trips/:id", func(c echo.Context) error {
        calls.Add(1)
        return c.String(http.StatusOK, "trip "+c.Param("id")+" booked="+strconv.FormatInt(booked.Load(), 10))
    })
    e.GET("/v1/reservations/:rid", func(c echo.Context) error {
        calls.Add(1)
        if c.Param("rid") == "missing" {
            return c.JSON(http.StatusNotFound, map[string]string{"error": "reservation not found"})
        }
        return c.String(http.StatusOK, "ticket for "+c.Param("rid"))
    })
    e.GET("/v1/big", func(c echo.Context) error {
        calls.Add(1)
        return c.String(http.StatusOK, strings.Repeat("x", 64))
    })
    e.POST("/v1/trips/:id/seats/:seat/reservation", func(c echo.Context) error {
        if c.Param("seat") == "99" {
            return c.JSON(http.StatusConflict, map[string]string{"error": "seat taken or out of range"})
        }
        booked.Add(1)
        return c.JSON(http.StatusCreated, map[string]string{"seat": c.Param("seat")})
    })
    e.DELETE("/v1/reservations/:rid", func(c echo.Context) error {
        booked.Add(-1)
        return c.JSON(http.StatusOK, map[string]string{"cancelled": c.Param("rid")})
    })
    return e
}

func TestResponseCacheSeparatesIDs(t *testing.T) {
    _, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewRedisCache(cacheCfg, rdb), &calls)

    for _, tc := range []struct {
        target, body, cache string
    }{
        {"/v1/reservations/AAA", "ticket for AAA", "MISS"},
        {"/v1/reservations/BBB", "ticket for BBB", "MISS"},
        {"/v1/reservations/AAA", "ticket for AAA", "HIT"},
        {"/v1/reservations/BBB", "ticket for BBB", "HIT"},
        {"/v1/trips/T1", "trip T1 booked=0", "MISS"},
        {"/v1/trips/T2", "trip T2 booked=0", "MISS"},
        {"/v1/trips/T1", "trip T1 booked=0", "HIT"},
    } {
        rec := serve(e, http.MethodGet, tc.target)
        require.Equal(t, http.StatusOK, rec.Code, tc.target)
        assert.Equal(t, tc.body, rec.Body.String(), tc.target)
        assert.Equal(t, tc.cache, rec.Header().Get("X-Cache"), tc.target)
    }
    assert.EqualValues(t, 4, calls.Load())
}

func TestResponseCacheHitReplaysHeaders(t *testing.T) {
    _, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewRedisCache(cacheCfg, rdb), &calls)

    miss := serve(e, http.MethodGet, "/v1/trips/T1")
    hit := serve(e, http.MethodGet, "/v1/trips/T1")
    assert.Equal(t, miss.Header().Get(echo.HeaderContentType), hit.Header().Get(echo.HeaderContentType))
    assert.Equal(t, []string{"HIT"}, hit.Header().Values("X-Cache"))
}

func TestResponseCachePurgedAfterMutation(t *testing.T) {
    mr, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewRedisCache(cacheCfg, rdb), &calls)

    require.Equal(t, "trip T1 booked=0", serve(e, http.MethodGet, "/v1/trips/T1").Body.String())
    serve(e, http.MethodGet, "/v1/reservations/AAA")
    assert.Len(t, mr.Keys(), 2)

    // a failed reservation changes nothing and keeps the cache
    assert.Equal(t, http.StatusConflict, serve(e, http.MethodPost, "/v1/trips/T1/seats/99/reservation").Code)
    assert.Len(t, mr.Keys(), 2)
    assert.Equal(t, "HIT", serve(e, http.MethodGet, "/v1/trips/T1").Header().Get("X-Cache"))

    assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/trips/T1/seats/3/reservation").Code)
    assert.Empty(t, mr.Keys())
    rec := serve(e, http.MethodGet, "/v1/trips/T1")
    assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    assert.Equal(t, "trip T1 booked=1", rec.Body.String())

    assert.Equal(t, http.StatusOK, serve(e, http.MethodDelete, "/v1/reservations/AAA").Code)
    assert.Empty(t, mr.Keys())
    assert.Equal(t, "trip T1 booked=0", serve(e, http.MethodGet, "/v1/trips/T1").Body.String())
}

func TestResponseCacheSkipsErrorsAndLargeBodies(t *testing.T) {
    mr, rdb := newMiniRedis(t)
    cfg := cacheCfg
    cfg.MaxBodyBytes = 32
    var calls atomic.Int64
    e := bookingApp(NewRedisCache(cfg, rdb), &calls)

    for i := 0; i < 2; i++ {
        assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/v1/reservations/missing").Code)
        rec := serve(e, http.MethodGet, "/v1/big")
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Len(t, rec.Body.String(), 64)
        assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
    }
    assert.EqualValues(t, 4, calls.Load())
    assert.Empty(t, mr.Keys())
}

func TestResponseCacheRedisDown(t *testing.T) {
    mr, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewRedisCache(cacheCfg, rdb), &calls)
    mr.Close()

    rec := serve(e, http.MethodGet, "/v1/trips/T1")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "trip T1 booked=0", rec.Body.String())
    assert.Equal(t, http.StatusCreated, serve(e, http.MethodPost, "/v1/trips/T1/seats/1/reservation").Code)
}

func rateCfg() config.RateLimitConfig {
    return config.RateLimitConfig{
        Enabled:       true,
        Default:       config.Bucket{Capacity: 2, RefillTokens: 1, RefillInterval: time.Minute},
        Booking:       config.Bucket{Capacity: 1, RefillTokens: 1, RefillInterval: time.Minute},
        BookingRoutes: config.DefaultBookingRoutes,
        TTL:           10 * time.Minute,
        KeyStrategy:   "ip_route",
        Prefix:        "rl",
    }
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
    mr, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewTokenBucket(rateCfg(), rdb), &calls)

    for _, remaining := range []string{"1", "0"} {
        rec := serve(e, http.MethodGet, "/v1/trips/T1")
        require.Equal(t, http.StatusOK, rec.Code)
        assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
        assert.Equal(t, remaining, rec.Header().Get("X-RateLimit-Remaining"))
        assert.Equal(t, bucketDefault, rec.Header().Get("X-RateLimit-Bucket"))
    }

    rec := serve(e, http.MethodGet, "/v1/trips/T2")
    assert.Equal(t, http.StatusTooManyRequests, rec.Code)
    retry, err := strconv.Atoi(rec.Header().Get("Retry-After"))
    require.NoError(t, err)
    assert.True(t, retry >= 1 && retry <= 60, "Retry-After=%d", retry)
    assert.Contains(t, rec.Body.String(), `"error":"too many requests"`)
    assert.EqualValues(t, 2, calls.Load())

    keys := mr.Keys()
    require.Len(t, keys, 1)
    assert.Equal(t, "rl:default:192.0.2.1:GET /v1/trips/:id", keys[0])
}

func TestBookingRoutesUseStricterBucket(t *testing.T) {
    _, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewTokenBucket(rateCfg(), rdb), &calls)

    rec := serve(e, http.MethodPost, "/v1/trips/T1/seats/1/reservation")
    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Equal(t, bucketBooking, rec.Header().Get("X-RateLimit-Bucket"))
    assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

    // the bucket is per route template, so another trip and seat is refused too
    assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodPost, "/v1/trips/T2/seats/7/reservation").Code)

    assert.Equal(t, http.StatusOK, serve(e, http.MethodDelete, "/v1/reservations/A").Code)
    assert.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodDelete, "/v1/reservations/B").Code)

    rec = serve(e, http.MethodGet, "/v1/trips/T1")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, bucketDefault, rec.Header().Get("X-RateLimit-Bucket"))
}

func TestTokenBucketRefills(t *testing.T) {
    _, rdb := newMiniRedis(t)
    cfg := rateCfg()
    cfg.Default = config.Bucket{Capacity: 1, RefillTokens: 1, RefillInterval: 50 * time.Millisecond}
    var calls atomic.Int64
    e := bookingApp(NewTokenBucket(cfg, rdb), &calls)

    require.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/trips/T1").Code)
    require.Equal(t, http.StatusTooManyRequests, serve(e, http.MethodGet, "/v1/trips/T1").Code)
    assert.Eventually(t, func() bool {
        return serve(e, http.MethodGet, "/v1/trips/T1").Code == http.StatusOK
    }, 2*time.Second, 20*time.Millisecond)
}

func TestTokenBucketRedisDownAllows(t *testing.T) {
    mr, rdb := newMiniRedis(t)
    var calls atomic.Int64
    e := bookingApp(NewTokenBucket(rateCfg(), rdb), &calls)
    mr.Close()

    for i := 0; i < 3; i++ {
        assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/v1/trips/T1").Code)
    }
}
