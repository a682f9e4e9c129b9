package middleware

import (
    "bytes"
    "context"
    "encoding/json"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/bus-seat-reservation/internal/config"
)

const headerCache = "X-Cache"

// cachedResponse is what a cache entry holds.  Headers are replayed so a
// hit is byte-for-byte the response the handler produced.
type cachedResponse struct {
    Status int         `json:"status"`
    Header http.Header `json:"header"`
    Body   []byte      `json:"body"`
}

// bodyRecorder tees the response body into buf.  Once the body grows past
// limit the copy is dropped and the response is not cached.
type bodyRecorder struct {
    http.ResponseWriter
    buf      bytes.Buffer
    limit    int
    overflow bool
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
    if !w.overflow {
        if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
            w.overflow = true
            w.buf.Reset()
        } else {
            w.buf.Write(b)
        }
    }
    return w.ResponseWriter.Write(b)
}

// cacheKey names the entry for a request.  It is built from the concrete
// request path, never the route template, so every trip and reservation
// id gets an entry of its own.  Query parameters are sorted by Encode.
func cacheKey(cfg config.CacheConfig, r *http.Request) string {
    strategy := strings.ToLower(cfg.KeyStrategy)
    path := r.URL.Path
    if path == "" {
        path = "/"
    }

    var b strings.Builder
    b.WriteString(cfg.Prefix)
    b.WriteByte(':')
    if strategy == "method_path_query" {
        b.WriteString(r.Method)
        b.WriteByte(' ')
    }
    b.WriteString(path)
    if strategy != "path" {
        if q := r.URL.Query().Encode(); q != "" {
            b.WriteByte('?')
            b.WriteString(q)
        }
    }
    return b.String()
}

type responseCache struct {
    cfg     config.CacheConfig
    rdb     *redis.Client
    ttl     time.Duration
    maxBody int
    log     *logrus.Entry
}

// NewRedisCache caches 200 responses of the methods in cfg.Methods.  Any
// other request that succeeds (2xx) is a mutation of trips or seats, and
// purges every entry under cfg.Prefix so the next read sees the new seat
// state.  With caching disabled or no Redis client it passes through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    rc := &responseCache{
        cfg:     cfg,
        rdb:     rdb,
        ttl:     cfg.TTL,
        maxBody: cfg.MaxBodyBytes,
        log:     logrus.WithField("component", "response-cache"),
    }
    if rc.ttl <= 0 {
        rc.ttl = 30 * time.Second
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
                return rc.mutate(c, next)
            }
            return rc.serve(c, next)
        }
    }
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func (rc *responseCache) serve(c echo.Context, next echo.HandlerFunc) error {
    ctx := c.Request().Context()
    key := cacheKey(rc.cfg, c.Request())

    if hit, ok := rc.lookup(ctx, key); ok {
        return hit.replay(c)
    }

    rec := &bodyRecorder{ResponseWriter: c.Response().Writer, limit: rc.maxBody}
    c.Response().Writer = rec
    c.Response().Header().Set(headerCache, "MISS")
    if err := next(c); err != nil {
        return err
    }
    if c.Response().Status == http.StatusOK && !rec.overflow {
        rc.store(ctx, key, c.Response().Header(), rec.buf.Bytes())
    }
    return nil
}

func (rc *responseCache) mutate(c echo.Context, next echo.HandlerFunc) error {
    if err := next(c); err != nil {
        return err
    }
    if status := c.Response().Status; status < 200 || status > 299 {
        return nil
    }
    n, err := purgeCache(c.Request().Context(), rc.rdb, rc.cfg.Prefix)
    if err != nil {
        rc.log.WithError(err).Warn("cache purge failed")
        return nil
    }
    rc.log.WithFields(logrus.Fields{"path": c.Request().URL.Path, "purged": n}).Debug("cache purged")
    return nil
}

func (rc *responseCache) lookup(ctx context.Context, key string) (cachedResponse, bool) {
    bs, err := rc.rdb.Get(ctx, key).Bytes()
    if err != nil {
        if err != redis.Nil {
            rc.log.WithError(err).WithField("key", key).Warn("cache read failed")
        }
        return cachedResponse{}, false
    }
    var hit cachedResponse
    if err := json.Unmarshal(bs, &hit); err != nil || hit.Status == 0 {
        return cachedResponse{}, false
    }
    return hit, true
}

func (rc *responseCache) store(ctx context.Context, key string, hdr http.Header, body []byte) {
    payload, err := json.Marshal(cachedResponse{Status: http.StatusOK, Header: hdr.Clone(), Body: body})
    if err != nil {
        return
    }
    if err := rc.rdb.Set(context.WithoutCancel(ctx), key, payload, rc.ttl).Err(); err != nil {
        rc.log.WithError(err).WithField("key", key).Warn("cache write failed")
    }
}

func (cr cachedResponse) replay(c echo.Context) error {
    h := c.Response().Header()
    for k, vals := range cr.Header {
        if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, headerCache) {
            continue
        }
        for _, v := range vals {
            h.Add(k, v)
        }
    }
    h.Set(headerCache, "HIT")
    c.Response().WriteHeader(cr.Status)
    _, err := c.Response().Write(cr.Body)
    return err
}

// purgeCache deletes every key under prefix, walking the keyspace with
// SCAN, and reports how many keys were removed.
func purgeCache(ctx context.Context, rdb *redis.Client, prefix string) (int64, error) {
    var (
        cursor  uint64
        removed int64
    )
    for {
        keys, next, err := rdb.Scan(ctx, cursor, prefix+":*", 200).Result()
        if err != nil {
            return removed, err
        }
        if len(keys) > 0 {
            n, err := rdb.Del(ctx, keys...).Result()
            if err != nil {
                return removed, err
            }
            removed += n
        }
        if next == 0 {
            return removed, nil
        }
        cursor = next
    }
}
