package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request after the handler has run.
// Responses with a status of 400 or above are logged at error level.  The
// request id is taken from the X-Request-ID response header set by echo's
// RequestID middleware, when present.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
    if log == nil {
        log = logrus.StandardLogger()
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler write the response so the status is final
                c.Error(err)
            }

            res := c.Response()
            entry := log.WithFields(logrus.Fields{
                "request_id": res.Header().Get(echo.HeaderXRequestID),
                "method":     c.Request().Method,
                "path":       c.Request().URL.Path,
                "route":      c.Path(),
                "status":     res.Status,
                "latency_ms": float64(time.Since(start).Microseconds()) / 1000.0,
                "client_ip":  c.RealIP(),
                "user_agent": c.Request().UserAgent(),
            })
            if res.Status >= 400 {
                entry.Error("request failed")
            } else {
                entry.Info("request processed")
            }
            return nil
        }
    }
}
