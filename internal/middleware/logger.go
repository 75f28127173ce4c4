package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req, res := c.Request(), c.Response()
            ev := log.Info()
            if res.Status >= 500 {
                ev = log.Error().Err(err)
            }
            ev.Str("method", req.Method).
                Str("path", c.Path()).
                Str("uri", req.RequestURI).
                Int("status", res.Status).
                Int64("bytes", res.Size).
                Dur("latency", time.Since(start)).
                Str("ip", c.RealIP()).
                Str("username", Username(c)).
                Msg("request")
            return nil
        }
    }
}
