package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/metrics"
)

// Logging emits one structured line and records request metrics for each HTTP request.
func Logging(log *zap.SugaredLogger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(req.Method, route).Observe(latency.Seconds())

			fields := []any{
				"request_id", RequestIDFromContext(c),
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"latency", latency.String(),
			}
			if officer := OfficerIDFromContext(c); officer != "" {
				fields = append(fields, "officer_id", officer)
			}
			if status >= 500 {
				cause := err
				if cause == nil {
					cause, _ = c.Get(ContextKeyError).(error)
				}
				log.Errorw("http_request", append(fields, "error", cause)...)
			} else {
				log.Infow("http_request", fields...)
			}

			return err
		}
	}
}
