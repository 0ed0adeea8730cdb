package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"supplier-portal/prometheus"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request count, duration and status class. The
// route pattern is used as path label so ids do not explode cardinality.
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		status := c.Response().Status
		if err != nil {
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			} else if !c.Response().Committed {
				status = http.StatusInternalServerError
			}
		}

		method := c.Request().Method
		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		statusStr := strconv.Itoa(status)

		prometheus.HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
		prometheus.HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(time.Since(start).Seconds())
		if category := prometheus.StatusCategory(status); category != "" {
			prometheus.StatusCategoryCounter.WithLabelValues(category).Inc()
		}

		return err
	}
}
