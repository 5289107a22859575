package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests by route, method and status class.",
	}, []string{"route", "method", "result"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mch",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution for HTTP requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"route", "method", "result"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mch",
		Subsystem: "http",
		Name:      "in_flight",
		Help:      "Requests currently being served.",
	})
)

// Metrics records request counts and latency per route template, so
// /api/v1/patients/:id is one series rather than one per patient.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}
			start := time.Now()
			httpInFlight.Inc()
			defer httpInFlight.Dec()

			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			result := statusClass(responseStatus(c, err))
			httpRequests.WithLabelValues(route, c.Request().Method, result).Inc()
			httpLatency.WithLabelValues(route, c.Request().Method, result).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// MetricsHandler serves the default Prometheus registry.
func MetricsHandler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
