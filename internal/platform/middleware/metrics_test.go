package middleware

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountsByRouteTemplate(t *testing.T) {
	counter := httpRequests.WithLabelValues("/api/v1/patients/:id", http.MethodGet, "2xx")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		c, _ := newTestContext(http.MethodGet, "/api/v1/patients/"+id)
		c.SetPath("/api/v1/patients/:id")
		if err := Metrics()(okHandler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 requests on one series, got %v", got)
	}
}

func TestMetrics_ErrorClass(t *testing.T) {
	counter := httpRequests.WithLabelValues("/api/v1/contacts", http.MethodPost, "4xx")
	before := testutil.ToFloat64(counter)

	c, _ := newTestContext(http.MethodPost, "/api/v1/contacts")
	c.SetPath("/api/v1/contacts")
	_ = Metrics()(func(echo.Context) error {
		return echo.NewHTTPError(http.StatusBadRequest, "bad")
	})(c)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("expected one 4xx, got %v", got)
	}
}

func TestStatusClass(t *testing.T) {
	tests := map[int]string{200: "2xx", 201: "2xx", 404: "4xx", 503: "5xx", 0: "unknown"}
	for status, want := range tests {
		if got := statusClass(status); got != want {
			t.Errorf("statusClass(%d) = %s, want %s", status, got, want)
		}
	}
}

func TestMetricsHandler_Exposes(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/metrics")
	httpInFlight.Add(0)
	if err := MetricsHandler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "mch_http_in_flight") {
		t.Error("expected mch_http_in_flight in exposition")
	}
}
