package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1M", 1 << 20},
		{"10MB", 10 << 20},
		{"512k", 512 << 10},
		{"1G", 1 << 30},
		{"1024", 1024},
		{"", 1 << 20},
		{"invalid", 1 << 20},
		{"-5K", 1 << 20},
	}

	for _, tt := range tests {
		if got := parseLimit(tt.input); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func bodyContext(body string, contentLength int64) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(body))
	req.ContentLength = contentLength
	return e.NewContext(req, httptest.NewRecorder())
}

func readAllHandler(got *string) echo.HandlerFunc {
	return func(c echo.Context) error {
		b, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}
		*got = string(b)
		return c.NoContent(http.StatusCreated)
	}
}

func expectTooLarge(t *testing.T, err error) {
	t.Helper()
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T (%v)", err, err)
	}
	if httpErr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", httpErr.Code)
	}
}

func TestBodyLimit_AllowsSmallBody(t *testing.T) {
	body := `{"first_name":"Ama"}`
	var got string
	if err := BodyLimit("1K")(readAllHandler(&got))(bodyContext(body, int64(len(body)))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != body {
		t.Errorf("expected body to reach handler intact, got %q", got)
	}
}

func TestBodyLimit_ExactlyAtLimit(t *testing.T) {
	body := strings.Repeat("a", 1024)
	var got string
	if err := BodyLimit("1K")(readAllHandler(&got))(bodyContext(body, -1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1024 {
		t.Errorf("expected 1024 bytes, got %d", len(got))
	}
}

func TestBodyLimit_RejectsByContentLength(t *testing.T) {
	called := false
	h := BodyLimit("10")(func(c echo.Context) error {
		called = true
		return nil
	})
	expectTooLarge(t, h(bodyContext(strings.Repeat("a", 20), 20)))
	if called {
		t.Error("handler should not run when Content-Length exceeds the limit")
	}
}

func TestBodyLimit_EnforcesLimitDuringRead(t *testing.T) {
	// Unknown length, so only the read path can catch it.
	var got string
	err := BodyLimit("10")(readAllHandler(&got))(bodyContext(strings.Repeat("a", 20), -1))
	expectTooLarge(t, err)
}

func TestBodyLimit_SkipsEmptyBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	if err := BodyLimit("1")(okHandler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
