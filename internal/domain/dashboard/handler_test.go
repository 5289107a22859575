package dashboard

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandler_Aggregates(t *testing.T) {
	repo := &stubRepo{agg: &Aggregates{
		Patients:         3,
		PatientsByRegion: []RegionCount{{Region: "Volta", Count: 2}, {Region: "Upper West", Count: 1}},
	}}
	h := NewHandler(newTestService(repo))

	rec := httptest.NewRecorder()
	if err := h.Aggregates(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{`"patients":3`, `{"region":"Volta","count":2}`, `{"kit_type":"mama_kit","quantity":0}`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in %s", want, body)
		}
	}
}

func TestHandler_Aggregates_StoreFailure(t *testing.T) {
	h := NewHandler(newTestService(&stubRepo{err: errors.New("connection reset")}))

	err := h.Aggregates(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
	if httpErr.Message != "internal server error" {
		t.Errorf("expected a generic message, got %v", httpErr.Message)
	}
}
