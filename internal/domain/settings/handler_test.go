package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type unreachableRepo struct{ mockRepo }

func (*unreachableRepo) Get(context.Context) (*Settings, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func TestHandler_Get_Defaults(t *testing.T) {
	svc, _ := newTestService()
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := NewHandler(svc).Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"idle_timeout_minutes":30`) {
		t.Errorf("expected default idle timeout, got %s", rec.Body.String())
	}
}

func TestHandler_Get_StoreFailure(t *testing.T) {
	h := NewHandler(NewService(&unreachableRepo{}, nil))
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestHandler_Update(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"default_region":"Upper West","idle_timeout_minutes":45}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Update(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"idle_timeout_minutes":45`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"idle_timeout_minutes":-1}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	err := h.Update(echo.New().NewContext(req, rec))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Update_DistrictOutsideRegion(t *testing.T) {
	svc, repo := newTestService()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"default_region":"Volta","default_district":"Wa West","idle_timeout_minutes":30}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := NewHandler(svc).Update(echo.New().NewContext(req, httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if repo.current != nil {
		t.Error("expected nothing saved")
	}
}
