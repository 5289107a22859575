package feedback

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type brokenRepo struct{ mockRepo }

func (*brokenRepo) Create(context.Context, *Feedback) error {
	return errors.New("connection reset by peer")
}

func submitContext(body string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestHandler_SubmitAndList(t *testing.T) {
	repo := &mockRepo{}
	h := NewHandler(NewService(repo, zerolog.Nop()))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"subject":"Bug","message":"Crash on save","category":"BUG"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h.Submit(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	if err := h.List(echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/?category=bug", nil), rec)); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Submit_Errors(t *testing.T) {
	tests := []struct {
		name string
		repo Repository
		body string
		code int
	}{
		{"malformed", &mockRepo{}, `{"subject":`, http.StatusBadRequest},
		{"bad category", &mockRepo{}, `{"subject":"Hi","message":"Thanks","category":"praise"}`, http.StatusBadRequest},
		{"store down", &brokenRepo{}, `{"subject":"Hi","message":"Thanks"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(NewService(tt.repo, zerolog.Nop()))
			err := h.Submit(submitContext(tt.body))
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.code {
				t.Fatalf("expected %d, got %v", tt.code, err)
			}
		})
	}
}
