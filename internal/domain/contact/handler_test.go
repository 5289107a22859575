package contact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type unreachableRepo struct{ *mockRepo }

func (unreachableRepo) GetByID(context.Context, uuid.UUID) (*Contact, error) {
	return nil, errors.New("dial tcp: connection refused")
}

func getContext(id string) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestHandler_Create(t *testing.T) {
	svc, repo := newTestService(t)
	h := NewHandler(svc)
	body := `{"name":"Esi Boateng","role":"Midwife","region":"Upper West","district":"Wa West","subdistrict":"Jirapa","community":"Tizza"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.Create(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(repo.contacts) != 1 {
		t.Errorf("expected one stored contact, got %d", len(repo.contacts))
	}
}

func TestHandler_List(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)
	for _, name := range []string{"Jirapa CHPS", "Ho Teaching Hospital"} {
		if err := svc.Create(context.Background(), &Contact{Name: name}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/?search=chps", nil), rec)
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) || !strings.Contains(rec.Body.String(), "Jirapa CHPS") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Get(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewHandler(svc)
	ct := &Contact{Name: "Ho Teaching Hospital", Region: strPtr("Volta")}
	if err := svc.Create(context.Background(), ct); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c, rec := getContext(ct.ID.String())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Ho Teaching Hospital") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_Get_Errors(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name string
		h    *Handler
		id   string
		code int
	}{
		{"bad id", NewHandler(svc), "nope", http.StatusBadRequest},
		{"missing", NewHandler(svc), uuid.NewString(), http.StatusNotFound},
		{"store down", NewHandler(NewService(unreachableRepo{newMockRepo()}, nil)), uuid.NewString(), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := getContext(tt.id)
			err := tt.h.Get(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != tt.code {
				t.Fatalf("expected %d, got %v", tt.code, err)
			}
		})
	}
}

func TestHandler_Create_InvalidChain(t *testing.T) {
	svc, repo := newTestService(t)
	h := NewHandler(svc)
	body := `{"name":"Ho Clinic","region":"Volta","district":"Wa West"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	err := h.Create(echo.New().NewContext(req, httptest.NewRecorder()))
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if len(repo.contacts) != 0 {
		t.Errorf("expected nothing stored, got %d", len(repo.contacts))
	}
}
