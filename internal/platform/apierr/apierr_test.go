package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"

	"github.com/mch/mch/internal/platform/validate"
	"github.com/mch/mch/pkg/geo"
)

func statusOf(t *testing.T, err error) (int, string) {
	t.Helper()
	he, ok := HTTP(err).(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", HTTP(err))
	}
	msg, _ := he.Message.(string)
	return he.Code, msg
}

func TestHTTP_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"invalid", Invalid("quantity must be >= %d", 1), http.StatusBadRequest, "quantity must be >= 1"},
		{"not found", NotFound("patient"), http.StatusNotFound, "patient not found"},
		{"wrapped not found", fmt.Errorf("get: %w", NotFound("visit")), http.StatusNotFound, "visit not found"},
		{"no rows", fmt.Errorf("get: %w", pgx.ErrNoRows), http.StatusNotFound, "not found"},
		{"unique", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "record already exists"},
		{"foreign key", &pgconn.PgError{Code: "23503"}, http.StatusBadRequest, "referenced record does not exist"},
		{"chain", &geo.ChainError{Tier: geo.TierDistrict, Value: "Nowhere"}, http.StatusBadRequest, ""},
		{"validation", &validate.Error{Fields: map[string]string{"name": "is required"}}, http.StatusBadRequest, "name is required"},
		{"forbidden", Forbidden("nope"), http.StatusForbidden, "nope"},
		{"unauthorized", Unauthorized("bad credentials"), http.StatusUnauthorized, "bad credentials"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusOf(t, tt.err)
			if status != tt.status {
				t.Errorf("expected %d, got %d", tt.status, status)
			}
			if tt.msg != "" && msg != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, msg)
			}
		})
	}
}

func TestHTTP_ConflictMessageWins(t *testing.T) {
	err := Wrap(KindConflict, "username already taken", &pgconn.PgError{Code: "23505"})
	status, msg := statusOf(t, err)
	if status != http.StatusConflict || msg != "username already taken" {
		t.Errorf("unexpected %d %q", status, msg)
	}
}

func TestHTTP_InternalKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	he := HTTP(cause).(*echo.HTTPError)
	if !errors.Is(he.Internal, cause) {
		t.Error("expected cause to be kept as internal error")
	}
}

func TestHTTP_Nil(t *testing.T) {
	if HTTP(nil) != nil {
		t.Error("expected nil")
	}
}

func TestHTTPLookup(t *testing.T) {
	he, ok := HTTPLookup(fmt.Errorf("get patient: %w", pgx.ErrNoRows), "patient").(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound || he.Message != "patient not found" {
		t.Errorf("expected 404 patient not found, got %v", he)
	}

	he, ok = HTTPLookup(errors.New("dial tcp: connection refused"), "patient").(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a connection failure, got %v", he)
	}

	he, ok = HTTPLookup(Forbidden("not yours"), "patient").(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Errorf("expected 403 to pass through, got %v", he)
	}
}
