package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func routeContext(path string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	return c
}

func TestAuthSkipper(t *testing.T) {
	tests := []struct {
		path   string
		public bool
	}{
		{"/health", true},
		{"/health/db", true},
		{"/metrics", true},
		{"/api/v1/auth/login", true},
		{"/api/v1/auth/logout", false},
		{"/api/v1/auth/me", false},
		{"/api/v1/patients", false},
		{"/api/v1/communities", false},
		{"/", false},
		{"/health/extra", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := AuthSkipper(routeContext(tt.path)); got != tt.public {
				t.Errorf("AuthSkipper(%s) = %v, want %v", tt.path, got, tt.public)
			}
			if got := IsPublicPath(tt.path); got != tt.public {
				t.Errorf("IsPublicPath(%s) = %v, want %v", tt.path, got, tt.public)
			}
		})
	}
}

func TestInfraSkipper_LoginNeedsSchema(t *testing.T) {
	if InfraSkipper(routeContext("/api/v1/auth/login")) {
		t.Error("login must not skip the schema middleware")
	}
	if !InfraSkipper(routeContext("/health")) {
		t.Error("expected /health to skip the schema middleware")
	}
}
