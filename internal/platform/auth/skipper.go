package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists route paths that bypass authentication and the schema
// connection middleware.
var publicPaths = map[string]bool{
	"/health":            true,
	"/health/db":         true,
	"/metrics":           true,
	"/api/v1/auth/login": true,
}

// AuthSkipper returns true for requests whose route should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path is public.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

// InfraSkipper skips the infrastructure endpoints that never touch the
// schema, unlike login which does.
func InfraSkipper(c echo.Context) bool {
	return publicPaths[c.Path()] && c.Path() != "/api/v1/auth/login"
}
