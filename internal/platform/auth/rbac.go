package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mch/mch/pkg/permission"
)

// RequirePermission returns middleware that checks the caller holds at least
// one of perms.
func RequirePermission(perms ...permission.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if PermissionsFromContext(c.Request().Context()).HasAny(perms...) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required permission: %s", strings.Join(permission.Strings(perms), " or ")))
		}
	}
}

// RequireSelfOrPermission allows the request when the :id path parameter is
// the caller's own account, or when the caller holds perm.
func RequireSelfOrPermission(perm permission.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if id := AccountIDFromContext(ctx); id != "" && id == c.Param("id") {
				return next(c)
			}
			if PermissionsFromContext(ctx).Has(perm) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, fmt.Sprintf("required permission: %s", perm))
		}
	}
}
