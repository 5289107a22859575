package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/pkg/permission"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/dashboard/aggregates", h.Aggregates, auth.RequirePermission(permission.DashboardView))
}

func (h *Handler) Aggregates(c echo.Context) error {
	a, err := h.svc.Aggregates(c.Request().Context())
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, a)
}
