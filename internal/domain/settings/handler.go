package settings

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

// RegisterRoutes exposes settings to every signed-in user; only
// settings managers may change them.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/settings", h.Get)
	api.PUT("/settings", h.Update, auth.RequirePermission(permission.SettingsManage))
}

func (h *Handler) Get(c echo.Context) error {
	st, err := h.svc.Get(c.Request().Context())
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Update(c echo.Context) error {
	var st Settings
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Update(c.Request().Context(), &st); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, st)
}
