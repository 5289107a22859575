package feedback

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/pkg/pagination"
	"github.com/mch/mch/pkg/permission"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/feedback", h.Submit, auth.RequirePermission(permission.FeedbackSubmit))
	api.GET("/feedback", h.List, auth.RequirePermission(permission.FeedbackRead))
}

func (h *Handler) Submit(c echo.Context) error {
	var f Feedback
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Submit(c.Request().Context(), &f); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), Filter{Category: c.QueryParam("category")}, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.HTTP(err)
	}
	if items == nil {
		items = []*Feedback{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
