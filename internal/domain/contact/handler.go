package contact

import (
	"net/http"

	"github.com/google/uuid"
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
	read := api.Group("", auth.RequirePermission(permission.ContactsRead))
	read.GET("/contacts", h.List)
	read.GET("/contacts/:id", h.Get)

	write := api.Group("", auth.RequirePermission(permission.ContactsWrite))
	write.POST("/contacts", h.Create)
	write.PUT("/contacts/:id", h.Update)
	write.DELETE("/contacts/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := Filter{
		Search:   c.QueryParam("search"),
		Region:   c.QueryParam("region"),
		District: c.QueryParam("district"),
	}
	items, total, err := h.svc.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return apierr.HTTP(err)
	}
	if items == nil {
		items = []*Contact{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ct, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTPLookup(err, "contact")
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *Handler) Create(c echo.Context) error {
	var ct Contact
	if err := c.Bind(&ct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &ct); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, ct)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ct Contact
	if err := c.Bind(&ct); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ct.ID = id
	if err := h.svc.Update(c.Request().Context(), &ct); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apierr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
