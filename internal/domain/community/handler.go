package community

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mch/mch/internal/platform/apierr"
	"github.com/mch/mch/internal/platform/auth"
	"github.com/mch/mch/pkg/geo"
	"github.com/mch/mch/pkg/permission"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequirePermission(permission.CommunitiesRead))
	read.GET("/communities", h.List)
	read.GET("/communities/options", h.Options)
	read.GET("/communities/:id", h.Get)

	manage := api.Group("", auth.RequirePermission(permission.CommunitiesManage))
	manage.POST("/communities", h.Create)
	manage.POST("/communities/import", h.Import)
	manage.PUT("/communities/:id", h.Update)
	manage.DELETE("/communities/:id", h.Delete)
}

// List returns the full community list as a plain array; clients build
// their cascades from it.
func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apierr.HTTP(err)
	}
	if items == nil {
		items = []*Community{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Options(c echo.Context) error {
	sel := geo.Selection{
		Region:      c.QueryParam("region"),
		District:    c.QueryParam("district"),
		Subdistrict: c.QueryParam("subdistrict"),
	}
	opts, err := h.svc.Options(c.Request().Context(), sel)
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, opts)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	item, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTPLookup(err, "community")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) Create(c echo.Context) error {
	var item Community
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &item); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item Community
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item.ID = id
	if err := h.svc.Update(c.Request().Context(), &item); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, item)
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

// Import takes a CSV body with region, district, subdistrict and
// community_name columns.
func (h *Handler) Import(c echo.Context) error {
	records, err := ParseCSV(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Import(c.Request().Context(), records)
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"read": len(records), "inserted": n})
}
