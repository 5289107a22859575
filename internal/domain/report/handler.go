package report

import (
	"fmt"
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
	g := api.Group("/reports", auth.RequirePermission(permission.ReportsView))
	g.GET("/data-capture", h.DataCapture)
}

// DataCapture answers with JSON, or a workbook when format=xlsx.
func (h *Handler) DataCapture(c echo.Context) error {
	q := Query{From: c.QueryParam("from"), To: c.QueryParam("to")}
	rep, err := h.svc.DataCapture(c.Request().Context(), q)
	if err != nil {
		return apierr.HTTP(err)
	}

	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, rep)
	case "xlsx":
		data, err := rep.XLSX()
		if err != nil {
			return apierr.HTTP(fmt.Errorf("render report: %w", err))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", rep.FileName()))
		return c.Blob(http.StatusOK, XLSXContentType, data)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or xlsx")
	}
}
