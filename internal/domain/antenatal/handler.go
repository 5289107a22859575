package antenatal

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
	read := api.Group("", auth.RequirePermission(permission.AntenatalRead))
	read.GET("/antenatal-registrations", h.ListRegistrations)
	read.GET("/antenatal-registrations/:id", h.GetRegistration)
	read.GET("/antenatal-registrations/:id/visits", h.ListVisits)
	read.GET("/antenatal-visits/:id", h.GetVisit)
	read.GET("/patients/:id/antenatal-registration", h.GetPatientRegistration)
	read.GET("/patients/:id/anc-progress", h.Progress)

	write := api.Group("", auth.RequirePermission(permission.AntenatalWrite))
	write.POST("/antenatal-registrations", h.CreateRegistration)
	write.PUT("/antenatal-registrations/:id", h.UpdateRegistration)
	write.DELETE("/antenatal-registrations/:id", h.DeleteRegistration)
	write.POST("/antenatal-registrations/:id/visits", h.CreateVisit)
	write.PUT("/antenatal-visits/:id", h.UpdateVisit)
	write.DELETE("/antenatal-visits/:id", h.DeleteVisit)
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Registration --

func (h *Handler) CreateRegistration(c echo.Context) error {
	var g Registration
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRegistration(c.Request().Context(), &g); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) GetRegistration(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	g, err := h.svc.GetRegistration(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, g)
}

// GetPatientRegistration answers 404 when the patient has no registration
// yet; clients treat that as "not registered", not as a failure.
func (h *Handler) GetPatientRegistration(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	g, err := h.svc.RegistrationForPatient(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) ListRegistrations(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRegistrations(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return apierr.HTTP(err)
	}
	if items == nil {
		items = []*Registration{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateRegistration(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var g Registration
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g.ID = id
	if err := h.svc.UpdateRegistration(c.Request().Context(), &g); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteRegistration(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRegistration(c.Request().Context(), id); err != nil {
		return apierr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Progress(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Progress(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

// -- Visit --

func (h *Handler) CreateVisit(c echo.Context) error {
	registrationID, err := pathID(c)
	if err != nil {
		return err
	}
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.RegistrationID = registrationID
	if err := h.svc.CreateVisit(c.Request().Context(), &v); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusCreated, v)
}

// ListVisits returns the visits as a plain array ordered by visit number.
func (h *Handler) ListVisits(c echo.Context) error {
	registrationID, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListVisits(c.Request().Context(), registrationID)
	if err != nil {
		return apierr.HTTP(err)
	}
	if items == nil {
		items = []*Visit{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetVisit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.GetVisit(c.Request().Context(), id)
	if err != nil {
		return apierr.HTTPLookup(err, "antenatal visit")
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) UpdateVisit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var v Visit
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.ID = id
	if err := h.svc.UpdateVisit(c.Request().Context(), &v); err != nil {
		return apierr.HTTP(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVisit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVisit(c.Request().Context(), id); err != nil {
		return apierr.HTTP(err)
	}
	return c.NoContent(http.StatusNoContent)
}
