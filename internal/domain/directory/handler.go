package directory

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durvester/referral-loop-closure/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.PUT("/directory/organizations/:id", h.UpsertOrganization)
	api.GET("/directory/organizations/:id", h.GetOrganization)
	api.GET("/directory/organizations", h.ListOrganizations)
	api.PUT("/directory/practitioners/:id", h.UpsertPractitioner)
	api.GET("/directory/practitioners/:id", h.GetPractitioner)
	api.GET("/directory/practitioners", h.ListPractitioners)
}

func (h *Handler) UpsertOrganization(c echo.Context) error {
	var org Organization
	if err := c.Bind(&org); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	org.Ref = "Organization/" + c.Param("id")
	if err := h.svc.UpsertOrganization(c.Request().Context(), &org); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, org)
}

func (h *Handler) GetOrganization(c echo.Context) error {
	org, err := h.svc.GetOrganization(c.Request().Context(), "Organization/"+c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "organization not found")
	}
	return c.JSON(http.StatusOK, org)
}

func (h *Handler) ListOrganizations(c echo.Context) error {
	p := pagination.FromContext(c)
	orgs, total, err := h.svc.ListOrganizations(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(orgs, total, p.Limit, p.Offset))
}

func (h *Handler) UpsertPractitioner(c echo.Context) error {
	var pr Practitioner
	if err := c.Bind(&pr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pr.Ref = "Practitioner/" + c.Param("id")
	if err := h.svc.UpsertPractitioner(c.Request().Context(), &pr); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) GetPractitioner(c echo.Context) error {
	pr, err := h.svc.GetPractitioner(c.Request().Context(), "Practitioner/"+c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "practitioner not found")
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) ListPractitioners(c echo.Context) error {
	p := pagination.FromContext(c)
	prs, total, err := h.svc.ListPractitioners(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(prs, total, p.Limit, p.Offset))
}
