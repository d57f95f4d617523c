package encounter

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durvester/referral-loop-closure/pkg/pagination"
)

// Handler exposes read access to stored encounters. Intake goes through the
// loop pipeline, not here.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/encounters", h.ListEncounters)
	api.GET("/encounters/:id", h.GetEncounter)
	api.GET("/patients/:patientId/encounters", h.ListByPatient)
}

func (h *Handler) ListEncounters(c echo.Context) error {
	p := pagination.FromContext(c)
	encounters, total, err := h.svc.List(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(encounters, total, p.Limit, p.Offset))
}

func (h *Handler) GetEncounter(c echo.Context) error {
	e, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "encounter not found")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	encounters, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if encounters == nil {
		encounters = []*Encounter{}
	}
	return c.JSON(http.StatusOK, encounters)
}
