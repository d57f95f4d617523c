package consent

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.PUT("/patients/:patientId/consent", h.SetPreference)
	api.GET("/patients/:patientId/consent", h.ListByPatient)
	api.GET("/patients/:patientId/consent/:providerRef", h.GetPreference)
}

func (h *Handler) SetPreference(c echo.Context) error {
	var pref SharingPreference
	if err := c.Bind(&pref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pref.PatientID = c.Param("patientId")
	if err := h.svc.SetPreference(c.Request().Context(), &pref); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pref)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	prefs, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if prefs == nil {
		prefs = []*SharingPreference{}
	}
	return c.JSON(http.StatusOK, prefs)
}

func (h *Handler) GetPreference(c echo.Context) error {
	pref, err := h.svc.GetPreference(c.Request().Context(), c.Param("patientId"), c.Param("providerRef"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if pref == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no sharing preference for provider")
	}
	return c.JSON(http.StatusOK, pref)
}
