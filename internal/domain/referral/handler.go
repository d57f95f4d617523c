package referral

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/durvester/referral-loop-closure/internal/domain/tracking"
	"github.com/durvester/referral-loop-closure/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/referrals", h.CreateReferral)
	api.GET("/referrals", h.ListReferrals)
	api.GET("/referrals/:id", h.GetReferral)
	api.GET("/referrals/:id/fhir", h.GetReferralFHIR)
	api.GET("/patients/:patientId/referrals", h.ListByPatient)
	api.GET("/patients/:patientId/referrals/open", h.ListOpenByPatient)
}

type createReferralResponse struct {
	Referral *Referral      `json:"referral"`
	Task     *tracking.Task `json:"task"`
}

func (h *Handler) CreateReferral(c echo.Context) error {
	var in CreateReferralInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ref, task, err := h.svc.CreateReferral(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, createReferralResponse{Referral: ref, Task: task})
}

func (h *Handler) ListReferrals(c echo.Context) error {
	p := pagination.FromContext(c)
	refs, total, err := h.svc.ListReferrals(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(refs, total, p.Limit, p.Offset))
}

func (h *Handler) GetReferral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ref, err := h.svc.GetReferral(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "referral not found")
	}
	return c.JSON(http.StatusOK, ref)
}

func (h *Handler) GetReferralFHIR(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ref, err := h.svc.GetReferral(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "referral not found")
	}
	return c.JSON(http.StatusOK, ref.ToFHIR())
}

func (h *Handler) ListByPatient(c echo.Context) error {
	refs, err := h.svc.ListByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if refs == nil {
		refs = []*Referral{}
	}
	return c.JSON(http.StatusOK, refs)
}

func (h *Handler) ListOpenByPatient(c echo.Context) error {
	open, err := h.svc.ListOpenByPatient(c.Request().Context(), c.Param("patientId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, open)
}
