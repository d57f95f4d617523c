package loop

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durvester/referral-loop-closure/internal/domain/encounter"
	"github.com/durvester/referral-loop-closure/internal/platform/fhir"
	"github.com/durvester/referral-loop-closure/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/encounters", h.ProcessEncounter)
	api.GET("/routed-events", h.ListRoutedEvents)
	api.GET("/providers/:providerRef/routed-events", h.ListRoutedEventsByProvider)
}

// encounterResource is the inbound FHIR Encounter shape. Only the fields the
// pipeline consumes are modelled.
type encounterResource struct {
	ResourceType    string           `json:"resourceType"`
	ID              string           `json:"id"`
	Status          string           `json:"status"`
	Subject         *fhir.Reference  `json:"subject,omitempty"`
	ServiceProvider *fhir.Reference  `json:"serviceProvider,omitempty"`
	Participant     []participant    `json:"participant,omitempty"`
	Period          *fhir.Period     `json:"period,omitempty"`
}

type participant struct {
	Individual *fhir.Reference `json:"individual,omitempty"`
}

func (r *encounterResource) toEncounter() *encounter.Encounter {
	e := &encounter.Encounter{
		FHIRID: r.ID,
		Status: r.Status,
	}
	if r.Subject != nil {
		e.PatientID = fhir.ReferenceID(r.Subject.Reference)
	}
	if r.ServiceProvider != nil {
		e.OrganizationRef = r.ServiceProvider.Reference
		e.OrganizationName = r.ServiceProvider.Display
	}
	if len(r.Participant) > 0 && r.Participant[0].Individual != nil {
		ind := r.Participant[0].Individual
		e.PractitionerRef = ind.Reference
		if ind.Identifier != nil {
			e.PractitionerNPI = ind.Identifier.Value
		}
	}
	if r.Period != nil {
		e.PeriodStart = r.Period.Start
		e.PeriodEnd = r.Period.End
	}
	return e
}

func (h *Handler) ProcessEncounter(c echo.Context) error {
	var resource encounterResource
	if err := c.Bind(&resource); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if resource.ResourceType != "" && resource.ResourceType != "Encounter" {
		return echo.NewHTTPError(http.StatusBadRequest, "resourceType must be Encounter")
	}

	result, err := h.svc.ProcessEncounter(c.Request().Context(), resource.toEncounter())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListRoutedEvents(c echo.Context) error {
	p := pagination.FromContext(c)
	events, total, err := h.svc.RoutedEvents(c.Request().Context(), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(events, total, p.Limit, p.Offset))
}

func (h *Handler) ListRoutedEventsByProvider(c echo.Context) error {
	events, err := h.svc.RoutedEventsByProvider(c.Request().Context(), c.Param("providerRef"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if events == nil {
		events = []*RoutedEvent{}
	}
	return c.JSON(http.StatusOK, events)
}
