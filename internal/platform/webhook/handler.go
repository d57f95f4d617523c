package webhook

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durvester/referral-loop-closure/pkg/pagination"
)

// Handler exposes webhook endpoint management.
type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/webhooks", h.RegisterEndpoint)
	api.GET("/webhooks", h.ListEndpoints)
	api.GET("/webhooks/:id/deliveries", h.GetDeliveryLogs)
	api.POST("/webhooks/deliveries/:deliveryId/retry", h.RetryDelivery)
}

type registerEndpointRequest struct {
	URL        string   `json:"url"`
	Secret     string   `json:"secret,omitempty"`
	Subscriber string   `json:"subscriber"`
	Events     []string `json:"events,omitempty"`
}

func (h *Handler) RegisterEndpoint(c echo.Context) error {
	var req registerEndpointRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ep, err := h.manager.RegisterEndpoint(c.Request().Context(), req.URL, req.Secret, req.Subscriber, req.Events)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ep)
}

func (h *Handler) ListEndpoints(c echo.Context) error {
	p := pagination.FromContext(c)
	endpoints, total, err := h.manager.ListEndpoints(c.Request().Context(), c.QueryParam("subscriber"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(endpoints, total, p.Limit, p.Offset))
}

func (h *Handler) GetDeliveryLogs(c echo.Context) error {
	p := pagination.FromContext(c)
	logs, total, err := h.manager.GetDeliveryLogs(c.Request().Context(), c.Param("id"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(logs, total, p.Limit, p.Offset))
}

func (h *Handler) RetryDelivery(c echo.Context) error {
	attempt, err := h.manager.RetryDelivery(c.Request().Context(), c.Param("deliveryId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, attempt)
}
