package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/api/metrics"
	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

type ClientHandler struct {
	clients ports.ClientService
}

func NewClientHandler(clients ports.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Create builds the whole client aggregate in one transaction.
//
// @Summary      Create a client aggregate
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      createClientRequest  true  "Client intake payload"
// @Success      201   {object}  domain.ClientAggregate
// @Failure      400   {object}  map[string]string
// @Router       /api/clients [post]
func (h *ClientHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agg, err := h.clients.Create(c.Request().Context(), actor, toCreateClientInput(req))
	if err != nil {
		return err
	}

	metrics.ClientAggregatesTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, agg)
}

// Get returns the populated aggregate by id or client code.
func (h *ClientHandler) Get(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	agg, err := h.clients.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agg)
}

// List returns paginated client summaries. Non-admin actors only see
// clients belonging to their consultant id.
func (h *ClientHandler) List(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	page, limit := pageQuery(c)
	clients, total, err := h.clients.List(c.Request().Context(), actor, ports.ListClientsFilter{
		ConsultantID: c.QueryParam("consultant_id"),
		Status:       c.QueryParam("status"),
		Search:       c.QueryParam("search"),
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEnvelope{Data: clients, Total: total, Page: page, Limit: limit})
}

// Update patches the aggregate in one transaction.
func (h *ClientHandler) Update(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agg, err := h.clients.Update(c.Request().Context(), actor, c.Param("id"), toUpdateClientInput(req))
	if err != nil {
		return err
	}

	metrics.ClientAggregatesTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, agg)
}

// Delete removes the root and every child document in one transaction.
func (h *ClientHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.clients.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	metrics.ClientAggregatesTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}

// Liabilities returns just the liability section of the aggregate.
func (h *ClientHandler) Liabilities(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	agg, err := h.clients.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	if agg.Liabilities == nil {
		return c.JSON(http.StatusOK, []domain.Liability{})
	}
	return c.JSON(http.StatusOK, agg.Liabilities)
}

// Underwriting returns just the underwriting section of the aggregate.
func (h *ClientHandler) Underwriting(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	agg, err := h.clients.Get(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agg.Underwriting)
}

// UpdateUnderwriting upserts the underwriting section only.
func (h *ClientHandler) UpdateUnderwriting(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateUnderwritingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agg, err := h.clients.Update(c.Request().Context(), actor, c.Param("id"), ports.UpdateClientInput{
		Underwriting: toUnderwritingInput(&req.Underwriting),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, agg.Underwriting)
}
