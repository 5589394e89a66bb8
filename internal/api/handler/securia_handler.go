package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/api/metrics"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

type SecuriaHandler struct {
	securia ports.SecuriaService
}

func NewSecuriaHandler(securia ports.SecuriaService) *SecuriaHandler {
	return &SecuriaHandler{securia: securia}
}

type securiaLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type securiaLoginResponse struct {
	SessionID string `json:"session_id"`
}

type securiaClientRequest struct {
	ConsultantID string `json:"consultant_id"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name"  validate:"required"`
	Email        string `json:"email"      validate:"omitempty,email"`
	Phone        string `json:"phone"`
	SSN          string `json:"ssn"        validate:"required"`
	Status       string `json:"status"     validate:"omitempty,oneof=Active Inactive"`
}

type securiaConsultantRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Status    string `json:"status"     validate:"omitempty,oneof=Active Inactive"`
}

// Login re-authenticates an Admin with their password and opens a Securia
// session layered on top of the JWT.
func (h *SecuriaHandler) Login(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req securiaLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sessionID, err := h.securia.Reauthenticate(c.Request().Context(), actor, req.Password, requestMeta(c))
	if err != nil {
		return err
	}

	metrics.SecuriaSessionsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, securiaLoginResponse{SessionID: sessionID})
}

// Logout invalidates every Securia session the actor holds.
func (h *SecuriaHandler) Logout(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.securia.Logout(c.Request().Context(), actor, requestMeta(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SecuriaHandler) CreateClient(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req securiaClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.securia.CreateClient(c.Request().Context(), actor, ports.SecuriaClientInput{
		ConsultantID: req.ConsultantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		SSN:          req.SSN,
		Status:       req.Status,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClient returns a single Securia client with the SSN decrypted. The
// read itself is audited.
func (h *SecuriaHandler) GetClient(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	client, err := h.securia.GetClient(c.Request().Context(), actor, c.Param("id"), requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

// ListClients returns Securia clients with masked SSNs.
func (h *SecuriaHandler) ListClients(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	clients, total, err := h.securia.ListClients(c.Request().Context(), actor, page, limit, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEnvelope{Data: clients, Total: total, Page: page, Limit: limit})
}

func (h *SecuriaHandler) UpdateClient(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req securiaClientRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	client, err := h.securia.UpdateClient(c.Request().Context(), actor, c.Param("id"), ports.SecuriaClientInput{
		ConsultantID: req.ConsultantID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		SSN:          req.SSN,
		Status:       req.Status,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, client)
}

func (h *SecuriaHandler) DeleteClient(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.securia.DeleteClient(c.Request().Context(), actor, c.Param("id"), requestMeta(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SecuriaHandler) CreateConsultant(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req securiaConsultantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultant, err := h.securia.CreateConsultant(c.Request().Context(), actor, ports.SecuriaConsultantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    req.Status,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, consultant)
}

func (h *SecuriaHandler) GetConsultant(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	consultant, err := h.securia.GetConsultant(c.Request().Context(), actor, c.Param("id"), requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consultant)
}

func (h *SecuriaHandler) ListConsultants(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	page, limit := pageQuery(c)
	consultants, total, err := h.securia.ListConsultants(c.Request().Context(), actor, page, limit, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEnvelope{Data: consultants, Total: total, Page: page, Limit: limit})
}

func (h *SecuriaHandler) UpdateConsultant(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req securiaConsultantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultant, err := h.securia.UpdateConsultant(c.Request().Context(), actor, c.Param("id"), ports.SecuriaConsultantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    req.Status,
	}, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consultant)
}

func (h *SecuriaHandler) DeleteConsultant(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.securia.DeleteConsultant(c.Request().Context(), actor, c.Param("id"), requestMeta(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAudit exposes the append-only audit trail with optional filters.
func (h *SecuriaHandler) ListAudit(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	page, limit := pageQuery(c)
	filter := ports.ListAuditFilter{
		Actor:    c.QueryParam("actor"),
		Resource: c.QueryParam("resource"),
		Page:     page,
		Limit:    limit,
	}
	if s := c.QueryParam("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC 3339")
		}
		filter.From = t
	}
	if s := c.QueryParam("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC 3339")
		}
		filter.To = t
	}

	records, total, err := h.securia.ListAudit(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEnvelope{Data: records, Total: total, Page: page, Limit: limit})
}
