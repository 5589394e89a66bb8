package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fieldstone/crm-system/internal/core/ports"
)

type ConsultantHandler struct {
	consultants ports.ConsultantService
}

func NewConsultantHandler(consultants ports.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{consultants: consultants}
}

type consultantRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Email     string `json:"email"      validate:"omitempty,email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"      validate:"omitempty,len=2"`
	ZipCode   string `json:"zip_code"`
	Status    string `json:"status"     validate:"omitempty,oneof=Active Inactive"`
}

func (r consultantRequest) toInput() ports.ConsultantInput {
	return ports.ConsultantInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		ZipCode:   r.ZipCode,
		Status:    r.Status,
	}
}

func (h *ConsultantHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req consultantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultant, err := h.consultants.Create(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, consultant)
}

func (h *ConsultantHandler) Get(c echo.Context) error {
	consultant, err := h.consultants.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consultant)
}

func (h *ConsultantHandler) List(c echo.Context) error {
	page, limit := pageQuery(c)
	consultants, total, err := h.consultants.List(c.Request().Context(), ports.ListConsultantsFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listEnvelope{Data: consultants, Total: total, Page: page, Limit: limit})
}

func (h *ConsultantHandler) Update(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req consultantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	consultant, err := h.consultants.Update(c.Request().Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consultant)
}

func (h *ConsultantHandler) ToggleStatus(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	consultant, err := h.consultants.ToggleStatus(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, consultant)
}

func (h *ConsultantHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.consultants.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
