package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/investdesk/core/internal/application/services"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/ports"
)

// LeadHandler handles lead-related requests
type LeadHandler struct {
	leadService *services.LeadService
	logger      *logger.Logger
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *services.LeadService, logger *logger.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// CreateLead handles the public contact form submission
func (h *LeadHandler) CreateLead(c echo.Context) error {
	var req ports.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lead, err := h.leadService.CreateLead(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create lead failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, lead)
}

// ListLeads returns leads for the back office, optionally filtered
func (h *LeadHandler) ListLeads(c echo.Context) error {
	var filter ports.LeadFilter
	if v := c.QueryParam("status"); v != "" {
		status := entities.LeadStatus(v)
		filter.Status = &status
	}
	if v := c.QueryParam("interest"); v != "" {
		filter.InvestmentInterest = &v
	}

	leads, err := h.leadService.ListLeads(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List leads failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, leads)
}

// GetLead returns a single lead by ID
func (h *LeadHandler) GetLead(c echo.Context) error {
	lead, err := h.leadService.GetLead(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Warnw("Get lead failed", "error", err, "lead_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, lead)
}

// UpdateLeadStatus moves a lead through the pipeline
func (h *LeadHandler) UpdateLeadStatus(c echo.Context) error {
	var req ports.UpdateLeadStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	lead, err := h.leadService.UpdateLeadStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		h.logger.Errorw("Update lead status failed", "error", err, "lead_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, lead)
}

// DeleteLead handles lead deletion
func (h *LeadHandler) DeleteLead(c echo.Context) error {
	if err := h.leadService.DeleteLead(c.Request().Context(), c.Param("id")); err != nil {
		h.logger.Errorw("Delete lead failed", "error", err, "lead_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Lead deleted"})
}
