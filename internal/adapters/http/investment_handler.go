package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/investdesk/core/internal/application/services"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/ports"
)

// InvestmentHandler handles investment-related requests
type InvestmentHandler struct {
	investmentService *services.InvestmentService
	logger            *logger.Logger
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(investmentService *services.InvestmentService, logger *logger.Logger) *InvestmentHandler {
	return &InvestmentHandler{
		investmentService: investmentService,
		logger:            logger,
	}
}

// ListPublicInvestments returns the active catalog for the public site
func (h *InvestmentHandler) ListPublicInvestments(c echo.Context) error {
	investments, err := h.investmentService.ListPublicInvestments(c.Request().Context(), investmentFilterFromQuery(c))
	if err != nil {
		h.logger.Errorw("List public investments failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, investments)
}

// GetPublicInvestment returns a single active investment. Non-active
// entries are hidden from the public surface.
func (h *InvestmentHandler) GetPublicInvestment(c echo.Context) error {
	investment, err := h.investmentService.GetInvestment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapDomainError(err)
	}
	if !investment.IsPublic() {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return c.JSON(http.StatusOK, investment)
}

// ListInvestments returns all investments for the back office
func (h *InvestmentHandler) ListInvestments(c echo.Context) error {
	investments, err := h.investmentService.ListInvestments(c.Request().Context(), investmentFilterFromQuery(c))
	if err != nil {
		h.logger.Errorw("List investments failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, investments)
}

// GetInvestment returns a single investment regardless of status
func (h *InvestmentHandler) GetInvestment(c echo.Context) error {
	investment, err := h.investmentService.GetInvestment(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Warnw("Get investment failed", "error", err, "investment_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, investment)
}

// CreateInvestment handles investment creation
func (h *InvestmentHandler) CreateInvestment(c echo.Context) error {
	var req ports.CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.CreateInvestment(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create investment failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, investment)
}

// UpdateInvestment handles partial investment updates
func (h *InvestmentHandler) UpdateInvestment(c echo.Context) error {
	var req ports.UpdateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.UpdateInvestment(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Errorw("Update investment failed", "error", err, "investment_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, investment)
}

// DeleteInvestment handles investment deletion
func (h *InvestmentHandler) DeleteInvestment(c echo.Context) error {
	if err := h.investmentService.DeleteInvestment(c.Request().Context(), c.Param("id")); err != nil {
		h.logger.Errorw("Delete investment failed", "error", err, "investment_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Investment deleted"})
}

// SubmitInvestment handles editor submissions that enter the review queue
func (h *InvestmentHandler) SubmitInvestment(c echo.Context) error {
	var req ports.CreateInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.SubmitInvestment(c.Request().Context(), req, getUserEmailFromContext(c))
	if err != nil {
		h.logger.Errorw("Submit investment failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusCreated, investment)
}

// ReviewInvestment handles an admin approving or rejecting a submission
func (h *InvestmentHandler) ReviewInvestment(c echo.Context) error {
	var req ports.ReviewInvestmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	investment, err := h.investmentService.ReviewInvestment(c.Request().Context(), c.Param("id"), req, getUserEmailFromContext(c))
	if err != nil {
		h.logger.Errorw("Review investment failed", "error", err, "investment_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, investment)
}

// investmentFilterFromQuery builds a list filter from optional query
// parameters. Absent parameters leave the field nil.
func investmentFilterFromQuery(c echo.Context) ports.InvestmentFilter {
	var filter ports.InvestmentFilter
	if v := c.QueryParam("status"); v != "" {
		status := entities.InvestmentStatus(v)
		filter.Status = &status
	}
	if v := c.QueryParam("category"); v != "" {
		filter.Category = &v
	}
	if v := c.QueryParam("risk"); v != "" {
		risk := entities.RiskLevel(v)
		filter.Risk = &risk
	}
	return filter
}
