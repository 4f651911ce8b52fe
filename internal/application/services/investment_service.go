package services

import (
	"context"
	"fmt"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/ports"
)

// InvestmentService handles investment catalog operations
type InvestmentService struct {
	investmentRepo ports.InvestmentRepository
	logger         *logger.Logger
}

// NewInvestmentService creates a new investment service
func NewInvestmentService(investmentRepo ports.InvestmentRepository, logger *logger.Logger) *InvestmentService {
	return &InvestmentService{
		investmentRepo: investmentRepo,
		logger:         logger,
	}
}

// CreateInvestment validates and creates a catalog entry
func (s *InvestmentService) CreateInvestment(ctx context.Context, req ports.CreateInvestmentRequest) (*entities.Investment, error) {
	if !req.Risk.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidRisk, req.Risk)
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidStatus, req.Status)
	}

	inv := &entities.Investment{
		ID:                  req.ID,
		Title:               req.Title,
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		ExpectedReturn:      req.ExpectedReturn,
		MinimumInvestment:   req.MinimumInvestment,
		Category:            req.Category,
		Risk:                req.Risk,
		Status:              req.Status,
		Images:              req.Images,
		MainImageID:         req.MainImageID,
	}
	return s.investmentRepo.Create(ctx, inv)
}

// GetInvestment retrieves an investment by id
func (s *InvestmentService) GetInvestment(ctx context.Context, id string) (*entities.Investment, error) {
	return s.investmentRepo.GetByID(ctx, id)
}

// ListInvestments lists catalog entries for the back office
func (s *InvestmentService) ListInvestments(ctx context.Context, filter ports.InvestmentFilter) ([]entities.Investment, error) {
	return s.investmentRepo.List(ctx, filter)
}

// ListPublicInvestments lists the entries shown on the marketing site:
// Active status only.
func (s *InvestmentService) ListPublicInvestments(ctx context.Context, filter ports.InvestmentFilter) ([]entities.Investment, error) {
	status := entities.InvestmentStatusActive
	filter.Status = &status
	return s.investmentRepo.List(ctx, filter)
}

// UpdateInvestment applies a partial update. Submission and review metadata
// cannot be changed through this path; only Submit and Review touch them.
func (s *InvestmentService) UpdateInvestment(ctx context.Context, id string, req ports.UpdateInvestmentRequest) (*entities.Investment, error) {
	if req.Risk != nil && !req.Risk.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidRisk, *req.Risk)
	}
	if req.Status != nil && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidStatus, *req.Status)
	}

	upd := ports.InvestmentUpdate{
		Title:               req.Title,
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		ExpectedReturn:      req.ExpectedReturn,
		MinimumInvestment:   req.MinimumInvestment,
		Category:            req.Category,
		Risk:                req.Risk,
		Status:              req.Status,
		Images:              req.Images,
		MainImageID:         req.MainImageID,
	}
	return s.investmentRepo.Update(ctx, id, upd)
}

// DeleteInvestment removes an investment by id
func (s *InvestmentService) DeleteInvestment(ctx context.Context, id string) error {
	return s.investmentRepo.Delete(ctx, id)
}

// SubmitInvestment creates an entry on behalf of a contributor; submission
// metadata and Pending status are forced by the repository.
func (s *InvestmentService) SubmitInvestment(ctx context.Context, req ports.CreateInvestmentRequest, submitterEmail string) (*entities.Investment, error) {
	if !req.Risk.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidRisk, req.Risk)
	}

	inv := &entities.Investment{
		ID:                  req.ID,
		Title:               req.Title,
		Description:         req.Description,
		DetailedDescription: req.DetailedDescription,
		ExpectedReturn:      req.ExpectedReturn,
		MinimumInvestment:   req.MinimumInvestment,
		Category:            req.Category,
		Risk:                req.Risk,
		Images:              req.Images,
		MainImageID:         req.MainImageID,
	}
	return s.investmentRepo.Submit(ctx, inv, submitterEmail)
}

// ReviewInvestment records a review decision for a pending entry
func (s *InvestmentService) ReviewInvestment(ctx context.Context, id string, req ports.ReviewInvestmentRequest, reviewerEmail string) (*entities.Investment, error) {
	if !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidStatus, req.Status)
	}
	return s.investmentRepo.Review(ctx, id, req.Status, reviewerEmail, req.RejectionReason)
}
