package services

import (
	"context"
	"fmt"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/ports"
)

// LeadService handles inquiries from the public site
type LeadService struct {
	leadRepo ports.LeadRepository
	logger   *logger.Logger
}

// NewLeadService creates a new lead service
func NewLeadService(leadRepo ports.LeadRepository, logger *logger.Logger) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		logger:   logger,
	}
}

// CreateLead captures a contact-form inquiry
func (s *LeadService) CreateLead(ctx context.Context, req ports.CreateLeadRequest) (*entities.Lead, error) {
	lead := &entities.Lead{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Message:            req.Message,
		InvestmentInterest: req.InvestmentInterest,
	}

	created, err := s.leadRepo.Create(ctx, lead)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Lead captured", "lead_id", created.ID, "interest", created.InvestmentInterest)
	return created, nil
}

// GetLead retrieves a lead by id
func (s *LeadService) GetLead(ctx context.Context, id string) (*entities.Lead, error) {
	return s.leadRepo.GetByID(ctx, id)
}

// ListLeads lists inquiries for the back office
func (s *LeadService) ListLeads(ctx context.Context, filter ports.LeadFilter) ([]entities.Lead, error) {
	return s.leadRepo.List(ctx, filter)
}

// UpdateLeadStatus moves a lead along the pipeline
func (s *LeadService) UpdateLeadStatus(ctx context.Context, id string, status entities.LeadStatus) (*entities.Lead, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %s", entities.ErrInvalidLeadStatus, status)
	}
	return s.leadRepo.UpdateStatus(ctx, id, status)
}

// DeleteLead removes a lead by id
func (s *LeadService) DeleteLead(ctx context.Context, id string) error {
	return s.leadRepo.Delete(ctx, id)
}
