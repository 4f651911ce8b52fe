package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

// LeadsFile is the container document for public-site inquiries.
const LeadsFile = "leads.json"

// LeadRepositoryImpl implements the LeadRepository interface over the locked
// JSON store.
type LeadRepositoryImpl struct {
	store  *storage.Store
	path   string
	logger *logger.Logger
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(store *storage.Store, dataDir string, log *logger.Logger) ports.LeadRepository {
	return &LeadRepositoryImpl{
		store:  store,
		path:   filepath.Join(dataDir, LeadsFile),
		logger: log.WithComponent("leads"),
	}
}

func (r *LeadRepositoryImpl) loadDoc(ctx context.Context) (*entities.LeadDocument, error) {
	doc, err := storage.ReadJSON[entities.LeadDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, entities.ErrStoreUnavailable
		}
		return nil, err
	}
	return doc, nil
}

func (r *LeadRepositoryImpl) loadDocOrEmpty(ctx context.Context) (*entities.LeadDocument, error) {
	doc, err := storage.ReadJSON[entities.LeadDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &entities.LeadDocument{}, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *LeadRepositoryImpl) Create(ctx context.Context, lead *entities.Lead) (*entities.Lead, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	record := *lead
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()
	if record.Status == "" {
		record.Status = entities.LeadStatusNew
	}

	doc.Leads = append(doc.Leads, record)
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	r.logger.Infow("Lead created", "id", record.ID, "interest", record.InvestmentInterest)
	return &record, nil
}

func (r *LeadRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Lead, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Leads {
		if doc.Leads[i].ID == id {
			lead := doc.Leads[i]
			return &lead, nil
		}
	}
	return nil, entities.ErrLeadNotFound
}

func (r *LeadRepositoryImpl) List(ctx context.Context, filter ports.LeadFilter) ([]entities.Lead, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Lead, 0, len(doc.Leads))
	for _, lead := range doc.Leads {
		if filter.Status != nil && lead.Status != *filter.Status {
			continue
		}
		if filter.InvestmentInterest != nil && !strings.EqualFold(lead.InvestmentInterest, *filter.InvestmentInterest) {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (r *LeadRepositoryImpl) UpdateStatus(ctx context.Context, id string, status entities.LeadStatus) (*entities.Lead, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	for i := range doc.Leads {
		if doc.Leads[i].ID == id {
			doc.Leads[i].Status = status
			lead := doc.Leads[i]
			if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
				return nil, fmt.Errorf("update lead status: %w", err)
			}
			r.logger.Infow("Lead status updated", "id", id, "status", status)
			return &lead, nil
		}
	}
	return nil, entities.ErrLeadNotFound
}

func (r *LeadRepositoryImpl) Delete(ctx context.Context, id string) error {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return err
	}

	kept := doc.Leads[:0:0]
	for _, lead := range doc.Leads {
		if lead.ID != id {
			kept = append(kept, lead)
		}
	}
	if len(kept) == len(doc.Leads) {
		return entities.ErrLeadNotFound
	}

	doc.Leads = kept
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}

	r.logger.Infow("Lead deleted", "id", id)
	return nil
}
