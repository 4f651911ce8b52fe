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

// InvestmentsFile is the container document for the investment catalog.
const InvestmentsFile = "investments.json"

// InvestmentRepositoryImpl implements the InvestmentRepository interface
// over the locked JSON store. Every operation is a fresh read-modify-write
// cycle; no state is cached between calls.
type InvestmentRepositoryImpl struct {
	store  *storage.Store
	path   string
	logger *logger.Logger
}

// NewInvestmentRepository creates a new investment repository
func NewInvestmentRepository(store *storage.Store, dataDir string, log *logger.Logger) ports.InvestmentRepository {
	return &InvestmentRepositoryImpl{
		store:  store,
		path:   filepath.Join(dataDir, InvestmentsFile),
		logger: log.WithComponent("investments"),
	}
}

// loadDoc reads the container for a write cycle. A missing container means
// the store is unavailable: writes never fabricate an empty document.
func (r *InvestmentRepositoryImpl) loadDoc(ctx context.Context) (*entities.InvestmentDocument, error) {
	doc, err := storage.ReadJSON[entities.InvestmentDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, entities.ErrStoreUnavailable
		}
		return nil, err
	}
	return doc, nil
}

// loadDocOrEmpty reads the container for a read-only cycle. A missing
// container reads as an empty collection.
func (r *InvestmentRepositoryImpl) loadDocOrEmpty(ctx context.Context) (*entities.InvestmentDocument, error) {
	doc, err := storage.ReadJSON[entities.InvestmentDocument](ctx, r.store, r.path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &entities.InvestmentDocument{}, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *InvestmentRepositoryImpl) Create(ctx context.Context, inv *entities.Investment) (*entities.Investment, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	record := *inv
	if record.ID == "" {
		record.ID = generateInvestmentID(record.Title, doc.Investments)
	} else if investmentIDTaken(record.ID, doc.Investments) {
		return nil, fmt.Errorf("%w: %s", entities.ErrDuplicateID, record.ID)
	}

	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = entities.InvestmentStatusPending
	}
	if record.Images == nil {
		record.Images = []string{}
	}
	record.EnsureMainImage()

	doc.Investments = append(doc.Investments, record)
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	r.logger.Infow("Investment created", "id", record.ID, "title", record.Title, "status", record.Status)
	return &record, nil
}

func (r *InvestmentRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.Investment, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}
	for i := range doc.Investments {
		if doc.Investments[i].ID == id {
			inv := doc.Investments[i]
			return &inv, nil
		}
	}
	return nil, entities.ErrInvestmentNotFound
}

func (r *InvestmentRepositoryImpl) List(ctx context.Context, filter ports.InvestmentFilter) ([]entities.Investment, error) {
	doc, err := r.loadDocOrEmpty(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]entities.Investment, 0, len(doc.Investments))
	for _, inv := range doc.Investments {
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if filter.Category != nil && !strings.EqualFold(inv.Category, *filter.Category) {
			continue
		}
		if filter.Risk != nil && inv.Risk != *filter.Risk {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *InvestmentRepositoryImpl) Update(ctx context.Context, id string, upd ports.InvestmentUpdate) (*entities.Investment, error) {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range doc.Investments {
		if doc.Investments[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, entities.ErrInvestmentNotFound
	}

	inv := doc.Investments[idx]
	if upd.Title != nil {
		inv.Title = *upd.Title
	}
	if upd.Description != nil {
		inv.Description = *upd.Description
	}
	if upd.DetailedDescription != nil {
		inv.DetailedDescription = *upd.DetailedDescription
	}
	if upd.ExpectedReturn != nil {
		inv.ExpectedReturn = *upd.ExpectedReturn
	}
	if upd.MinimumInvestment != nil {
		inv.MinimumInvestment = *upd.MinimumInvestment
	}
	if upd.Category != nil {
		inv.Category = *upd.Category
	}
	if upd.Risk != nil {
		inv.Risk = *upd.Risk
	}
	if upd.Status != nil {
		inv.Status = *upd.Status
	}
	if upd.Images != nil {
		inv.Images = *upd.Images
		if inv.Images == nil {
			inv.Images = []string{}
		}
	}
	if upd.MainImageID != nil {
		inv.MainImageID = *upd.MainImageID
	}
	// Submission metadata is one-way: preserved unless explicitly supplied.
	if upd.SubmittedBy != nil {
		inv.SubmittedBy = *upd.SubmittedBy
	}
	if upd.SubmittedAt != nil {
		t := *upd.SubmittedAt
		inv.SubmittedAt = &t
	}
	if upd.ReviewedBy != nil {
		inv.ReviewedBy = *upd.ReviewedBy
	}
	if upd.ReviewedAt != nil {
		t := *upd.ReviewedAt
		inv.ReviewedAt = &t
	}
	if upd.RejectionReason != nil {
		inv.RejectionReason = *upd.RejectionReason
	}

	// CreatedAt is immutable; only UpdatedAt moves.
	inv.UpdatedAt = time.Now().UTC()
	inv.EnsureMainImage()

	doc.Investments[idx] = inv
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return nil, fmt.Errorf("update investment: %w", err)
	}

	r.logger.Infow("Investment updated", "id", inv.ID)
	return &inv, nil
}

func (r *InvestmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	doc, err := r.loadDoc(ctx)
	if err != nil {
		return err
	}

	kept := doc.Investments[:0:0]
	for _, inv := range doc.Investments {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(doc.Investments) {
		return entities.ErrInvestmentNotFound
	}

	doc.Investments = kept
	if err := storage.WriteJSON(ctx, r.store, r.path, doc); err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}

	r.logger.Infow("Investment deleted", "id", id)
	return nil
}

// Submit creates an investment on behalf of a contributor: submitter email,
// submission time and Pending status are forced regardless of the payload.
func (r *InvestmentRepositoryImpl) Submit(ctx context.Context, inv *entities.Investment, submitterEmail string) (*entities.Investment, error) {
	record := *inv
	now := time.Now().UTC()
	record.SubmittedBy = submitterEmail
	record.SubmittedAt = &now
	record.Status = entities.InvestmentStatusPending

	created, err := r.Create(ctx, &record)
	if err != nil {
		return nil, err
	}
	r.logger.Infow("Investment submitted", "id", created.ID, "submitted_by", submitterEmail)
	return created, nil
}

// Review records a review decision. The rejection reason is kept only when
// the target status is Rejected and a reason was supplied; any other target
// status clears a previously stored reason.
func (r *InvestmentRepositoryImpl) Review(ctx context.Context, id string, status entities.InvestmentStatus, reviewerEmail, rejectionReason string) (*entities.Investment, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reason := ""
	if status == entities.InvestmentStatusRejected && rejectionReason != "" {
		reason = rejectionReason
	}
	upd := ports.InvestmentUpdate{
		Status:          &status,
		ReviewedBy:      &reviewerEmail,
		ReviewedAt:      &now,
		RejectionReason: &reason,
	}

	reviewed, err := r.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	r.logger.Infow("Investment reviewed", "id", id, "status", status, "reviewed_by", reviewerEmail)
	return reviewed, nil
}

// generateInvestmentID derives a unique id from the title: a slug, with an
// incrementing numeric suffix on collision, or a random UUID when the title
// yields no usable slug.
func generateInvestmentID(title string, existing []entities.Investment) string {
	slug := Slugify(title)
	if slug == "" {
		return uuid.NewString()
	}
	candidate := slug
	for n := 2; investmentIDTaken(candidate, existing); n++ {
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
	return candidate
}

func investmentIDTaken(id string, existing []entities.Investment) bool {
	for i := range existing {
		if existing[i].ID == id {
			return true
		}
	}
	return false
}

// Slugify lowercases the title and collapses runs of non-alphanumerics into
// single hyphens, trimmed at both ends.
func Slugify(title string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}
