package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investdesk/core/internal/adapters/repository"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

func newTestInvestmentService(t *testing.T) *InvestmentService {
	t.Helper()
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	require.NoError(t, os.WriteFile(
		filepath.Join(dataDir, repository.InvestmentsFile), []byte(`{"investments":[]}`), 0644))
	repo := repository.NewInvestmentRepository(store, dataDir, logger.Nop())
	return NewInvestmentService(repo, logger.Nop())
}

func validCreateRequest() ports.CreateInvestmentRequest {
	return ports.CreateInvestmentRequest{
		Title:       "Solar Fund",
		Description: "Utility scale solar",
		Category:    "Energy",
		Risk:        entities.RiskLow,
	}
}

func TestInvestmentService_CreateRejectsInvalidRisk(t *testing.T) {
	svc := newTestInvestmentService(t)

	req := validCreateRequest()
	req.Risk = "Extreme"
	_, err := svc.CreateInvestment(context.Background(), req)
	assert.ErrorIs(t, err, entities.ErrInvalidRisk)
}

func TestInvestmentService_CreateRejectsInvalidStatus(t *testing.T) {
	svc := newTestInvestmentService(t)

	req := validCreateRequest()
	req.Status = "Archived"
	_, err := svc.CreateInvestment(context.Background(), req)
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)
}

func TestInvestmentService_ListPublicShowsOnlyActive(t *testing.T) {
	svc := newTestInvestmentService(t)
	ctx := context.Background()

	active := validCreateRequest()
	active.Status = entities.InvestmentStatusActive
	_, err := svc.CreateInvestment(ctx, active)
	require.NoError(t, err)

	pending := validCreateRequest()
	pending.Title = "Pending Fund"
	_, err = svc.CreateInvestment(ctx, pending)
	require.NoError(t, err)

	public, err := svc.ListPublicInvestments(ctx, ports.InvestmentFilter{})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "solar-fund", public[0].ID)

	// A caller-supplied status filter cannot widen the public listing.
	pendingStatus := entities.InvestmentStatusPending
	public, err = svc.ListPublicInvestments(ctx, ports.InvestmentFilter{Status: &pendingStatus})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, entities.InvestmentStatusActive, public[0].Status)
}

func TestInvestmentService_UpdateCannotTouchReviewMetadata(t *testing.T) {
	svc := newTestInvestmentService(t)
	ctx := context.Background()

	submitted, err := svc.SubmitInvestment(ctx, validCreateRequest(), "editor@investdesk.io")
	require.NoError(t, err)

	title := "Renamed Fund"
	updated, err := svc.UpdateInvestment(ctx, submitted.ID, ports.UpdateInvestmentRequest{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "editor@investdesk.io", updated.SubmittedBy)
	assert.Empty(t, updated.ReviewedBy)
	assert.Nil(t, updated.ReviewedAt)
}

func TestInvestmentService_ReviewFlow(t *testing.T) {
	svc := newTestInvestmentService(t)
	ctx := context.Background()

	submitted, err := svc.SubmitInvestment(ctx, validCreateRequest(), "editor@investdesk.io")
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusPending, submitted.Status)

	reviewed, err := svc.ReviewInvestment(ctx, submitted.ID, ports.ReviewInvestmentRequest{
		Status:          entities.InvestmentStatusRejected,
		RejectionReason: "needs documentation",
	}, "admin@investdesk.io")
	require.NoError(t, err)
	assert.Equal(t, "needs documentation", reviewed.RejectionReason)
	assert.Equal(t, "admin@investdesk.io", reviewed.ReviewedBy)

	_, err = svc.ReviewInvestment(ctx, submitted.ID, ports.ReviewInvestmentRequest{
		Status: "Archived",
	}, "admin@investdesk.io")
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)
}
