package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

func newTestLeadRepo(t *testing.T) ports.LeadRepository {
	t.Helper()
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	seedFile(t, dataDir, LeadsFile, `{"leads":[]}`)
	return NewLeadRepository(store, dataDir, logger.Nop())
}

func TestLeadRepository_CreateDefaults(t *testing.T) {
	repo := newTestLeadRepo(t)

	created, err := repo.Create(context.Background(), &entities.Lead{
		Name:               "Morgan",
		Email:              "morgan@example.com",
		InvestmentInterest: "solar-fund",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entities.LeadStatusNew, created.Status, "new inquiries start in the New state")
	assert.False(t, created.CreatedAt.IsZero())
}

func TestLeadRepository_ListFilters(t *testing.T) {
	repo := newTestLeadRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, &entities.Lead{Email: "a@example.com", InvestmentInterest: "solar-fund"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entities.Lead{Email: "b@example.com", InvestmentInterest: "tech-fund"})
	require.NoError(t, err)

	_, err = repo.UpdateStatus(ctx, first.ID, entities.LeadStatusContacted)
	require.NoError(t, err)

	contacted := entities.LeadStatusContacted
	got, err := repo.List(ctx, ports.LeadFilter{Status: &contacted})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)

	interest := "TECH-FUND"
	got, err = repo.List(ctx, ports.LeadFilter{InvestmentInterest: &interest})
	require.NoError(t, err)
	require.Len(t, got, 1, "interest match is case-insensitive")
	assert.Equal(t, "b@example.com", got[0].Email)
}

func TestLeadRepository_UpdateStatusMissing(t *testing.T) {
	repo := newTestLeadRepo(t)
	_, err := repo.UpdateStatus(context.Background(), "missing", entities.LeadStatusQualified)
	assert.ErrorIs(t, err, entities.ErrLeadNotFound)
}

func TestLeadRepository_Delete(t *testing.T) {
	repo := newTestLeadRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entities.Lead{Email: "bye@example.com"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrLeadNotFound)
}

func TestLeadRepository_MissingContainer(t *testing.T) {
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	repo := NewLeadRepository(store, dataDir, logger.Nop())

	got, err := repo.List(context.Background(), ports.LeadFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = repo.Create(context.Background(), &entities.Lead{Email: "x@example.com"})
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable)
}
