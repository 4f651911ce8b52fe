package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

func newTestInvestmentRepo(t *testing.T) (ports.InvestmentRepository, string) {
	t.Helper()
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	seedFile(t, dataDir, InvestmentsFile, `{"investments":[]}`)
	return NewInvestmentRepository(store, dataDir, logger.Nop()), dataDir
}

func seedFile(t *testing.T, dataDir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
}

func TestInvestmentRepository_CreateAssignsSlugID(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)

	created, err := repo.Create(context.Background(), &entities.Investment{
		Title:       "Solar Fund",
		Description: "Utility scale solar",
		Status:      entities.InvestmentStatusActive,
	})
	require.NoError(t, err)

	assert.Equal(t, "solar-fund", created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.False(t, created.CreatedAt.IsZero())
	assert.NotNil(t, created.Images, "images must serialize as [], not null")
}

func TestInvestmentRepository_CreateSlugCollision(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, &entities.Investment{Title: "Tech Fund"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &entities.Investment{Title: "Tech Fund"})
	require.NoError(t, err)
	third, err := repo.Create(ctx, &entities.Investment{Title: "Tech Fund!!!"})
	require.NoError(t, err)

	assert.Equal(t, "tech-fund", first.ID)
	assert.Equal(t, "tech-fund-2", second.ID)
	assert.Equal(t, "tech-fund-3", third.ID)
}

func TestInvestmentRepository_CreateExplicitDuplicateID(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &entities.Investment{ID: "gold-etf", Title: "Gold ETF"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &entities.Investment{ID: "gold-etf", Title: "Another"})
	assert.ErrorIs(t, err, entities.ErrDuplicateID)
}

func TestInvestmentRepository_CreateDefaultsToPending(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)

	created, err := repo.Create(context.Background(), &entities.Investment{Title: "Bond Ladder"})
	require.NoError(t, err)
	assert.Equal(t, entities.InvestmentStatusPending, created.Status)
}

func TestInvestmentRepository_CreateWithoutContainer(t *testing.T) {
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	repo := NewInvestmentRepository(store, dataDir, logger.Nop())

	_, err := repo.Create(context.Background(), &entities.Investment{Title: "Orphan"})
	assert.ErrorIs(t, err, entities.ErrStoreUnavailable, "writes never fabricate a missing container")
}

func TestInvestmentRepository_ListWithoutContainer(t *testing.T) {
	dataDir := t.TempDir()
	store := storage.NewStore(storage.NewLockManager(time.Second), logger.Nop())
	repo := NewInvestmentRepository(store, dataDir, logger.Nop())

	got, err := repo.List(context.Background(), ports.InvestmentFilter{})
	require.NoError(t, err, "reads treat a missing container as an empty collection")
	assert.Empty(t, got)
}

func TestInvestmentRepository_ListFilters(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &entities.Investment{
		Title: "Solar Fund", Category: "Energy",
		Risk: entities.RiskLow, Status: entities.InvestmentStatusActive,
	})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entities.Investment{
		Title: "Crypto Basket", Category: "Digital Assets",
		Risk: entities.RiskHigh, Status: entities.InvestmentStatusPending,
	})
	require.NoError(t, err)

	active := entities.InvestmentStatusActive
	got, err := repo.List(ctx, ports.InvestmentFilter{Status: &active})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "solar-fund", got[0].ID)

	category := "energy"
	got, err = repo.List(ctx, ports.InvestmentFilter{Category: &category})
	require.NoError(t, err)
	require.Len(t, got, 1, "category match is case-insensitive")

	high := entities.RiskHigh
	got, err = repo.List(ctx, ports.InvestmentFilter{Risk: &high})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "crypto-basket", got[0].ID)
}

func TestInvestmentRepository_UpdatePreservesImmutableFields(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	created, err := repo.Submit(ctx, &entities.Investment{Title: "Wind Farm"}, "editor@investdesk.io")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	title := "Offshore Wind Farm"
	updated, err := repo.Update(ctx, created.ID, ports.InvestmentUpdate{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "Offshore Wind Farm", updated.Title)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, "editor@investdesk.io", updated.SubmittedBy, "submission metadata survives unrelated updates")
	require.NotNil(t, updated.SubmittedAt)
	assert.Equal(t, created.SubmittedAt.Unix(), updated.SubmittedAt.Unix())
}

func TestInvestmentRepository_UpdateNotFound(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	title := "x"
	_, err := repo.Update(context.Background(), "missing", ports.InvestmentUpdate{Title: &title})
	assert.ErrorIs(t, err, entities.ErrInvestmentNotFound)
}

func TestInvestmentRepository_UpdateRepairsMainImage(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entities.Investment{
		Title:       "REIT Income",
		Images:      []string{"img-1", "img-2"},
		MainImageID: "img-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "img-2", created.MainImageID)

	images := []string{"img-3"}
	updated, err := repo.Update(ctx, created.ID, ports.InvestmentUpdate{Images: &images})
	require.NoError(t, err)
	assert.Equal(t, "img-3", updated.MainImageID, "a stale main image falls back to the first image")

	empty := []string{}
	updated, err = repo.Update(ctx, created.ID, ports.InvestmentUpdate{Images: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.MainImageID)
}

func TestInvestmentRepository_DeleteNotFoundLeavesFileUntouched(t *testing.T) {
	repo, dataDir := newTestInvestmentRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &entities.Investment{Title: "Keeper"})
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dataDir, InvestmentsFile))
	require.NoError(t, err)

	err = repo.Delete(ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrInvestmentNotFound)

	after, err := os.ReadFile(filepath.Join(dataDir, InvestmentsFile))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "a failed delete must not rewrite the file")
}

func TestInvestmentRepository_Delete(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &entities.Investment{Title: "Short Lived"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, entities.ErrInvestmentNotFound)
}

func TestInvestmentRepository_SubmitForcesMetadata(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)

	submitted, err := repo.Submit(context.Background(), &entities.Investment{
		Title:  "Private Credit",
		Status: entities.InvestmentStatusActive,
	}, "editor@investdesk.io")
	require.NoError(t, err)

	assert.Equal(t, entities.InvestmentStatusPending, submitted.Status, "submissions always enter the queue as pending")
	assert.Equal(t, "editor@investdesk.io", submitted.SubmittedBy)
	require.NotNil(t, submitted.SubmittedAt)
}

func TestInvestmentRepository_ReviewApprove(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	submitted, err := repo.Submit(ctx, &entities.Investment{Title: "Farmland"}, "editor@investdesk.io")
	require.NoError(t, err)

	reviewed, err := repo.Review(ctx, submitted.ID, entities.InvestmentStatusActive, "admin@investdesk.io", "")
	require.NoError(t, err)

	assert.Equal(t, entities.InvestmentStatusActive, reviewed.Status)
	assert.Equal(t, "admin@investdesk.io", reviewed.ReviewedBy)
	require.NotNil(t, reviewed.ReviewedAt)
	assert.Empty(t, reviewed.RejectionReason)
}

func TestInvestmentRepository_ReviewRejectThenApproveClearsReason(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	ctx := context.Background()

	submitted, err := repo.Submit(ctx, &entities.Investment{Title: "Art Fund"}, "editor@investdesk.io")
	require.NoError(t, err)

	rejected, err := repo.Review(ctx, submitted.ID, entities.InvestmentStatusRejected, "admin@investdesk.io", "incomplete documentation")
	require.NoError(t, err)
	assert.Equal(t, "incomplete documentation", rejected.RejectionReason)

	approved, err := repo.Review(ctx, submitted.ID, entities.InvestmentStatusActive, "admin@investdesk.io", "")
	require.NoError(t, err)
	assert.Empty(t, approved.RejectionReason, "a later decision clears the stored reason")
}

func TestInvestmentRepository_ReviewNotFound(t *testing.T) {
	repo, _ := newTestInvestmentRepo(t)
	_, err := repo.Review(context.Background(), "missing", entities.InvestmentStatusActive, "admin@investdesk.io", "")
	assert.ErrorIs(t, err, entities.ErrInvestmentNotFound)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "solar-fund", Slugify("Solar Fund"))
	assert.Equal(t, "tech-fund", Slugify("  Tech   Fund!  "))
	assert.Equal(t, "a-b-c", Slugify("A&B&C"))
	assert.Equal(t, "fund-2024", Slugify("Fund 2024"))
	assert.Equal(t, "", Slugify("!!!"))
	assert.Equal(t, "", Slugify(""))
}
