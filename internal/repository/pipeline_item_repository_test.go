package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/repository"
	"github.com/motorlane/pipeline-api/internal/testutil"
)

func createItem(t *testing.T, db *gorm.DB, statusID uuid.UUID, mutate func(*domain.PipelineItem)) *domain.PipelineItem {
	t.Helper()

	item := &domain.PipelineItem{
		FirstName:  "Jane",
		Dealership: "Test Motors",
		StatusID:   statusID,
	}
	if mutate != nil {
		mutate(item)
	}

	repo := repository.NewPipelineItemRepository(db)
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestPipelineItemRepository_CreateWithChildren(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	user := testutil.CreateTestUser(t, db, "author@motorlane.test", domain.RoleSalesAdvisor)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	item := createItem(t, db, statuses[domain.StatusCodeNewLead].ID, func(p *domain.PipelineItem) {
		p.PhoneNumbers = []domain.PipelineItemPhoneNumber{
			{Type: "Office", Number: "555-0100"},
			{Type: "Mobile", Number: "555-0101"},
		}
		p.Notes = []domain.PipelineItemNote{
			{UserID: user.ID, Body: "initial intake"},
		}
	})

	loaded, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.PhoneNumbers, 2)
	require.Len(t, loaded.Notes, 1)
	assert.Equal(t, "initial intake", loaded.Notes[0].Body)
	require.NotNil(t, loaded.Notes[0].UserProfile)
	assert.Equal(t, user.ID, loaded.Notes[0].UserProfile.ID)
	require.NotNil(t, loaded.Status)
	assert.Equal(t, domain.StatusCodeNewLead, loaded.Status.Code)
}

func TestPipelineItemRepository_GetOwned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	owner := testutil.CreateTestUser(t, db, "owner@motorlane.test", domain.RoleSalesAdvisor)
	other := testutil.CreateTestUser(t, db, "other@motorlane.test", domain.RoleSalesAdvisor)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	item := createItem(t, db, statuses[domain.StatusCodeNewLead].ID, func(p *domain.PipelineItem) {
		p.SalesAdvisorID = &owner.ID
	})

	got, err := repo.GetOwned(ctx, item.ID, "sales_advisor_id", owner.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	_, err = repo.GetOwned(ctx, item.ID, "sales_advisor_id", other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Owning through the other role's column does not count
	_, err = repo.GetOwned(ctx, item.ID, "ateam_member_id", owner.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPipelineItemRepository_ListOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	recent := time.Now().Add(-24 * time.Hour)
	old := time.Now().Add(-30 * 24 * time.Hour)

	itemRecent := createItem(t, db, statuses[domain.StatusCodeContacted].ID, func(p *domain.PipelineItem) {
		p.LastContactDate = &recent
	})
	itemNever := createItem(t, db, statuses[domain.StatusCodeContacted].ID, nil)
	itemOld := createItem(t, db, statuses[domain.StatusCodeContacted].ID, func(p *domain.PipelineItem) {
		p.LastContactDate = &old
	})

	items, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Never-contacted leads first, then oldest contact upward
	assert.Equal(t, itemNever.ID, items[0].ID)
	assert.Equal(t, itemOld.ID, items[1].ID)
	assert.Equal(t, itemRecent.ID, items[2].ID)
}

func TestPipelineItemRepository_ClosedWindowBoundary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	repo := repository.NewPipelineItemRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	ctx := context.Background()

	soldID := statuses[domain.StatusCodeSold].ID

	inside := createItem(t, db, soldID, nil)
	outside := createItem(t, db, soldID, nil)
	openRecent := createItem(t, db, statuses[domain.StatusCodeContacted].ID, nil)

	// Backdate activity around the 90 day edge; UpdateColumn skips the
	// automatic updated_at touch
	backdate := func(id uuid.UUID, daysAgo int) {
		err := db.Model(&domain.PipelineItem{}).Where("id = ?", id).
			UpdateColumn("updated_at", time.Now().AddDate(0, 0, -daysAgo)).Error
		require.NoError(t, err)
	}
	backdate(inside.ID, 89)
	backdate(outside.ID, 91)

	closedIDs, err := statusRepo.ClosedStatusIDs(ctx)
	require.NoError(t, err)
	require.Len(t, closedIDs, 3)

	since := time.Now().Add(-90 * 24 * time.Hour)
	items, err := repo.List(ctx, &repository.PipelineItemFilters{
		ClosedStatusIDs: closedIDs,
		ClosedSince:     &since,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, inside.ID, items[0].ID)

	// A recently touched open item never shows up in the closed view
	for _, it := range items {
		assert.NotEqual(t, openRecent.ID, it.ID)
	}
}

func TestPipelineItemRepository_ReplacePhoneNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	item := createItem(t, db, statuses[domain.StatusCodeNewLead].ID, func(p *domain.PipelineItem) {
		p.PhoneNumbers = []domain.PipelineItemPhoneNumber{
			{Type: "Office", Number: "555-0100"},
			{Type: "Mobile", Number: "555-0101"},
		}
	})

	err := repo.ReplacePhoneNumbers(ctx, item.ID, []domain.PipelineItemPhoneNumber{
		{Type: "Home", Number: "555-0200"},
	})
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, loaded.PhoneNumbers, 1)
	assert.Equal(t, "555-0200", loaded.PhoneNumbers[0].Number)

	// An empty replacement clears the set
	require.NoError(t, repo.ReplacePhoneNumbers(ctx, item.ID, nil))
	loaded, err = repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.PhoneNumbers)
}

func TestPipelineItemRepository_ListByAppointmentRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	morning := day.Add(9 * time.Hour)
	evening := day.Add(17 * time.Hour)
	nextDay := day.AddDate(0, 0, 1).Add(9 * time.Hour)

	itemEvening := createItem(t, db, statuses[domain.StatusCodeAppointment].ID, func(p *domain.PipelineItem) {
		p.Appointment = &evening
	})
	itemMorning := createItem(t, db, statuses[domain.StatusCodeAppointment].ID, func(p *domain.PipelineItem) {
		p.Appointment = &morning
	})
	createItem(t, db, statuses[domain.StatusCodeAppointment].ID, func(p *domain.PipelineItem) {
		p.Appointment = &nextDay
	})
	createItem(t, db, statuses[domain.StatusCodeAppointment].ID, nil)

	items, err := repo.ListByAppointmentRange(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, itemMorning.ID, items[0].ID)
	assert.Equal(t, itemEvening.ID, items[1].ID)
}

func TestPipelineItemRepository_SoftDeleteAndPurge(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statuses := testutil.SeedStatuses(t, db)
	repo := repository.NewPipelineItemRepository(db)
	ctx := context.Background()

	oldTrash := createItem(t, db, statuses[domain.StatusCodeLost].ID, nil)
	freshTrash := createItem(t, db, statuses[domain.StatusCodeLost].ID, nil)
	kept := createItem(t, db, statuses[domain.StatusCodeNewLead].ID, nil)

	require.NoError(t, repo.Delete(ctx, oldTrash.ID))
	require.NoError(t, repo.Delete(ctx, freshTrash.ID))

	// Deleted items disappear from normal reads
	_, err := repo.GetByID(ctx, oldTrash.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Age one of the trashed rows past the retention cutoff
	err = db.Unscoped().Model(&domain.PipelineItem{}).Where("id = ?", oldTrash.ID).
		UpdateColumn("deleted_at", time.Now().AddDate(0, 0, -60)).Error
	require.NoError(t, err)

	purged, err := repo.PurgeTrashed(ctx, time.Now().AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining int64
	require.NoError(t, db.Unscoped().Model(&domain.PipelineItem{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)

	_, err = repo.GetByID(ctx, kept.ID)
	assert.NoError(t, err)
}
