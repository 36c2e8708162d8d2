package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/repository"
	"github.com/motorlane/pipeline-api/internal/service"
	"github.com/motorlane/pipeline-api/internal/testutil"
)

type serviceFixture struct {
	db       *gorm.DB
	svc      *service.PipelineItemService
	itemRepo *repository.PipelineItemRepository
	statuses map[domain.StatusCode]*domain.PipelineStatus
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	itemRepo := repository.NewPipelineItemRepository(db)
	svc := service.NewPipelineItemService(
		itemRepo,
		repository.NewStatusRepository(db),
		repository.NewMarketColorRepository(db),
		repository.NewUserRepository(db),
		repository.NewNoteRepository(db),
		repository.NewTransferActivityRepository(db),
		zap.NewNop(),
		loc,
	)

	return &serviceFixture{
		db:       db,
		svc:      svc,
		itemRepo: itemRepo,
		statuses: testutil.SeedStatuses(t, db),
	}
}

func (f *serviceFixture) seedItem(t *testing.T, mutate func(*domain.PipelineItem)) *domain.PipelineItem {
	t.Helper()

	item := &domain.PipelineItem{
		FirstName:  "Jane",
		Dealership: "Test Motors",
		StatusID:   f.statuses[domain.StatusCodeContacted].ID,
	}
	if mutate != nil {
		mutate(item)
	}
	require.NoError(t, f.itemRepo.Create(context.Background(), item))
	return item
}

func (f *serviceFixture) activitiesFor(t *testing.T, itemID uuid.UUID) []domain.TransferActivity {
	t.Helper()

	var activities []domain.TransferActivity
	err := f.db.Where("pipeline_item_id = ?", itemID).Find(&activities).Error
	require.NoError(t, err)
	return activities
}

func TestPipelineItemService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	dto, err := f.svc.Create(ctx, &domain.CreatePipelineItemRequest{
		FirstName:  "Sam",
		Dealership: "Lakeside Auto",
		StatusID:   f.statuses[domain.StatusCodeNewLead].ID,
		PhoneNumbers: []domain.PhoneNumberInput{
			{Number: "555-0100"},
		},
		Note: "came in through the web form",
	})
	require.NoError(t, err)

	assert.Equal(t, "Created by "+advisor.DisplayName, dto.LeadSource)
	require.NotNil(t, dto.SalesAdvisorID)
	assert.Equal(t, advisor.ID, *dto.SalesAdvisorID)
	assert.Nil(t, dto.ATeamMemberID)
	assert.Equal(t, 0, dto.NumberOfContacts)
	assert.Nil(t, dto.DaysWorking)

	require.Len(t, dto.PhoneNumbers, 1)
	assert.Equal(t, "Office", dto.PhoneNumbers[0].Type)

	require.Len(t, dto.Notes, 1)
	assert.Equal(t, "came in through the web form", dto.Notes[0].Body)
}

func TestPipelineItemService_CreateKeepsExplicitLeadSource(t *testing.T) {
	f := newFixture(t)
	member := testutil.CreateTestUser(t, f.db, "member@motorlane.test", domain.RoleATeamMember)
	ctx := testutil.ContextWithUser(member)

	dto, err := f.svc.Create(ctx, &domain.CreatePipelineItemRequest{
		FirstName:  "Sam",
		Dealership: "Lakeside Auto",
		StatusID:   f.statuses[domain.StatusCodeNewLead].ID,
		LeadSource: "Trade show",
	})
	require.NoError(t, err)

	assert.Equal(t, "Trade show", dto.LeadSource)
	require.NotNil(t, dto.ATeamMemberID)
	assert.Equal(t, member.ID, *dto.ATeamMemberID)
}

func TestPipelineItemService_CreateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	_, err := f.svc.Create(ctx, &domain.CreatePipelineItemRequest{
		FirstName:  "Sam",
		Dealership: "Lakeside Auto",
		StatusID:   uuid.New(),
	})
	assert.ErrorIs(t, err, service.ErrStatusNotFound)
}

func TestPipelineItemService_ListScopesToOwner(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	other := testutil.CreateTestUser(t, f.db, "other@motorlane.test", domain.RoleSalesAdvisor)
	admin := testutil.CreateTestUser(t, f.db, "admin@motorlane.test", domain.RoleAdmin)

	mine := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })
	f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &other.ID })

	items, err := f.svc.List(testutil.ContextWithUser(advisor), false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	items, err = f.svc.List(testutil.ContextWithUser(admin), false)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPipelineItemService_ListClosedMonth(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateTestUser(t, f.db, "admin@motorlane.test", domain.RoleAdmin)
	ctx := testutil.ContextWithUser(admin)

	sold := f.seedItem(t, func(p *domain.PipelineItem) {
		p.StatusID = f.statuses[domain.StatusCodeSold].ID
	})
	f.seedItem(t, nil) // open, excluded

	stale := f.seedItem(t, func(p *domain.PipelineItem) {
		p.StatusID = f.statuses[domain.StatusCodeLost].ID
	})
	err := f.db.Model(&domain.PipelineItem{}).Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().AddDate(0, 0, -120)).Error
	require.NoError(t, err)

	items, err := f.svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, sold.ID, items[0].ID)
}

func TestPipelineItemService_UpdateOwnership(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	other := testutil.CreateTestUser(t, f.db, "other@motorlane.test", domain.RoleSalesAdvisor)
	admin := testutil.CreateTestUser(t, f.db, "admin@motorlane.test", domain.RoleAdmin)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	dealership := "Updated Motors"
	req := &domain.UpdatePipelineItemRequest{Dealership: &dealership}

	_, err := f.svc.Update(testutil.ContextWithUser(other), item.ID, req)
	assert.ErrorIs(t, err, service.ErrNotFound)

	dto, err := f.svc.Update(testutil.ContextWithUser(advisor), item.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Updated Motors", dto.Dealership)

	// Admins can update anything
	name := "Janet"
	dto, err = f.svc.Update(testutil.ContextWithUser(admin), item.ID, &domain.UpdatePipelineItemRequest{
		FirstName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", dto.FirstName)
	assert.Equal(t, "Updated Motors", dto.Dealership)
}

func TestPipelineItemService_UpdateLastContactBumpsCounter(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	date := "8/15/2026"
	dto, err := f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{LastContactDate: &date})
	require.NoError(t, err)
	assert.Equal(t, 1, dto.NumberOfContacts)
	require.NotNil(t, dto.LastContactDate)

	dto, err = f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{LastContactDate: &date})
	require.NoError(t, err)
	assert.Equal(t, 2, dto.NumberOfContacts)
}

func TestPipelineItemService_UpdateReplacesPhoneNumbers(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) {
		p.SalesAdvisorID = &advisor.ID
		p.PhoneNumbers = []domain.PipelineItemPhoneNumber{
			{Type: "Office", Number: "555-0100"},
			{Type: "Mobile", Number: "555-0101"},
		}
	})

	dto, err := f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{
		PhoneNumbers: []domain.PhoneNumberInput{{Type: "Home", Number: "555-0200"}},
	})
	require.NoError(t, err)
	require.Len(t, dto.PhoneNumbers, 1)
	assert.Equal(t, "555-0200", dto.PhoneNumbers[0].Number)

	// An explicit empty list clears every number
	dto, err = f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{
		PhoneNumbers: []domain.PhoneNumberInput{},
	})
	require.NoError(t, err)
	assert.Empty(t, dto.PhoneNumbers)

	// Omitting the list leaves numbers alone
	name := "Janet"
	f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{
		PhoneNumbers: []domain.PhoneNumberInput{{Number: "555-0300"}},
	})
	dto, err = f.svc.Update(ctx, item.ID, &domain.UpdatePipelineItemRequest{FirstName: &name})
	require.NoError(t, err)
	assert.Len(t, dto.PhoneNumbers, 1)
}

func TestPipelineItemService_Appointments(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	onDay := time.Date(2026, 9, 15, 14, 0, 0, 0, loc)
	dayAfter := time.Date(2026, 9, 16, 0, 0, 0, 0, loc)

	wanted := f.seedItem(t, func(p *domain.PipelineItem) { p.Appointment = &onDay })
	f.seedItem(t, func(p *domain.PipelineItem) { p.Appointment = &dayAfter })

	items, err := f.svc.Appointments(ctx, "9/15/2026")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, wanted.ID, items[0].ID)

	_, err = f.svc.Appointments(ctx, "2026-09-15")
	assert.ErrorIs(t, err, service.ErrInvalidDate)
}

func TestPipelineItemService_AppointmentsIncludeCreatedItems(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	// A date-only appointment must surface on that same calendar day even
	// though midnight in the reference timezone is the previous UTC evening
	dateOnly, err := f.svc.Create(ctx, &domain.CreatePipelineItemRequest{
		FirstName:   "Sam",
		Dealership:  "Lakeside Auto",
		StatusID:    f.statuses[domain.StatusCodeAppointment].ID,
		Appointment: "9/15/2026",
	})
	require.NoError(t, err)

	timed, err := f.svc.Create(ctx, &domain.CreatePipelineItemRequest{
		FirstName:   "Alex",
		Dealership:  "Lakeside Auto",
		StatusID:    f.statuses[domain.StatusCodeAppointment].ID,
		Appointment: "9/15/2026 3:30 PM",
	})
	require.NoError(t, err)

	items, err := f.svc.Appointments(ctx, "9/15/2026")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, dateOnly.ID, items[0].ID)
	assert.Equal(t, timed.ID, items[1].ID)

	items, err = f.svc.Appointments(ctx, "9/14/2026")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPipelineItemService_TransferToATeam(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	member := testutil.CreateTestUser(t, f.db, "member@motorlane.test", domain.RoleATeamMember)
	prev := testutil.CreateTestUser(t, f.db, "prev@motorlane.test", domain.RoleATeamMember)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) {
		p.SalesAdvisorID = &advisor.ID
		p.ATeamMemberID = &prev.ID
		p.NumberOfContacts = 4
	})

	activity, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferToATeam),
		TransferToID:   member.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransferToATeam, activity.Action)
	require.NotNil(t, activity.OldID)
	assert.Equal(t, prev.ID, *activity.OldID)
	require.NotNil(t, activity.NewID)
	assert.Equal(t, member.ID, *activity.NewID)
	assert.Equal(t, advisor.ID, activity.InitiatedBy)

	loaded, err := f.itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.ATeamMemberID)
	assert.Equal(t, member.ID, *loaded.ATeamMemberID)
	require.NotNil(t, loaded.TransferredOn)

	// Only the ateam slot moved; contacts and status are untouched
	assert.Equal(t, 4, loaded.NumberOfContacts)
	assert.Equal(t, f.statuses[domain.StatusCodeContacted].ID, loaded.StatusID)
}

func TestPipelineItemService_TransferToSalesResetsCycle(t *testing.T) {
	f := newFixture(t)
	member := testutil.CreateTestUser(t, f.db, "member@motorlane.test", domain.RoleATeamMember)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(member)

	item := f.seedItem(t, func(p *domain.PipelineItem) {
		p.ATeamMemberID = &member.ID
		p.StatusID = f.statuses[domain.StatusCodeNegotiating].ID
		p.NumberOfContacts = 7
	})

	activity, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferToSales),
		TransferToID:   advisor.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, activity.OldID)

	loaded, err := f.itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.SalesAdvisorID)
	assert.Equal(t, advisor.ID, *loaded.SalesAdvisorID)
	assert.Equal(t, f.statuses[domain.StatusCodeNewLead].ID, loaded.StatusID)
	assert.Equal(t, 0, loaded.NumberOfContacts)
}

func TestPipelineItemService_TransferAdminForcesReassign(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateTestUser(t, f.db, "admin@motorlane.test", domain.RoleAdmin)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(admin)

	item := f.seedItem(t, func(p *domain.PipelineItem) {
		p.StatusID = f.statuses[domain.StatusCodeNegotiating].ID
		p.NumberOfContacts = 7
	})

	// Whatever the admin submits is recorded as a reassign, with none of the
	// to-sales resets
	activity, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferToSales),
		TransferToID:   advisor.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransferAdminReassign, activity.Action)

	loaded, err := f.itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.SalesAdvisorID)
	assert.Equal(t, advisor.ID, *loaded.SalesAdvisorID)
	assert.Equal(t, f.statuses[domain.StatusCodeNegotiating].ID, loaded.StatusID)
	assert.Equal(t, 7, loaded.NumberOfContacts)
}

func TestPipelineItemService_TransferAdminReassignToNonOwningRole(t *testing.T) {
	f := newFixture(t)
	admin := testutil.CreateTestUser(t, f.db, "admin@motorlane.test", domain.RoleAdmin)
	otherAdmin := testutil.CreateTestUser(t, f.db, "other-admin@motorlane.test", domain.RoleAdmin)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(admin)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	// A target whose role owns nothing changes no slot, but the transfer is
	// still recorded with a fresh TransferredOn
	activity, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferAdminReassign),
		TransferToID:   otherAdmin.ID,
	})
	require.NoError(t, err)
	assert.Nil(t, activity.OldID)
	require.NotNil(t, activity.NewID)
	assert.Equal(t, otherAdmin.ID, *activity.NewID)

	loaded, err := f.itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.SalesAdvisorID)
	assert.Equal(t, advisor.ID, *loaded.SalesAdvisorID)
	assert.Nil(t, loaded.ATeamMemberID)
	require.NotNil(t, loaded.TransferredOn)
	assert.Len(t, f.activitiesFor(t, item.ID), 1)
}

func TestPipelineItemService_TransferUnknownAction(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	member := testutil.CreateTestUser(t, f.db, "member@motorlane.test", domain.RoleATeamMember)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	_, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: "sideways",
		TransferToID:   member.ID,
	})
	assert.ErrorIs(t, err, service.ErrInvalidTransferAction)

	// Nothing mutated, nothing logged
	loaded, err := f.itemRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.TransferredOn)
	assert.Empty(t, f.activitiesFor(t, item.ID))
}

func TestPipelineItemService_TransferTargetMustExist(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	_, err := f.svc.Transfer(ctx, item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferToATeam),
		TransferToID:   uuid.New(),
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Empty(t, f.activitiesFor(t, item.ID))
}

func TestPipelineItemService_TransferNotOwned(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	other := testutil.CreateTestUser(t, f.db, "other@motorlane.test", domain.RoleSalesAdvisor)
	member := testutil.CreateTestUser(t, f.db, "member@motorlane.test", domain.RoleATeamMember)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &other.ID })

	_, err := f.svc.Transfer(testutil.ContextWithUser(advisor), item.ID, &domain.TransferRequest{
		TransferAction: string(domain.TransferToATeam),
		TransferToID:   member.ID,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestPipelineItemService_AddNote(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	note, err := f.svc.AddNote(ctx, item.ID, &domain.CreateNoteRequest{Body: "left a voicemail"})
	require.NoError(t, err)
	assert.Equal(t, "left a voicemail", note.Body)
	require.NotNil(t, note.UserProfile)
	assert.Equal(t, advisor.ID, note.UserProfile.ID)
}

func TestPipelineItemService_DeleteIsSoft(t *testing.T) {
	f := newFixture(t)
	advisor := testutil.CreateTestUser(t, f.db, "advisor@motorlane.test", domain.RoleSalesAdvisor)
	ctx := testutil.ContextWithUser(advisor)

	item := f.seedItem(t, func(p *domain.PipelineItem) { p.SalesAdvisorID = &advisor.ID })

	require.NoError(t, f.svc.Delete(ctx, item.ID))

	_, err := f.svc.Get(ctx, item.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	var count int64
	require.NoError(t, f.db.Unscoped().Model(&domain.PipelineItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
