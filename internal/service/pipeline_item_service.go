package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/motorlane/pipeline-api/internal/auth"
	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/mapper"
	"github.com/motorlane/pipeline-api/internal/repository"
)

// closedDealWindow is how far back the closed-this-month view reaches
const closedDealWindow = 90 * 24 * time.Hour

type PipelineItemService struct {
	itemRepo     *repository.PipelineItemRepository
	statusRepo   *repository.StatusRepository
	colorRepo    *repository.MarketColorRepository
	userRepo     *repository.UserRepository
	noteRepo     *repository.NoteRepository
	activityRepo *repository.TransferActivityRepository
	logger       *zap.Logger
	loc          *time.Location
}

func NewPipelineItemService(
	itemRepo *repository.PipelineItemRepository,
	statusRepo *repository.StatusRepository,
	colorRepo *repository.MarketColorRepository,
	userRepo *repository.UserRepository,
	noteRepo *repository.NoteRepository,
	activityRepo *repository.TransferActivityRepository,
	logger *zap.Logger,
	loc *time.Location,
) *PipelineItemService {
	return &PipelineItemService{
		itemRepo:     itemRepo,
		statusRepo:   statusRepo,
		colorRepo:    colorRepo,
		userRepo:     userRepo,
		noteRepo:     noteRepo,
		activityRepo: activityRepo,
		logger:       logger,
		loc:          loc,
	}
}

// List returns the caller's pipeline items, oldest contact first. Admins see
// every item. With closedMonth set, only items in a closed status with
// activity inside the closed-deal window are returned.
func (s *PipelineItemService) List(ctx context.Context, closedMonth bool) ([]domain.PipelineItemDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	filters := &repository.PipelineItemFilters{}
	if !userCtx.IsAdmin() {
		col, owns := userCtx.OwnershipColumn()
		if !owns {
			return []domain.PipelineItemDTO{}, nil
		}
		filters.OwnerColumn = col
		filters.OwnerID = &userCtx.UserID
	}

	if closedMonth {
		closedIDs, err := s.statusRepo.ClosedStatusIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load closed statuses: %w", err)
		}
		if len(closedIDs) == 0 {
			return []domain.PipelineItemDTO{}, nil
		}
		since := time.Now().Add(-closedDealWindow)
		filters.ClosedStatusIDs = closedIDs
		filters.ClosedSince = &since
	}

	items, err := s.itemRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline items: %w", err)
	}

	return mapper.ToPipelineItemDTOs(items, time.Now()), nil
}

// Get returns a single pipeline item the caller is allowed to see
func (s *PipelineItemService) Get(ctx context.Context, id uuid.UUID) (*domain.PipelineItemDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	item, err := s.resolveItem(ctx, userCtx, id)
	if err != nil {
		return nil, err
	}

	return mapper.ToPipelineItemDTO(item, time.Now()), nil
}

// Create creates a pipeline item owned by the caller through their role's
// ownership column. Callers whose role owns nothing create unowned items.
func (s *PipelineItemService) Create(ctx context.Context, req *domain.CreatePipelineItemRequest) (*domain.PipelineItemDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	if _, err := s.statusRepo.GetByID(ctx, req.StatusID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatusNotFound
		}
		return nil, fmt.Errorf("failed to load status: %w", err)
	}

	if req.MarketColorID != nil {
		if _, err := s.colorRepo.GetByID(ctx, *req.MarketColorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMarketColorNotFound
			}
			return nil, fmt.Errorf("failed to load market color: %w", err)
		}
	}

	leadSource := req.LeadSource
	if leadSource == "" {
		leadSource = "Created by " + userCtx.DisplayName
	}

	item := &domain.PipelineItem{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Title:         req.Title,
		Dealership:    req.Dealership,
		Website:       req.Website,
		StreetAddress: req.StreetAddress,
		County:        req.County,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,

		Product:      req.Product,
		Budget:       req.Budget,
		PerCarGross:  req.PerCarGross,
		SalesGoal:    req.SalesGoal,
		SalesAverage: req.SalesAverage,

		StatusID:      req.StatusID,
		MarketColorID: req.MarketColorID,

		NumberOfContacts: 0,
		NextAction:       req.NextAction,
		LeadSource:       leadSource,
	}

	// The creating user's role determines which ownership slot they fill
	if col, owns := userCtx.OwnershipColumn(); owns {
		ownerID := userCtx.UserID
		switch col {
		case "ateam_member_id":
			item.ATeamMemberID = &ownerID
		case "sales_advisor_id":
			item.SalesAdvisorID = &ownerID
		}
	}

	if req.NextActionDate != "" {
		t, err := domain.ParseAppointment(req.NextActionDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		item.NextActionDate = &t
	}
	if err := item.SetAppointment(req.Appointment, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	for _, phone := range req.PhoneNumbers {
		item.PhoneNumbers = append(item.PhoneNumbers, domain.PipelineItemPhoneNumber{
			Type:   normalizePhoneType(phone.Type),
			Number: phone.Number,
		})
	}

	if req.Note != "" {
		item.Notes = append(item.Notes, domain.PipelineItemNote{
			UserID: userCtx.UserID,
			Body:   req.Note,
		})
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create pipeline item: %w", err)
	}

	s.logger.Info("pipeline item created",
		zap.String("item_id", item.ID.String()),
		zap.String("dealership", item.Dealership),
		zap.String("created_by", userCtx.UserID.String()),
	)

	return s.reload(ctx, item.ID)
}

// Update applies a partial update to a pipeline item. Non-admins can only
// update items they own; anything else reads as not found.
func (s *PipelineItemService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdatePipelineItemRequest) (*domain.PipelineItemDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	item, err := s.resolveItem(ctx, userCtx, id)
	if err != nil {
		return nil, err
	}

	if req.StatusID != nil {
		if _, err := s.statusRepo.GetByID(ctx, *req.StatusID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStatusNotFound
			}
			return nil, fmt.Errorf("failed to load status: %w", err)
		}
		item.StatusID = *req.StatusID
	}
	if req.MarketColorID != nil {
		if _, err := s.colorRepo.GetByID(ctx, *req.MarketColorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMarketColorNotFound
			}
			return nil, fmt.Errorf("failed to load market color: %w", err)
		}
		item.MarketColorID = req.MarketColorID
	}

	applyString(&item.Email, req.Email)
	applyString(&item.FirstName, req.FirstName)
	applyString(&item.LastName, req.LastName)
	applyString(&item.Title, req.Title)
	applyString(&item.Dealership, req.Dealership)
	applyString(&item.Website, req.Website)
	applyString(&item.StreetAddress, req.StreetAddress)
	applyString(&item.County, req.County)
	applyString(&item.City, req.City)
	applyString(&item.State, req.State)
	applyString(&item.PostalCode, req.PostalCode)
	applyString(&item.Product, req.Product)
	applyString(&item.LeadSource, req.LeadSource)
	applyString(&item.NextAction, req.NextAction)

	if req.Budget != nil {
		item.Budget = req.Budget
	}
	if req.PerCarGross != nil {
		item.PerCarGross = req.PerCarGross
	}
	if req.SalesGoal != nil {
		item.SalesGoal = req.SalesGoal
	}
	if req.SalesAverage != nil {
		item.SalesAverage = req.SalesAverage
	}

	if req.NextActionDate != nil && *req.NextActionDate != "" {
		t, err := domain.ParseAppointment(*req.NextActionDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		item.NextActionDate = &t
	}
	if req.Appointment != nil {
		if err := item.SetAppointment(*req.Appointment, s.loc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
	}
	if req.LastContactDate != nil && *req.LastContactDate != "" {
		t, err := domain.ParseAppointment(*req.LastContactDate, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		item.SetLastContactDate(t)
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update pipeline item: %w", err)
	}

	// A submitted phone number list replaces the stored set wholesale,
	// including the empty list
	if req.PhoneNumbers != nil {
		numbers := make([]domain.PipelineItemPhoneNumber, 0, len(req.PhoneNumbers))
		for _, phone := range req.PhoneNumbers {
			numbers = append(numbers, domain.PipelineItemPhoneNumber{
				Type:   normalizePhoneType(phone.Type),
				Number: phone.Number,
			})
		}
		if err := s.itemRepo.ReplacePhoneNumbers(ctx, item.ID, numbers); err != nil {
			return nil, fmt.Errorf("failed to replace phone numbers: %w", err)
		}
	}

	return s.reload(ctx, item.ID)
}

// Appointments returns items with an appointment on the given calendar day
// (m/d/Y). An empty date means today in the reference timezone.
func (s *PipelineItemService) Appointments(ctx context.Context, date string) ([]domain.PipelineItemDTO, error) {
	day := time.Now().In(s.loc)
	if date != "" {
		parsed, err := time.ParseInLocation("1/2/2006", date, s.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		day = parsed
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	items, err := s.itemRepo.ListByAppointmentRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	return mapper.ToPipelineItemDTOs(items, time.Now()), nil
}

// Transfer reassigns ownership of a pipeline item and appends one audit row.
// Admin callers are always treated as performing an admin reassign no matter
// what action they submit.
func (s *PipelineItemService) Transfer(ctx context.Context, id uuid.UUID, req *domain.TransferRequest) (*domain.TransferActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	item, err := s.resolveItem(ctx, userCtx, id)
	if err != nil {
		return nil, err
	}

	action := domain.TransferAction(req.TransferAction)
	if userCtx.IsAdmin() {
		action = domain.TransferAdminReassign
	}
	if !action.IsValid() {
		return nil, ErrInvalidTransferAction
	}

	target, err := s.userRepo.GetByID(ctx, req.TransferToID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load transfer target: %w", err)
	}

	var oldID *uuid.UUID
	targetID := target.ID

	switch action {
	case domain.TransferToATeam:
		oldID = item.ATeamMemberID
		item.ATeamMemberID = &targetID

	case domain.TransferToSales:
		// Handing a lead to sales restarts the working cycle
		oldID = item.SalesAdvisorID
		item.SalesAdvisorID = &targetID
		newLead, err := s.statusRepo.GetByCode(ctx, domain.StatusCodeNewLead)
		if err != nil {
			return nil, fmt.Errorf("failed to load new lead status: %w", err)
		}
		item.StatusID = newLead.ID
		item.NumberOfContacts = 0

	case domain.TransferAdminReassign:
		// The target's role decides which ownership slot changes. A target
		// whose role owns nothing leaves the item untouched but the
		// transfer is still recorded.
		switch target.Role {
		case domain.RoleATeamMember:
			oldID = item.ATeamMemberID
			item.ATeamMemberID = &targetID
		case domain.RoleSalesAdvisor:
			oldID = item.SalesAdvisorID
			item.SalesAdvisorID = &targetID
		}
	}

	now := time.Now()
	item.TransferredOn = &now

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to transfer pipeline item: %w", err)
	}

	activity := &domain.TransferActivity{
		PipelineItemID: item.ID,
		Action:         action,
		InitiatedBy:    userCtx.UserID,
		OldID:          oldID,
		NewID:          &targetID,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record transfer activity: %w", err)
	}

	s.logger.Info("pipeline item transferred",
		zap.String("item_id", item.ID.String()),
		zap.String("action", string(action)),
		zap.String("initiated_by", userCtx.UserID.String()),
		zap.String("transferred_to", targetID.String()),
	)

	return mapper.ToTransferActivityDTO(activity), nil
}

// AddNote appends a note to a pipeline item
func (s *PipelineItemService) AddNote(ctx context.Context, itemID uuid.UUID, req *domain.CreateNoteRequest) (*domain.NoteDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrPermissionDenied
	}

	item, err := s.resolveItem(ctx, userCtx, itemID)
	if err != nil {
		return nil, err
	}

	note := &domain.PipelineItemNote{
		PipelineItemID: item.ID,
		UserID:         userCtx.UserID,
		Body:           req.Body,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	created, err := s.noteRepo.GetByID(ctx, note.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load note: %w", err)
	}

	dto := mapper.ToNoteDTO(created)
	return &dto, nil
}

// Delete soft deletes a pipeline item
func (s *PipelineItemService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrPermissionDenied
	}

	item, err := s.resolveItem(ctx, userCtx, id)
	if err != nil {
		return err
	}

	if err := s.itemRepo.Delete(ctx, item.ID); err != nil {
		return fmt.Errorf("failed to delete pipeline item: %w", err)
	}

	s.logger.Info("pipeline item deleted",
		zap.String("item_id", item.ID.String()),
		zap.String("deleted_by", userCtx.UserID.String()),
	)
	return nil
}

// resolveItem fetches an item under the caller's visibility rules: admins
// reach any item, owners reach their own, everything else is not found.
func (s *PipelineItemService) resolveItem(ctx context.Context, userCtx *auth.UserContext, id uuid.UUID) (*domain.PipelineItem, error) {
	var (
		item *domain.PipelineItem
		err  error
	)

	if userCtx.IsAdmin() {
		item, err = s.itemRepo.GetByID(ctx, id)
	} else {
		col, owns := userCtx.OwnershipColumn()
		if !owns {
			return nil, ErrNotFound
		}
		item, err = s.itemRepo.GetOwned(ctx, id, col, userCtx.UserID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load pipeline item: %w", err)
	}
	return item, nil
}

func (s *PipelineItemService) reload(ctx context.Context, id uuid.UUID) (*domain.PipelineItemDTO, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload pipeline item: %w", err)
	}
	return mapper.ToPipelineItemDTO(item, time.Now()), nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func normalizePhoneType(t string) string {
	if t == "" {
		return "Office"
	}
	return t
}
