package mapper

import (
	"time"

	"github.com/motorlane/pipeline-api/internal/domain"
)

// ToUserProfileDTO converts a user to its trimmed API profile
func ToUserProfileDTO(user *domain.User) *domain.UserProfileDTO {
	if user == nil {
		return nil
	}
	return &domain.UserProfileDTO{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	}
}

// ToPhoneNumberDTO converts a phone number to its API representation
func ToPhoneNumberDTO(phone *domain.PipelineItemPhoneNumber) domain.PhoneNumberDTO {
	return domain.PhoneNumberDTO{
		ID:     phone.ID,
		Type:   phone.Type,
		Number: phone.Number,
	}
}

// ToNoteDTO converts a note to its API representation
func ToNoteDTO(note *domain.PipelineItemNote) domain.NoteDTO {
	return domain.NoteDTO{
		ID:          note.ID,
		Body:        note.Body,
		UserProfile: ToUserProfileDTO(note.UserProfile),
		CreatedAt:   note.CreatedAt,
	}
}

// ToPipelineItemDTO converts a pipeline item to its API representation.
// days_working is computed against now at conversion time.
func ToPipelineItemDTO(item *domain.PipelineItem, now time.Time) *domain.PipelineItemDTO {
	dto := &domain.PipelineItemDTO{
		ID:            item.ID,
		Email:         item.Email,
		FirstName:     item.FirstName,
		LastName:      item.LastName,
		Title:         item.Title,
		Dealership:    item.Dealership,
		Website:       item.Website,
		StreetAddress: item.StreetAddress,
		County:        item.County,
		City:          item.City,
		State:         item.State,
		PostalCode:    item.PostalCode,

		Product:      item.Product,
		Budget:       item.Budget,
		PerCarGross:  item.PerCarGross,
		SalesGoal:    item.SalesGoal,
		SalesAverage: item.SalesAverage,

		StatusID:      item.StatusID,
		Status:        item.Status,
		MarketColorID: item.MarketColorID,
		MarketColor:   item.MarketColor,

		ATeamMemberID:       item.ATeamMemberID,
		ATeamMemberProfile:  ToUserProfileDTO(item.ATeamMemberProfile),
		SalesAdvisorID:      item.SalesAdvisorID,
		SalesAdvisorProfile: ToUserProfileDTO(item.SalesAdvisorProfile),

		NumberOfContacts: item.NumberOfContacts,
		LastContactDate:  item.LastContactDate,
		NextAction:       item.NextAction,
		NextActionDate:   item.NextActionDate,
		Appointment:      item.Appointment,
		TransferredOn:    item.TransferredOn,
		LeadSource:       item.LeadSource,
		DaysWorking:      item.DaysWorking(now),

		PhoneNumbers: make([]domain.PhoneNumberDTO, 0, len(item.PhoneNumbers)),
		Notes:        make([]domain.NoteDTO, 0, len(item.Notes)),

		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}

	for i := range item.PhoneNumbers {
		dto.PhoneNumbers = append(dto.PhoneNumbers, ToPhoneNumberDTO(&item.PhoneNumbers[i]))
	}
	for i := range item.Notes {
		dto.Notes = append(dto.Notes, ToNoteDTO(&item.Notes[i]))
	}

	return dto
}

// ToPipelineItemDTOs converts a slice of pipeline items
func ToPipelineItemDTOs(items []domain.PipelineItem, now time.Time) []domain.PipelineItemDTO {
	dtos := make([]domain.PipelineItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *ToPipelineItemDTO(&items[i], now))
	}
	return dtos
}

// ToTransferActivityDTO converts an audit row to its API representation
func ToTransferActivityDTO(activity *domain.TransferActivity) *domain.TransferActivityDTO {
	return &domain.TransferActivityDTO{
		ID:               activity.ID,
		PipelineItemID:   activity.PipelineItemID,
		Action:           activity.Action,
		InitiatedBy:      activity.InitiatedBy,
		InitiatorProfile: ToUserProfileDTO(activity.InitiatorProfile),
		OldID:            activity.OldID,
		NewID:            activity.NewID,
		CreatedAt:        activity.CreatedAt,
	}
}

// ToTransferActivityDTOs converts a slice of audit rows
func ToTransferActivityDTOs(activities []domain.TransferActivity) []domain.TransferActivityDTO {
	dtos := make([]domain.TransferActivityDTO, 0, len(activities))
	for i := range activities {
		dtos = append(dtos, *ToTransferActivityDTO(&activities[i]))
	}
	return dtos
}
