package domain

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the standard response wrapper: {"success": bool, "data": ...}
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// PhoneNumberInput is a phone number submitted with a create or update
type PhoneNumberInput struct {
	Type   string `json:"type" validate:"omitempty,max=50"`
	Number string `json:"number" validate:"required,max=50"`
}

// CreatePipelineItemRequest is the payload for creating a pipeline item.
// Required fields match the original intake form: first name, dealership,
// and an existing status.
type CreatePipelineItemRequest struct {
	Email         string `json:"email" validate:"omitempty,email"`
	FirstName     string `json:"first_name" validate:"required,max=140"`
	LastName      string `json:"last_name" validate:"omitempty,max=140"`
	Title         string `json:"title" validate:"omitempty,max=140"`
	Dealership    string `json:"dealership" validate:"required,max=140"`
	Website       string `json:"website" validate:"omitempty,max=240"`
	StreetAddress string `json:"street_address" validate:"omitempty,max=255"`
	County        string `json:"county" validate:"omitempty,max=140"`
	City          string `json:"city" validate:"omitempty,max=140"`
	State         string `json:"state" validate:"omitempty,max=70"`
	PostalCode    string `json:"postal_code" validate:"omitempty,max=20"`

	Product      string   `json:"product" validate:"omitempty,max=200"`
	Budget       *float64 `json:"budget" validate:"omitempty,lte=99999999"`
	PerCarGross  *float64 `json:"per_car_gross"`
	SalesGoal    *float64 `json:"sales_goal"`
	SalesAverage *float64 `json:"sales_average"`

	StatusID      uuid.UUID  `json:"status_id" validate:"required"`
	MarketColorID *uuid.UUID `json:"market_color_id"`

	LeadSource     string `json:"lead_source" validate:"omitempty,max=200"`
	NextAction     string `json:"next_action" validate:"omitempty,max=255"`
	NextActionDate string `json:"next_action_date"`
	Appointment    string `json:"appointment"`

	PhoneNumbers []PhoneNumberInput `json:"phone_numbers" validate:"omitempty,dive"`
	Note         string             `json:"note"`
}

// UpdatePipelineItemRequest is the payload for updating a pipeline item.
// All fields are optional; absent fields are left untouched.
type UpdatePipelineItemRequest struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	FirstName     *string `json:"first_name" validate:"omitempty,max=140"`
	LastName      *string `json:"last_name" validate:"omitempty,max=140"`
	Title         *string `json:"title" validate:"omitempty,max=140"`
	Dealership    *string `json:"dealership" validate:"omitempty,max=140"`
	Website       *string `json:"website" validate:"omitempty,max=240"`
	StreetAddress *string `json:"street_address" validate:"omitempty,max=255"`
	County        *string `json:"county" validate:"omitempty,max=140"`
	City          *string `json:"city" validate:"omitempty,max=140"`
	State         *string `json:"state" validate:"omitempty,max=70"`
	PostalCode    *string `json:"postal_code" validate:"omitempty,max=20"`

	Product      *string  `json:"product" validate:"omitempty,max=200"`
	Budget       *float64 `json:"budget" validate:"omitempty,lte=99999999"`
	PerCarGross  *float64 `json:"per_car_gross"`
	SalesGoal    *float64 `json:"sales_goal"`
	SalesAverage *float64 `json:"sales_average"`

	StatusID      *uuid.UUID `json:"status_id"`
	MarketColorID *uuid.UUID `json:"market_color_id"`

	LeadSource      *string `json:"lead_source" validate:"omitempty,max=200"`
	NextAction      *string `json:"next_action" validate:"omitempty,max=255"`
	NextActionDate  *string `json:"next_action_date"`
	Appointment     *string `json:"appointment"`
	LastContactDate *string `json:"last_contact_date"`

	PhoneNumbers []PhoneNumberInput `json:"phone_numbers" validate:"omitempty,dive"`
}

// TransferRequest is the payload for transferring a pipeline item
type TransferRequest struct {
	TransferAction string    `json:"transferAction" validate:"required"`
	TransferToID   uuid.UUID `json:"transferToId" validate:"required"`
}

// CreateNoteRequest is the payload for appending a note to a pipeline item
type CreateNoteRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// PhoneNumberDTO is the API representation of a phone number
type PhoneNumberDTO struct {
	ID     uuid.UUID `json:"id"`
	Type   string    `json:"type"`
	Number string    `json:"number"`
}

// NoteDTO is the API representation of a note with its author profile
type NoteDTO struct {
	ID          uuid.UUID       `json:"id"`
	Body        string          `json:"body"`
	UserProfile *UserProfileDTO `json:"user_profile,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// UserProfileDTO is the trimmed user representation embedded in responses
type UserProfileDTO struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Role        UserRole  `json:"role"`
}

// PipelineItemDTO is the API representation of a pipeline item, including
// the derived days_working field.
type PipelineItemDTO struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	Title         string    `json:"title,omitempty"`
	Dealership    string    `json:"dealership"`
	Website       string    `json:"website,omitempty"`
	StreetAddress string    `json:"street_address,omitempty"`
	County        string    `json:"county,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`

	Product      string   `json:"product,omitempty"`
	Budget       *float64 `json:"budget,omitempty"`
	PerCarGross  *float64 `json:"per_car_gross,omitempty"`
	SalesGoal    *float64 `json:"sales_goal,omitempty"`
	SalesAverage *float64 `json:"sales_average,omitempty"`

	StatusID      uuid.UUID       `json:"status_id"`
	Status        *PipelineStatus `json:"status,omitempty"`
	MarketColorID *uuid.UUID      `json:"market_color_id,omitempty"`
	MarketColor   *MarketColor    `json:"market_color,omitempty"`

	ATeamMemberID       *uuid.UUID      `json:"ateam_member_id,omitempty"`
	ATeamMemberProfile  *UserProfileDTO `json:"ateam_member_profile,omitempty"`
	SalesAdvisorID      *uuid.UUID      `json:"sales_advisor_id,omitempty"`
	SalesAdvisorProfile *UserProfileDTO `json:"sales_advisor_profile,omitempty"`

	NumberOfContacts int        `json:"number_of_contacts"`
	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	NextAction       string     `json:"next_action,omitempty"`
	NextActionDate   *time.Time `json:"next_action_date,omitempty"`
	Appointment      *time.Time `json:"appointment,omitempty"`
	TransferredOn    *time.Time `json:"transferred_on,omitempty"`
	LeadSource       string     `json:"lead_source,omitempty"`
	DaysWorking      *int       `json:"days_working"`

	PhoneNumbers []PhoneNumberDTO `json:"phone_numbers"`
	Notes        []NoteDTO        `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransferActivityDTO is the API representation of an audit row
type TransferActivityDTO struct {
	ID               uuid.UUID       `json:"id"`
	PipelineItemID   uuid.UUID       `json:"pipeline_item_id"`
	Action           TransferAction  `json:"action"`
	InitiatedBy      uuid.UUID       `json:"initiated_by"`
	InitiatorProfile *UserProfileDTO `json:"initiator_profile,omitempty"`
	OldID            *uuid.UUID      `json:"old_id"`
	NewID            *uuid.UUID      `json:"new_id"`
	CreatedAt        time.Time       `json:"created_at"`
}
