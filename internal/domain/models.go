package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns the id. Generating ids in the hook rather than a
// column default keeps inserts working on every driver; the SQL migration
// still carries gen_random_uuid() as a safety net for out-of-band inserts.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents the sales role of a user
type UserRole string

const (
	RoleATeamMember  UserRole = "ATeam Member"
	RoleSalesAdvisor UserRole = "Sales Advisor"
	RoleAdmin        UserRole = "Admin"
)

// OwnershipColumns maps a user role to the pipeline item column that
// represents ownership by that role. Roles without an entry (Admin included)
// never own items directly.
var OwnershipColumns = map[UserRole]string{
	RoleATeamMember:  "ateam_member_id",
	RoleSalesAdvisor: "sales_advisor_id",
}

// OwnershipColumn returns the ownership column for a role, or false when the
// role does not own pipeline items.
func OwnershipColumn(role UserRole) (string, bool) {
	col, ok := OwnershipColumns[role]
	return col, ok
}

// User represents a user in the system. Authentication is external; this
// table mirrors the id, display data, and sales role the API needs.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"type:varchar(255);not null;unique" json:"email"`
	FirstName   string    `gorm:"type:varchar(100);column:first_name" json:"firstName,omitempty"`
	LastName    string    `gorm:"type:varchar(100);column:last_name" json:"lastName,omitempty"`
	DisplayName string    `gorm:"type:varchar(200);not null;column:display_name" json:"displayName"`
	Role        UserRole  `gorm:"type:varchar(50);not null;index" json:"role"`
	IsActive    bool      `gorm:"not null;default:true;column:is_active" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}


// BeforeCreate assigns the id before insert
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName returns the user's full name, or display name if first/last not set
func (u *User) FullName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.DisplayName
}

// StatusCode identifies a seeded pipeline status. new_lead is the status a
// lead returns to on a to-sales transfer.
type StatusCode string

const (
	StatusCodeNewLead     StatusCode = "new_lead"
	StatusCodeContacted   StatusCode = "contacted"
	StatusCodeAppointment StatusCode = "appointment_set"
	StatusCodeNegotiating StatusCode = "negotiating"
	StatusCodeSold        StatusCode = "sold"
	StatusCodeDelivered   StatusCode = "delivered"
	StatusCodeLost        StatusCode = "lost"
)

// PipelineStatus is a lookup row for the workflow status of a pipeline item.
// Rows with IsClosed=true form the fixed "closed deal" subset.
type PipelineStatus struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code      StatusCode `gorm:"type:varchar(50);not null;unique" json:"code"`
	Label     string     `gorm:"type:varchar(100);not null" json:"label"`
	IsClosed  bool       `gorm:"not null;default:false;column:is_closed" json:"isClosed"`
	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// TableName overrides the default table name
func (PipelineStatus) TableName() string {
	return "pipeline_statuses"
}

// BeforeCreate assigns the id before insert
func (s *PipelineStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// MarketColor is a lookup row used to color-code leads by market
type MarketColor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(50);not null;unique" json:"code"`
	Label     string    `gorm:"type:varchar(100);not null" json:"label"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// BeforeCreate assigns the id before insert
func (m *MarketColor) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PipelineItem represents a sales lead in the pipeline
type PipelineItem struct {
	BaseModel
	Email         string `gorm:"type:varchar(255)"`
	FirstName     string `gorm:"type:varchar(140);not null;column:first_name"`
	LastName      string `gorm:"type:varchar(140);column:last_name"`
	Title         string `gorm:"type:varchar(140)"`
	Dealership    string `gorm:"type:varchar(140);not null;index"`
	Website       string `gorm:"type:varchar(240)"`
	StreetAddress string `gorm:"type:varchar(255);column:street_address"`
	County        string `gorm:"type:varchar(140)"`
	City          string `gorm:"type:varchar(140)"`
	State         string `gorm:"type:varchar(70)"`
	PostalCode    string `gorm:"type:varchar(20);column:postal_code"`

	Product      string   `gorm:"type:varchar(200)"`
	Budget       *float64 `gorm:"type:decimal(15,2)"`
	PerCarGross  *float64 `gorm:"type:decimal(15,2);column:per_car_gross"`
	SalesGoal    *float64 `gorm:"type:decimal(15,2);column:sales_goal"`
	SalesAverage *float64 `gorm:"type:decimal(15,2);column:sales_average"`

	StatusID      uuid.UUID       `gorm:"type:uuid;not null;index;column:status_id"`
	Status        *PipelineStatus `gorm:"foreignKey:StatusID"`
	MarketColorID *uuid.UUID      `gorm:"type:uuid;column:market_color_id"`
	MarketColor   *MarketColor    `gorm:"foreignKey:MarketColorID"`

	ATeamMemberID       *uuid.UUID `gorm:"type:uuid;index;column:ateam_member_id"`
	ATeamMemberProfile  *User      `gorm:"foreignKey:ATeamMemberID"`
	SalesAdvisorID      *uuid.UUID `gorm:"type:uuid;index;column:sales_advisor_id"`
	SalesAdvisorProfile *User      `gorm:"foreignKey:SalesAdvisorID"`

	NumberOfContacts int        `gorm:"not null;default:0;column:number_of_contacts"`
	LastContactDate  *time.Time `gorm:"column:last_contact_date"`
	NextAction       string     `gorm:"type:varchar(255);column:next_action"`
	NextActionDate   *time.Time `gorm:"column:next_action_date"`
	Appointment      *time.Time `gorm:"index"`
	TransferredOn    *time.Time `gorm:"column:transferred_on"`
	LeadSource       string     `gorm:"type:varchar(200);column:lead_source"`

	PhoneNumbers []PipelineItemPhoneNumber `gorm:"foreignKey:PipelineItemID;constraint:OnDelete:CASCADE"`
	Notes        []PipelineItemNote        `gorm:"foreignKey:PipelineItemID;constraint:OnDelete:CASCADE"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SetLastContactDate records a contact with the lead. Every call bumps
// NumberOfContacts by one; all writes to LastContactDate go through here so
// the counter can never drift from the field.
func (p *PipelineItem) SetLastContactDate(t time.Time) {
	p.LastContactDate = &t
	p.NumberOfContacts++
}

// Accepted appointment layouts, tried in order. Clients send m/d/Y with an
// optional time component.
var appointmentLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 3:04 PM",
	"1/2/2006",
	time.RFC3339,
}

// ParseAppointment normalizes a raw appointment value to a timestamp. Wall
// times are interpreted in loc so that a date-only value lands on that
// calendar day in the reference timezone, not UTC.
func ParseAppointment(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range appointmentLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized appointment date %q", raw)
}

// SetAppointment parses and stores an appointment value. An empty value
// leaves the field untouched.
func (p *PipelineItem) SetAppointment(raw string, loc *time.Location) error {
	if raw == "" {
		return nil
	}
	t, err := ParseAppointment(raw, loc)
	if err != nil {
		return err
	}
	p.Appointment = &t
	return nil
}

// DaysWorking returns the number of whole days the lead has been worked
// since it was last transferred, or nil when it never was. Derived on every
// read, never persisted.
func (p *PipelineItem) DaysWorking(now time.Time) *int {
	if p.TransferredOn == nil {
		return nil
	}
	days := int(now.Sub(*p.TransferredOn).Hours() / 24)
	return &days
}

// PipelineItemPhoneNumber belongs to exactly one pipeline item. Numbers are
// replaced wholesale on update, never patched individually.
type PipelineItemPhoneNumber struct {
	BaseModel
	PipelineItemID uuid.UUID `gorm:"type:uuid;not null;index;column:pipeline_item_id"`
	Type           string    `gorm:"type:varchar(50);not null;default:'Office'"`
	Number         string    `gorm:"type:varchar(50);not null"`
}

// PipelineItemNote is a free-text note on a pipeline item
type PipelineItemNote struct {
	BaseModel
	PipelineItemID uuid.UUID `gorm:"type:uuid;not null;index;column:pipeline_item_id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;column:user_id"`
	UserProfile    *User     `gorm:"foreignKey:UserID"`
	Body           string    `gorm:"type:text;not null"`
}

// TransferAction represents the kind of ownership transfer performed
type TransferAction string

const (
	TransferToATeam       TransferAction = "to-ateam"
	TransferToSales       TransferAction = "to-sales"
	TransferAdminReassign TransferAction = "admin-reassign"
)

// IsValid checks if the TransferAction is a valid enum value
func (a TransferAction) IsValid() bool {
	switch a {
	case TransferToATeam, TransferToSales, TransferAdminReassign:
		return true
	}
	return false
}

// TransferActivity is an append-only audit row for an ownership transfer.
// The meaning of OldID/NewID depends on Action: ATeam member ids for
// to-ateam, sales advisor ids for to-sales, either for admin-reassign.
// Rows are never updated or deleted once written.
type TransferActivity struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	PipelineItemID   uuid.UUID      `gorm:"type:uuid;not null;index;column:pipeline_item_id"`
	Action           TransferAction `gorm:"type:varchar(50);not null;index"`
	InitiatedBy      uuid.UUID      `gorm:"type:uuid;not null;column:initiated_by"`
	InitiatorProfile *User          `gorm:"foreignKey:InitiatedBy"`
	OldID            *uuid.UUID     `gorm:"type:uuid;column:old_id"`
	NewID            *uuid.UUID     `gorm:"type:uuid;column:new_id"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// TableName overrides the default table name
func (TransferActivity) TableName() string {
	return "transfer_activities"
}

// BeforeCreate assigns the id before insert
func (a *TransferActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
