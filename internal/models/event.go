package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
)

type EventStatus string

const (
	EventStatusComingSoon EventStatus = "coming_soon"
	EventStatusOngoing    EventStatus = "ongoing"
	EventStatusDone       EventStatus = "done"
	EventStatusCancelled  EventStatus = "cancelled"
	EventStatusArchived   EventStatus = "archived"
)

// Event represents a single planned event with its pricing rule
type Event struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID       uint                   `gorm:"not null;index" json:"owner_id"`
	Title         string                 `gorm:"size:255;not null" json:"title"`
	Description   string                 `gorm:"type:text" json:"description"`
	Category      string                 `gorm:"size:100;index" json:"category"`
	Date          *time.Time             `gorm:"index" json:"date"`
	Status        EventStatus            `gorm:"size:50;not null;default:coming_soon;index" json:"status"`
	MarkupType    analytics.MarkupType   `gorm:"size:20;not null;default:percentage" json:"markup_type"`
	MarkupValue   decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0" json:"markup_value"`
	DiscountType  analytics.DiscountType `gorm:"size:20;not null;default:none" json:"discount_type"`
	DiscountValue decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0" json:"discount_value"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

// PricingRule extracts the event's markup/discount configuration
func (e *Event) PricingRule() analytics.PricingRule {
	return analytics.PricingRule{
		MarkupType:    e.MarkupType,
		MarkupValue:   e.MarkupValue,
		DiscountType:  e.DiscountType,
		DiscountValue: e.DiscountValue,
	}
}

// LineItem belongs to exactly one event and contributes cost * quantity
// to the event's base cost
type LineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"event_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (LineItem) TableName() string {
	return "line_items"
}

// AttendanceStat holds expected vs. actual counts, at most one row per event
type AttendanceStat struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"event_id"`
	ExpectedAttendees int       `gorm:"not null;default:0" json:"expected_attendees"`
	EventAttendees    int       `gorm:"not null;default:0" json:"event_attendees"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (AttendanceStat) TableName() string {
	return "attendance_stats"
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// FeedbackResponse is one attendee response. Rating is optional; responses
// without a numeric rating still count toward the response total.
type FeedbackResponse struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID    *uint      `gorm:"index" json:"user_id,omitempty"`
	Rating    *float64   `gorm:"type:decimal(3,1)" json:"rating,omitempty"`
	Sentiment *Sentiment `gorm:"size:20" json:"sentiment,omitempty"`
	Comment   string     `gorm:"type:text" json:"comment"`
	CreatedAt time.Time  `json:"created_at"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}

// EventCollaborator links a user to an event they joined
type EventCollaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index:idx_event_collab,unique" json:"event_id"`
	UserID    uint      `gorm:"not null;index:idx_event_collab,unique" json:"user_id"`
	Role      string    `gorm:"size:50;not null;default:member" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (EventCollaborator) TableName() string {
	return "event_collaborators"
}

// CreateEventRequest represents a request to create an event
type CreateEventRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Date          *time.Time      `json:"date"`
	MarkupType    string          `json:"markup_type"`
	MarkupValue   decimal.Decimal `json:"markup_value"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

// UpdateEventRequest carries partial event updates
type UpdateEventRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Date          *time.Time       `json:"date"`
	Status        *string          `json:"status"`
	MarkupType    *string          `json:"markup_type"`
	MarkupValue   *decimal.Decimal `json:"markup_value"`
	DiscountType  *string          `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
}

// CreateLineItemRequest represents a request to add a line item
type CreateLineItemRequest struct {
	Name     string          `json:"name" binding:"required"`
	Cost     decimal.Decimal `json:"cost" binding:"required"`
	Quantity int             `json:"quantity"`
}

// AddCollaboratorRequest links a user to an event
type AddCollaboratorRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

// UpsertAttendanceRequest sets expected/actual attendee counts
type UpsertAttendanceRequest struct {
	ExpectedAttendees int `json:"expected_attendees" binding:"min=0"`
	EventAttendees    int `json:"event_attendees" binding:"min=0"`
}

// CreateFeedbackRequest represents one feedback submission
type CreateFeedbackRequest struct {
	Rating    *float64 `json:"rating"`
	Sentiment *string  `json:"sentiment"`
	Comment   string   `json:"comment"`
}
