package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventpilot/internal/analytics"
	"eventpilot/internal/models"
)

// TestEvent mirrors models.Event but compatible with SQLite (no Postgres
// specific defaults)
type TestEvent struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	OwnerID       uint                   `gorm:"not null;index"`
	Title         string                 `gorm:"size:255;not null"`
	Description   string                 `gorm:"type:text"`
	Category      string                 `gorm:"size:100;index"`
	Date          *time.Time             `gorm:"index"`
	Status        models.EventStatus     `gorm:"size:50;not null;default:coming_soon;index"`
	MarkupType    analytics.MarkupType   `gorm:"size:20;not null;default:percentage"`
	MarkupValue   decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountType  analytics.DiscountType `gorm:"size:20;not null;default:none"`
	DiscountValue decimal.Decimal        `gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TestEvent) TableName() string {
	return "events"
}

// TestLineItem mirrors models.LineItem
type TestLineItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name      string          `gorm:"size:255;not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TestLineItem) TableName() string {
	return "line_items"
}

// TestAttendanceStat mirrors models.AttendanceStat
type TestAttendanceStat struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ExpectedAttendees int       `gorm:"not null;default:0"`
	EventAttendees    int       `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (TestAttendanceStat) TableName() string {
	return "attendance_stats"
}

// TestFeedbackResponse mirrors models.FeedbackResponse
type TestFeedbackResponse struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	EventID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	UserID    *uint             `gorm:"index"`
	Rating    *float64          `gorm:"type:decimal(3,1)"`
	Sentiment *models.Sentiment `gorm:"size:20"`
	Comment   string            `gorm:"type:text"`
	CreatedAt time.Time
}

func (TestFeedbackResponse) TableName() string {
	return "feedback_responses"
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&TestEvent{},
		&TestLineItem{},
		&TestAttendanceStat{},
		&TestFeedbackResponse{},
		&models.EventCollaborator{},
		&models.SubscriptionPlan{},
		&models.InsightUsage{},
		&models.Insight{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The memory DB is shared across the package; start each test clean
	for _, table := range []string{
		"insights", "insight_usage", "subscription_plans", "event_collaborators",
		"feedback_responses", "attendance_stats", "line_items", "events", "users",
	} {
		db.Exec("DELETE FROM " + table)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, id uint, plan string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Plan:         plan,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, ownerID uint, title string, mutate func(*TestEvent)) TestEvent {
	t.Helper()
	event := TestEvent{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		Title:         title,
		Status:        models.EventStatusComingSoon,
		MarkupType:    analytics.MarkupPercentage,
		MarkupValue:   decimal.Zero,
		DiscountType:  analytics.DiscountNone,
		DiscountValue: decimal.Zero,
	}
	if mutate != nil {
		mutate(&event)
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return event
}

func createTestItem(t *testing.T, db *gorm.DB, eventID uuid.UUID, cost int64, quantity int) TestLineItem {
	t.Helper()
	item := TestLineItem{
		ID:       uuid.New(),
		EventID:  eventID,
		Name:     "item",
		Cost:     decimal.NewFromInt(cost),
		Quantity: quantity,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to create line item: %v", err)
	}
	return item
}
