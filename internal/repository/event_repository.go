package repository

import (
	"context"
	"time"

	"eventpilot/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateEvent creates a new event
func (r *Repository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEventByID retrieves an event by ID
func (r *Repository) GetEventByID(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent saves an event
func (r *Repository) UpdateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// DeleteEvent removes an event and its dependent rows
func (r *Repository) DeleteEvent(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", eventID).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.AttendanceStat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.FeedbackResponse{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", eventID).Delete(&models.EventCollaborator{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", eventID).Delete(&models.Event{}).Error
	})
}

// GetOwnedEvents retrieves all events owned by a user
func (r *Repository) GetOwnedEvents(ctx context.Context, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetJoinedEvents retrieves events the user collaborates on. When the
// collaborator table has no rows for the user, it falls back to the events
// the user has submitted feedback for.
func (r *Repository) GetJoinedEvents(ctx context.Context, userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.WithContext(ctx).
		Joins("JOIN event_collaborators ON event_collaborators.event_id = events.id").
		Where("event_collaborators.user_id = ?", userID).
		Order("events.created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	if len(events) > 0 {
		return events, nil
	}

	// Fallback path: events the user responded to
	err = r.db.WithContext(ctx).
		Where("id IN (?)", r.db.Model(&models.FeedbackResponse{}).
			Select("DISTINCT event_id").
			Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// AddCollaborator links a user to an event
func (r *Repository) AddCollaborator(ctx context.Context, collab *models.EventCollaborator) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(collab).Error
}

// CreateLineItem creates a line item for an event
func (r *Repository) CreateLineItem(ctx context.Context, item *models.LineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// DeleteLineItem removes a line item from an event
func (r *Repository) DeleteLineItem(ctx context.Context, eventID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND event_id = ?", itemID, eventID).
		Delete(&models.LineItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetLineItems retrieves line items for a set of events
func (r *Repository) GetLineItems(ctx context.Context, eventIDs []uuid.UUID) ([]models.LineItem, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	var items []models.LineItem
	err := r.db.WithContext(ctx).
		Where("event_id IN ?", eventIDs).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetAttendanceStats retrieves attendance rows for a set of events
func (r *Repository) GetAttendanceStats(ctx context.Context, eventIDs []uuid.UUID) ([]models.AttendanceStat, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	var stats []models.AttendanceStat
	err := r.db.WithContext(ctx).
		Where("event_id IN ?", eventIDs).
		Find(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// UpsertAttendance creates or overwrites the single attendance row for an
// event (conflict target: event id)
func (r *Repository) UpsertAttendance(ctx context.Context, stat *models.AttendanceStat) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"expected_attendees": stat.ExpectedAttendees,
			"event_attendees":    stat.EventAttendees,
			"updated_at":         time.Now(),
		}),
	}).Create(stat).Error
}

// CreateFeedback stores one feedback response
func (r *Repository) CreateFeedback(ctx context.Context, feedback *models.FeedbackResponse) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

// GetFeedback retrieves feedback responses for a set of events
func (r *Repository) GetFeedback(ctx context.Context, eventIDs []uuid.UUID) ([]models.FeedbackResponse, error) {
	if len(eventIDs) == 0 {
		return nil, nil
	}
	var responses []models.FeedbackResponse
	err := r.db.WithContext(ctx).
		Where("event_id IN ?", eventIDs).
		Order("created_at DESC").
		Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetPlanByName retrieves a subscription plan by name
func (r *Repository) GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
