package repository

import (
	"context"
	"time"

	"eventpilot/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetOrCreateUserUsage resolves the quota row for (user, week), creating it
// on first check with the ceiling from the caller's current plan.
func (r *Repository) GetOrCreateUserUsage(ctx context.Context, userID uint, weekStart time.Time, maxInsights int) (*models.InsightUsage, error) {
	var usage models.InsightUsage
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&usage).Error

	if err == gorm.ErrRecordNotFound {
		usage = models.InsightUsage{
			UserID:      &userID,
			WeekStart:   weekStart,
			MaxInsights: maxInsights,
		}
		if err := r.db.WithContext(ctx).Create(&usage).Error; err != nil {
			return nil, err
		}
		return &usage, nil
	}
	if err != nil {
		return nil, err
	}

	// The ceiling is authoritative per check; pick up plan changes mid-week.
	if usage.MaxInsights != maxInsights {
		usage.MaxInsights = maxInsights
		if err := r.db.WithContext(ctx).Save(&usage).Error; err != nil {
			return nil, err
		}
	}
	return &usage, nil
}

// GetOrCreateEventUsage resolves the quota row for (event, week)
func (r *Repository) GetOrCreateEventUsage(ctx context.Context, eventID uuid.UUID, weekStart time.Time, maxInsights int) (*models.InsightUsage, error) {
	var usage models.InsightUsage
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND week_start = ?", eventID, weekStart).
		First(&usage).Error

	if err == gorm.ErrRecordNotFound {
		usage = models.InsightUsage{
			EventID:     &eventID,
			WeekStart:   weekStart,
			MaxInsights: maxInsights,
		}
		if err := r.db.WithContext(ctx).Create(&usage).Error; err != nil {
			return nil, err
		}
		return &usage, nil
	}
	if err != nil {
		return nil, err
	}

	if usage.MaxInsights != maxInsights {
		usage.MaxInsights = maxInsights
		if err := r.db.WithContext(ctx).Save(&usage).Error; err != nil {
			return nil, err
		}
	}
	return &usage, nil
}

// ReserveInsight increments the generation counter if and only if quota
// remains. The conditional update means two racing requests cannot both
// take the last slot. Returns false when the ceiling is already reached.
func (r *Repository) ReserveInsight(ctx context.Context, usageID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.InsightUsage{}).
		Where("id = ? AND insights_generated < max_insights", usageID).
		Updates(map[string]interface{}{
			"insights_generated": gorm.Expr("insights_generated + 1"),
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertEventInsight overwrites the stored insight for an event
func (r *Repository) UpsertEventInsight(ctx context.Context, insight *models.Insight) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content":    insight.Content,
			"source":     insight.Source,
			"week_start": insight.WeekStart,
			"updated_at": time.Now(),
		}),
	}).Create(insight).Error
}

// UpsertUserInsight overwrites the stored insight for (user, week)
func (r *Repository) UpsertUserInsight(ctx context.Context, insight *models.Insight) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "week_start"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"content":    insight.Content,
			"source":     insight.Source,
			"updated_at": time.Now(),
		}),
	}).Create(insight).Error
}

// GetEventInsight retrieves the latest insight for an event
func (r *Repository) GetEventInsight(ctx context.Context, eventID uuid.UUID) (*models.Insight, error) {
	var insight models.Insight
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&insight).Error
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// GetUserInsight retrieves the insight for (user, week)
func (r *Repository) GetUserInsight(ctx context.Context, userID uint, weekStart time.Time) (*models.Insight, error) {
	var insight models.Insight
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND week_start = ?", userID, weekStart).
		First(&insight).Error
	if err != nil {
		return nil, err
	}
	return &insight, nil
}

// PruneUsageBefore deletes quota rows whose week started before the cutoff
func (r *Repository) PruneUsageBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("week_start < ?", cutoff).
		Delete(&models.InsightUsage{})
	return result.RowsAffected, result.Error
}
