package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionPlan holds the feature ceilings for a plan tier. The quota
// manager re-reads this on every check.
type SubscriptionPlan struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Name                  string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	MaxAIInsightsOverall  int       `gorm:"not null;default:0" json:"max_ai_insights_overall"`
	MaxAIInsightsPerEvent int       `gorm:"not null;default:0" json:"max_ai_insights_per_event"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// InsightUsage tracks generations against the weekly ceiling for one scope:
// either (user, week_start) or (event, week_start).
type InsightUsage struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            *uint      `gorm:"index:idx_usage_user_week,unique" json:"user_id,omitempty"`
	EventID           *uuid.UUID `gorm:"type:uuid;index:idx_usage_event_week,unique" json:"event_id,omitempty"`
	WeekStart         time.Time  `gorm:"not null;index:idx_usage_user_week,unique;index:idx_usage_event_week,unique" json:"week_start"`
	InsightsGenerated int        `gorm:"not null;default:0" json:"insights_generated"`
	MaxInsights       int        `gorm:"not null" json:"max_insights"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (InsightUsage) TableName() string {
	return "insight_usage"
}

// CanGenerateMore reports whether the scope still has quota this week
func (u *InsightUsage) CanGenerateMore() bool {
	return u.InsightsGenerated < u.MaxInsights
}

// Insight sources
const (
	InsightSourceGenerated = "generated"
	InsightSourceFallback  = "fallback"
)

// Insight is the latest generated text for a scope, overwritten on every
// successful generation or edit.
type Insight struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    *uint      `gorm:"index:idx_insight_user_week,unique" json:"user_id,omitempty"`
	EventID   *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"event_id,omitempty"`
	WeekStart *time.Time `gorm:"index:idx_insight_user_week,unique" json:"week_start,omitempty"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Source    string     `gorm:"size:20;not null;default:generated" json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Insight) TableName() string {
	return "insights"
}

// QuotaStatus is the API view of one scope's weekly allowance
type QuotaStatus struct {
	WeekStart         time.Time `json:"week_start"`
	InsightsGenerated int       `json:"insights_generated"`
	MaxInsights       int       `json:"max_insights"`
	CanGenerateMore   bool      `json:"can_generate_more"`
}
