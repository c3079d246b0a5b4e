package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
)

// Visibility scopes for portfolio queries
type EventScope string

const (
	ScopeOwned  EventScope = "owned"
	ScopeJoined EventScope = "joined"
	ScopeBoth   EventScope = "both"
)

// EventFilter is a conjunction of bounds; absent bounds are unbounded. An
// event with no attendance record is treated as expected=0, actual=0.
type EventFilter struct {
	DateFrom    *time.Time `form:"date_from" json:"date_from"`
	DateTo      *time.Time `form:"date_to" json:"date_to"`
	Category    string     `form:"category" json:"category"`
	ExpectedMin *int       `form:"expected_min" json:"expected_min"`
	ExpectedMax *int       `form:"expected_max" json:"expected_max"`
	ActualMin   *int       `form:"actual_min" json:"actual_min"`
	ActualMax   *int       `form:"actual_max" json:"actual_max"`
}

// PricedEvent is the derived per-event financial view. Never persisted;
// recomputed from line items and the pricing rule on every read.
type PricedEvent struct {
	EventID   uuid.UUID         `json:"event_id"`
	Title     string            `json:"title"`
	Category  string            `json:"category"`
	Date      *time.Time        `json:"date"`
	ItemCount int               `json:"item_count"`
	Pricing   analytics.Pricing `json:"pricing"`
}

// EventSummary is the full derived view of one event
type EventSummary struct {
	Event          Event                     `json:"event"`
	Priced         PricedEvent               `json:"priced"`
	CostStats      analytics.StatisticsBlock `json:"cost_statistics"`
	QuantityStats  analytics.StatisticsBlock `json:"quantity_statistics"`
	Expected       int                       `json:"expected_attendees"`
	Actual         int                       `json:"event_attendees"`
	AttendanceRate float64                   `json:"attendance_rate"`
	ResponseRate   float64                   `json:"response_rate"`
	TotalResponses int                       `json:"total_responses"`
	AverageRating  float64                   `json:"average_rating"`
}

// PortfolioSummary aggregates every visible event
type PortfolioSummary struct {
	TotalEvents      int                       `json:"total_events"`
	TotalItems       int                       `json:"total_items"`
	TotalItemCost    decimal.Decimal           `json:"total_item_cost"`
	EstimatedRevenue decimal.Decimal           `json:"estimated_revenue"`
	AvgCostPerEvent  decimal.Decimal           `json:"avg_cost_per_event"`
	AvgItemsPerEvent float64                   `json:"avg_items_per_event"`
	ExpectedTotal    int                       `json:"expected_total"`
	ActualTotal      int                       `json:"actual_total"`
	AttendanceRate   float64                   `json:"attendance_rate"`
	TotalResponses   int                       `json:"total_responses"`
	AverageRating    float64                   `json:"average_rating"`
	CostStats        analytics.StatisticsBlock `json:"cost_statistics"`
	Events           []PricedEvent             `json:"events"`
}

// TrendResponse is the merged historical + predicted series for one metric
type TrendResponse struct {
	Metric            string                 `json:"metric"`
	Series            []analytics.TimeBucket `json:"series"`
	CostGrowthRate    float64                `json:"cost_growth_rate,omitempty"`
	RevenueGrowthRate float64                `json:"revenue_growth_rate,omitempty"`
}
