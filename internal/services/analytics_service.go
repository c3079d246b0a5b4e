package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

// AnalyticsService is the portfolio aggregator: it resolves the visible
// event set, fans out to the pricing cascade and rate engines, and reduces
// to totals. Every call recomputes from a fresh snapshot; nothing derived
// is cached across mutations.
type AnalyticsService struct {
	repo   *repository.Repository
	events *EventService
}

func NewAnalyticsService(repo *repository.Repository, events *EventService) *AnalyticsService {
	return &AnalyticsService{repo: repo, events: events}
}

// snapshot is one consistent read of everything aggregation needs. It is
// fetched all-or-nothing: a half-failed fetch never produces a partial
// aggregate.
type snapshot struct {
	events     []models.Event
	items      map[uuid.UUID][]models.LineItem
	attendance map[uuid.UUID]models.AttendanceStat
	feedback   map[uuid.UUID][]models.FeedbackResponse
}

func (s *AnalyticsService) fetchSnapshot(ctx context.Context, events []models.Event, ids []uuid.UUID) (*snapshot, error) {
	items, err := s.repo.GetLineItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	stats, err := s.repo.GetAttendanceStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	feedback, err := s.repo.GetFeedback(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	snap := &snapshot{
		events:     events,
		items:      make(map[uuid.UUID][]models.LineItem),
		attendance: attendanceByEvent(stats),
		feedback:   make(map[uuid.UUID][]models.FeedbackResponse),
	}
	for _, item := range items {
		snap.items[item.EventID] = append(snap.items[item.EventID], item)
	}
	for _, response := range feedback {
		snap.feedback[response.EventID] = append(snap.feedback[response.EventID], response)
	}
	return snap, nil
}

// EventSummary computes the full derived view for one event
func (s *AnalyticsService) EventSummary(ctx context.Context, eventID uuid.UUID) (*models.EventSummary, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	snap, err := s.fetchSnapshot(ctx, []models.Event{*event}, []uuid.UUID{eventID})
	if err != nil {
		return nil, err
	}

	items := snap.items[eventID]
	priced := pricedEvent(*event, items)

	costSample := make([]float64, len(items))
	qtySample := make([]float64, len(items))
	for i, item := range items {
		costSample[i], _ = item.Cost.Float64()
		qtySample[i] = float64(item.Quantity)
	}

	expected, actual := 0, 0
	if stat, ok := snap.attendance[eventID]; ok {
		expected, actual = stat.ExpectedAttendees, stat.EventAttendees
	}

	responses := snap.feedback[eventID]
	ratings := numericRatings(responses)

	return &models.EventSummary{
		Event:          *event,
		Priced:         priced,
		CostStats:      analytics.DescribeCosts(costSample),
		QuantityStats:  analytics.DescribeQuantities(qtySample),
		Expected:       expected,
		Actual:         actual,
		AttendanceRate: analytics.Rate(actual, expected),
		ResponseRate:   analytics.Rate(len(responses), expected),
		TotalResponses: len(responses),
		AverageRating:  analytics.AverageRating(ratings),
	}, nil
}

// Portfolio aggregates every event visible under the scope and filter
func (s *AnalyticsService) Portfolio(ctx context.Context, userID uint, scope models.EventScope, filter *models.EventFilter) (*models.PortfolioSummary, error) {
	events, ids, err := s.events.VisibleEvents(ctx, userID, scope, filter)
	if err != nil {
		return nil, err
	}

	snap, err := s.fetchSnapshot(ctx, events, ids)
	if err != nil {
		return nil, err
	}

	summary := &models.PortfolioSummary{
		TotalEvents:      len(events),
		TotalItemCost:    decimal.Zero,
		EstimatedRevenue: decimal.Zero,
		AvgCostPerEvent:  decimal.Zero,
		Events:           make([]models.PricedEvent, 0, len(events)),
	}

	baseCostSample := make([]float64, 0, len(events))
	var allRatings []float64

	for _, event := range snap.events {
		items := snap.items[event.ID]
		priced := pricedEvent(event, items)
		summary.Events = append(summary.Events, priced)

		summary.TotalItems += len(items)
		summary.TotalItemCost = summary.TotalItemCost.Add(priced.Pricing.BaseCost)
		summary.EstimatedRevenue = summary.EstimatedRevenue.Add(priced.Pricing.FinalPrice)

		baseCost, _ := priced.Pricing.BaseCost.Float64()
		baseCostSample = append(baseCostSample, baseCost)

		if stat, ok := snap.attendance[event.ID]; ok {
			summary.ExpectedTotal += stat.ExpectedAttendees
			summary.ActualTotal += stat.EventAttendees
		}

		responses := snap.feedback[event.ID]
		summary.TotalResponses += len(responses)
		allRatings = append(allRatings, numericRatings(responses)...)
	}

	if summary.TotalEvents > 0 {
		summary.AvgCostPerEvent = summary.TotalItemCost.Div(decimal.NewFromInt(int64(summary.TotalEvents)))
		summary.AvgItemsPerEvent = float64(summary.TotalItems) / float64(summary.TotalEvents)
	}
	summary.AttendanceRate = analytics.Rate(summary.ActualTotal, summary.ExpectedTotal)
	summary.AverageRating = analytics.AverageRating(allRatings)
	summary.CostStats = analytics.DescribeCosts(baseCostSample)

	return summary, nil
}

// TopEvents ranks the caller's visible events by base cost or final price
func (s *AnalyticsService) TopEvents(ctx context.Context, userID uint, by string, limit int) ([]models.PricedEvent, error) {
	events, ids, err := s.events.VisibleEvents(ctx, userID, models.ScopeBoth, nil)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetLineItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	itemsByEvent := make(map[uuid.UUID][]models.LineItem)
	for _, item := range items {
		itemsByEvent[item.EventID] = append(itemsByEvent[item.EventID], item)
	}

	priced := make([]models.PricedEvent, 0, len(events))
	for _, event := range events {
		priced = append(priced, pricedEvent(event, itemsByEvent[event.ID]))
	}

	if limit <= 0 {
		limit = analytics.TopChartLimit
	}

	metric := func(p models.PricedEvent) decimal.Decimal { return p.Pricing.BaseCost }
	if by == "price" {
		metric = func(p models.PricedEvent) decimal.Decimal { return p.Pricing.FinalPrice }
	}
	return analytics.TopN(priced, limit, metric), nil
}

// pricedEvent runs the cascade for one event's line items
func pricedEvent(event models.Event, items []models.LineItem) models.PricedEvent {
	costs := make([]decimal.Decimal, len(items))
	quantities := make([]int, len(items))
	for i, item := range items {
		costs[i] = item.Cost
		quantities[i] = item.Quantity
	}

	baseCost := analytics.BaseCost(costs, quantities)
	return models.PricedEvent{
		EventID:   event.ID,
		Title:     event.Title,
		Category:  event.Category,
		Date:      event.Date,
		ItemCount: len(items),
		Pricing:   analytics.ComputePrice(baseCost, event.PricingRule()),
	}
}

// numericRatings extracts the ratings usable in averages; responses without
// a numeric rating still count toward response totals elsewhere.
func numericRatings(responses []models.FeedbackResponse) []float64 {
	ratings := make([]float64, 0, len(responses))
	for _, response := range responses {
		if response.Rating != nil {
			ratings = append(ratings, *response.Rating)
		}
	}
	return ratings
}
