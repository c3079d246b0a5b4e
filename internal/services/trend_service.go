package services

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
	"eventpilot/internal/forecast"
	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

// Trend metrics
const (
	MetricCost               = "cost"
	MetricRevenue            = "revenue"
	MetricEvents             = "events"
	MetricExpectedAttendance = "expected_attendance"
)

// TrendService builds monthly historical buckets and appends the external
// forecast. Forecast failure degrades to a historical-only series.
type TrendService struct {
	repo       *repository.Repository
	events     *EventService
	forecaster *forecast.Client
}

func NewTrendService(repo *repository.Repository, events *EventService, forecaster *forecast.Client) *TrendService {
	return &TrendService{repo: repo, events: events, forecaster: forecaster}
}

// Trends returns the merged historical + predicted series for one metric
func (s *TrendService) Trends(ctx context.Context, userID uint, metric string, months int) (*models.TrendResponse, error) {
	switch metric {
	case MetricCost, MetricRevenue, MetricEvents, MetricExpectedAttendance:
	default:
		return nil, fmt.Errorf("invalid trend metric: %s", metric)
	}
	if months <= 0 {
		months = 3
	}

	events, ids, err := s.events.VisibleEvents(ctx, userID, models.ScopeBoth, nil)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetLineItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load line items: %w", err)
	}
	stats, err := s.repo.GetAttendanceStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load attendance: %w", err)
	}
	attendance := attendanceByEvent(stats)

	itemsByEvent := make(map[string][]models.LineItem)
	for _, item := range items {
		itemsByEvent[item.EventID.String()] = append(itemsByEvent[item.EventID.String()], item)
	}

	points := make([]analytics.BucketPoint, 0, len(events))
	for _, event := range events {
		if event.Date == nil {
			continue
		}

		var value decimal.Decimal
		switch metric {
		case MetricCost:
			value = pricedEvent(event, itemsByEvent[event.ID.String()]).Pricing.BaseCost
		case MetricRevenue:
			value = pricedEvent(event, itemsByEvent[event.ID.String()]).Pricing.FinalPrice
		case MetricEvents:
			value = decimal.NewFromInt(1)
		case MetricExpectedAttendance:
			expected := 0
			if stat, ok := attendance[event.ID]; ok {
				expected = stat.ExpectedAttendees
			}
			value = decimal.NewFromInt(int64(expected))
		}

		points = append(points, analytics.BucketPoint{Date: *event.Date, Value: value})
	}

	historical := analytics.BucketByMonth(points)
	response := &models.TrendResponse{
		Metric: metric,
		Series: historical,
	}

	forecastResp, err := s.fetchForecast(ctx, events, items, stats, months)
	if err != nil {
		// Liveness over completeness: the chart still renders with
		// historical data while the forecaster is down.
		log.Printf("Forecast unavailable, returning historical series only: %v", err)
		return response, nil
	}

	predicted := make([]analytics.TimeBucket, 0, len(forecastResp.Predictions))
	for _, prediction := range forecastResp.Predictions {
		if prediction.MonthYear == "" {
			continue
		}
		predicted = append(predicted, analytics.TimeBucket{
			Label:  prediction.MonthYear,
			Source: analytics.SourcePredicted,
			Value:  predictionValue(prediction, metric),
		})
	}

	response.Series = analytics.MergeTrend(historical, predicted)
	response.CostGrowthRate = forecastResp.CostGrowthRate
	response.RevenueGrowthRate = forecastResp.RevenueGrowthRate
	return response, nil
}

func (s *TrendService) fetchForecast(ctx context.Context, events []models.Event, items []models.LineItem, stats []models.AttendanceStat, months int) (*forecast.Response, error) {
	req := &forecast.Request{Months: months}

	for _, event := range events {
		req.Events = append(req.Events, forecast.EventSnapshot{
			ID:       event.ID.String(),
			Date:     event.Date,
			Category: event.Category,
		})
	}
	for _, item := range items {
		req.Items = append(req.Items, forecast.ItemSnapshot{
			EventID:  item.EventID.String(),
			Cost:     item.Cost,
			Quantity: item.Quantity,
		})
	}
	for _, stat := range stats {
		req.Attendance = append(req.Attendance, forecast.AttendanceSnapshot{
			EventID:           stat.EventID.String(),
			ExpectedAttendees: stat.ExpectedAttendees,
			EventAttendees:    stat.EventAttendees,
		})
	}

	return s.forecaster.Forecast(ctx, req)
}

func predictionValue(prediction forecast.Prediction, metric string) decimal.Decimal {
	switch metric {
	case MetricRevenue:
		return prediction.PredictedRevenue
	case MetricEvents:
		return decimal.NewFromInt(int64(prediction.PredictedEvents))
	case MetricExpectedAttendance:
		return decimal.NewFromInt(int64(prediction.PredictedExpectedAttendees))
	default:
		return prediction.PredictedCost
	}
}
