package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

func TestEventSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	owner := createTestUser(t, db, 1, "free")
	event := createTestEvent(t, db, owner.ID, "conference", func(e *TestEvent) {
		e.MarkupType = analytics.MarkupPercentage
		e.MarkupValue = decimal.NewFromInt(20)
		e.DiscountType = analytics.DiscountPercentage
		e.DiscountValue = decimal.NewFromInt(10)
	})

	createTestItem(t, db, event.ID, 400, 2) // 800
	createTestItem(t, db, event.ID, 200, 1) // 200

	db.Create(&TestAttendanceStat{ID: uuid.New(), EventID: event.ID, ExpectedAttendees: 200, EventAttendees: 150})

	good, ok := 5.0, 3.0
	db.Create(&TestFeedbackResponse{ID: uuid.New(), EventID: event.ID, Rating: &good})
	db.Create(&TestFeedbackResponse{ID: uuid.New(), EventID: event.ID, Rating: &ok})
	db.Create(&TestFeedbackResponse{ID: uuid.New(), EventID: event.ID, Comment: "no rating"})

	summary, err := service.EventSummary(ctx, event.ID)
	if err != nil {
		t.Fatalf("EventSummary failed: %v", err)
	}

	// base 1000, +20% markup = 1200, -10% discount = 1080
	if !summary.Priced.Pricing.BaseCost.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("base cost: expected 1000, got %s", summary.Priced.Pricing.BaseCost)
	}
	if !summary.Priced.Pricing.FinalPrice.Equal(decimal.NewFromInt(1080)) {
		t.Errorf("final price: expected 1080, got %s", summary.Priced.Pricing.FinalPrice)
	}
	if summary.Priced.ItemCount != 2 {
		t.Errorf("item count: expected 2, got %d", summary.Priced.ItemCount)
	}

	if summary.AttendanceRate != 75 {
		t.Errorf("attendance rate: expected 75, got %f", summary.AttendanceRate)
	}
	if summary.ResponseRate != 1.5 {
		t.Errorf("response rate: expected 1.5, got %f", summary.ResponseRate)
	}

	// The ratingless response counts toward totals but not the average
	if summary.TotalResponses != 3 {
		t.Errorf("total responses: expected 3, got %d", summary.TotalResponses)
	}
	if summary.AverageRating != 4 {
		t.Errorf("average rating: expected 4, got %f", summary.AverageRating)
	}
}

func TestEventSummaryNoItemsNoAttendance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	owner := createTestUser(t, db, 1, "free")
	event := createTestEvent(t, db, owner.ID, "empty", nil)

	summary, err := service.EventSummary(ctx, event.ID)
	if err != nil {
		t.Fatalf("EventSummary failed: %v", err)
	}

	if summary.Priced.Pricing.FinalPrice.Sign() != 0 {
		t.Errorf("empty event final price: expected 0, got %s", summary.Priced.Pricing.FinalPrice)
	}
	if summary.AttendanceRate != 0 || summary.ResponseRate != 0 {
		t.Errorf("missing attendance must yield zero rates, got %f/%f", summary.AttendanceRate, summary.ResponseRate)
	}
}

func TestPortfolioTotals(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	owner := createTestUser(t, db, 1, "free")

	first := createTestEvent(t, db, owner.ID, "first", func(e *TestEvent) {
		e.MarkupType = analytics.MarkupFixed
		e.MarkupValue = decimal.NewFromInt(100)
	})
	second := createTestEvent(t, db, owner.ID, "second", nil)

	createTestItem(t, db, first.ID, 300, 1)
	createTestItem(t, db, first.ID, 100, 2)
	createTestItem(t, db, second.ID, 500, 1)

	db.Create(&TestAttendanceStat{ID: uuid.New(), EventID: first.ID, ExpectedAttendees: 100, EventAttendees: 60})
	db.Create(&TestAttendanceStat{ID: uuid.New(), EventID: second.ID, ExpectedAttendees: 100, EventAttendees: 90})

	summary, err := service.Portfolio(ctx, owner.ID, models.ScopeBoth, nil)
	if err != nil {
		t.Fatalf("Portfolio failed: %v", err)
	}

	if summary.TotalEvents != 2 {
		t.Errorf("total events: expected 2, got %d", summary.TotalEvents)
	}
	if summary.TotalItems != 3 {
		t.Errorf("total items: expected 3, got %d", summary.TotalItems)
	}
	// first: base 500, +100 fixed = 600; second: base 500, no markup = 500
	if !summary.TotalItemCost.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("total item cost: expected 1000, got %s", summary.TotalItemCost)
	}
	if !summary.EstimatedRevenue.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("estimated revenue: expected 1100, got %s", summary.EstimatedRevenue)
	}
	if !summary.AvgCostPerEvent.Equal(decimal.NewFromInt(500)) {
		t.Errorf("avg cost per event: expected 500, got %s", summary.AvgCostPerEvent)
	}
	if summary.AvgItemsPerEvent != 1.5 {
		t.Errorf("avg items per event: expected 1.5, got %f", summary.AvgItemsPerEvent)
	}
	if summary.ExpectedTotal != 200 || summary.ActualTotal != 150 {
		t.Errorf("attendance totals: expected 200/150, got %d/%d", summary.ExpectedTotal, summary.ActualTotal)
	}
	if summary.AttendanceRate != 75 {
		t.Errorf("attendance rate: expected 75, got %f", summary.AttendanceRate)
	}
}

func TestPortfolioEmpty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	user := createTestUser(t, db, 1, "free")

	summary, err := service.Portfolio(ctx, user.ID, models.ScopeBoth, nil)
	if err != nil {
		t.Fatalf("Portfolio on empty set failed: %v", err)
	}

	if summary.TotalEvents != 0 || summary.TotalItems != 0 {
		t.Errorf("empty portfolio should have zero counts, got %d/%d", summary.TotalEvents, summary.TotalItems)
	}
	if summary.AvgCostPerEvent.Sign() != 0 || summary.AttendanceRate != 0 {
		t.Errorf("empty portfolio should have zero derived values")
	}
}

func TestTopEvents(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	owner := createTestUser(t, db, 1, "free")

	cheap := createTestEvent(t, db, owner.ID, "cheap", nil)
	pricey := createTestEvent(t, db, owner.ID, "pricey", nil)
	middle := createTestEvent(t, db, owner.ID, "middle", nil)

	createTestItem(t, db, cheap.ID, 100, 1)
	createTestItem(t, db, pricey.ID, 900, 1)
	createTestItem(t, db, middle.ID, 400, 1)

	top, err := service.TopEvents(ctx, owner.ID, "cost", 2)
	if err != nil {
		t.Fatalf("TopEvents failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 events, got %d", len(top))
	}
	if top[0].Title != "pricey" || top[1].Title != "middle" {
		t.Errorf("expected [pricey middle], got [%s %s]", top[0].Title, top[1].Title)
	}

	// limit 0 falls back to the chart default and returns everything here
	top, err = service.TopEvents(ctx, owner.ID, "cost", 0)
	if err != nil {
		t.Fatalf("TopEvents failed: %v", err)
	}
	if len(top) != 3 {
		t.Errorf("default limit: expected 3 events, got %d", len(top))
	}
}

func TestTopEventsByFinalPrice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repository.NewRepository(db)
	service := NewAnalyticsService(repo, NewEventService(repo))

	owner := createTestUser(t, db, 1, "free")

	// Higher base cost but a crushing discount drops it below the other
	discounted := createTestEvent(t, db, owner.ID, "discounted", func(e *TestEvent) {
		e.DiscountType = analytics.DiscountPercentage
		e.DiscountValue = decimal.NewFromInt(90)
	})
	plain := createTestEvent(t, db, owner.ID, "plain", nil)

	createTestItem(t, db, discounted.ID, 1000, 1) // final 100
	createTestItem(t, db, plain.ID, 500, 1)       // final 500

	top, err := service.TopEvents(ctx, owner.ID, "price", 1)
	if err != nil {
		t.Fatalf("TopEvents failed: %v", err)
	}
	if len(top) != 1 || top[0].Title != "plain" {
		t.Fatalf("ranking by price should put plain first")
	}
}
