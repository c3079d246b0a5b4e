package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

func TestResolveScopeUnion(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	other := createTestUser(t, db, 2, "free")

	ownedA := createTestEvent(t, db, owner.ID, "owned a", nil)
	ownedB := createTestEvent(t, db, owner.ID, "owned b", nil)
	joined := createTestEvent(t, db, other.ID, "joined", nil)
	db.Create(&models.EventCollaborator{EventID: joined.ID, UserID: owner.ID})

	// The owner also collaborates on their own event; union must dedup it
	db.Create(&models.EventCollaborator{EventID: ownedA.ID, UserID: owner.ID})

	events, err := service.ResolveScope(ctx, owner.ID, models.ScopeBoth)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 distinct events, got %d", len(events))
	}

	seen := map[uuid.UUID]bool{}
	for _, e := range events {
		if seen[e.ID] {
			t.Errorf("event %s appears twice in the union", e.ID)
		}
		seen[e.ID] = true
	}
	if !seen[ownedA.ID] || !seen[ownedB.ID] || !seen[joined.ID] {
		t.Errorf("union is missing events: %v", seen)
	}
}

func TestResolveScopeOwnedAndJoined(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	other := createTestUser(t, db, 2, "free")

	owned := createTestEvent(t, db, owner.ID, "owned", nil)
	joined := createTestEvent(t, db, other.ID, "joined", nil)
	db.Create(&models.EventCollaborator{EventID: joined.ID, UserID: owner.ID})

	events, err := service.ResolveScope(ctx, owner.ID, models.ScopeOwned)
	if err != nil {
		t.Fatalf("ResolveScope owned failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != owned.ID {
		t.Errorf("owned scope: expected only the owned event, got %d", len(events))
	}

	events, err = service.ResolveScope(ctx, owner.ID, models.ScopeJoined)
	if err != nil {
		t.Fatalf("ResolveScope joined failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != joined.ID {
		t.Errorf("joined scope: expected only the joined event, got %d", len(events))
	}
}

func TestResolveScopeJoinedFallsBackToFeedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	responder := createTestUser(t, db, 1, "free")
	other := createTestUser(t, db, 2, "free")

	responded := createTestEvent(t, db, other.ID, "responded", nil)
	createTestEvent(t, db, other.ID, "untouched", nil)

	rating := 4.0
	db.Create(&TestFeedbackResponse{
		ID:      uuid.New(),
		EventID: responded.ID,
		UserID:  &responder.ID,
		Rating:  &rating,
	})

	events, err := service.ResolveScope(ctx, responder.ID, models.ScopeJoined)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != responded.ID {
		t.Errorf("expected feedback-derived event, got %d events", len(events))
	}
}

func TestResolveScopeHidesArchivedAndCancelled(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	visible := createTestEvent(t, db, owner.ID, "visible", nil)
	createTestEvent(t, db, owner.ID, "archived", func(e *TestEvent) {
		e.Status = models.EventStatusArchived
	})
	createTestEvent(t, db, owner.ID, "cancelled", func(e *TestEvent) {
		e.Status = models.EventStatusCancelled
	})

	events, err := service.ResolveScope(ctx, owner.ID, models.ScopeBoth)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != visible.ID {
		t.Errorf("expected only the visible event, got %d", len(events))
	}
}

func TestVisibleEventsFilterConjunction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")

	june := time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC)
	july := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	match := createTestEvent(t, db, owner.ID, "match", func(e *TestEvent) {
		e.Category = "conference"
		e.Date = &june
	})
	createTestEvent(t, db, owner.ID, "wrong category", func(e *TestEvent) {
		e.Category = "meetup"
		e.Date = &june
	})
	createTestEvent(t, db, owner.ID, "wrong date", func(e *TestEvent) {
		e.Category = "conference"
		e.Date = &july
	})

	db.Create(&TestAttendanceStat{ID: uuid.New(), EventID: match.ID, ExpectedAttendees: 100, EventAttendees: 80})

	from := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)
	expectedMin := 50
	filter := &models.EventFilter{
		Category:    "conference",
		DateFrom:    &from,
		DateTo:      &to,
		ExpectedMin: &expectedMin,
	}

	events, ids, err := service.VisibleEvents(ctx, owner.ID, models.ScopeBoth, filter)
	if err != nil {
		t.Fatalf("VisibleEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != match.ID {
		t.Fatalf("expected only the matching event, got %d", len(events))
	}
	if len(ids) != 1 || ids[0] != match.ID {
		t.Errorf("id set out of sync with events")
	}
}

func TestFilterMissingAttendanceCountsAsZero(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	noStats := createTestEvent(t, db, owner.ID, "no stats", nil)

	// expected >= 1 excludes events without an attendance record
	expectedMin := 1
	events, _, err := service.VisibleEvents(ctx, owner.ID, models.ScopeBoth, &models.EventFilter{ExpectedMin: &expectedMin})
	if err != nil {
		t.Fatalf("VisibleEvents failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected_min=1 should exclude events without attendance, got %d", len(events))
	}

	// expected <= 10 includes them, since missing counts as zero
	expectedMax := 10
	events, _, err = service.VisibleEvents(ctx, owner.ID, models.ScopeBoth, &models.EventFilter{ExpectedMax: &expectedMax})
	if err != nil {
		t.Fatalf("VisibleEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != noStats.ID {
		t.Errorf("expected_max=10 should include events without attendance, got %d", len(events))
	}
}

func TestUpsertAttendanceSingleRow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	_, err := service.UpsertAttendance(ctx, owner.ID, event.ID, &models.UpsertAttendanceRequest{
		ExpectedAttendees: 100, EventAttendees: 0,
	})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	_, err = service.UpsertAttendance(ctx, owner.ID, event.ID, &models.UpsertAttendanceRequest{
		ExpectedAttendees: 120, EventAttendees: 95,
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int64
	db.Model(&TestAttendanceStat{}).Where("event_id = ?", event.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one attendance row, got %d", count)
	}

	var stat TestAttendanceStat
	if err := db.Where("event_id = ?", event.ID).First(&stat).Error; err != nil {
		t.Fatalf("failed to read attendance: %v", err)
	}
	if stat.ExpectedAttendees != 120 || stat.EventAttendees != 95 {
		t.Errorf("expected 120/95, got %d/%d", stat.ExpectedAttendees, stat.EventAttendees)
	}
}

func TestUpsertAttendanceOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	stranger := createTestUser(t, db, 2, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	_, err := service.UpsertAttendance(ctx, stranger.ID, event.ID, &models.UpsertAttendanceRequest{
		ExpectedAttendees: 10,
	})
	if err == nil {
		t.Fatalf("expected owner check to reject a non-owner")
	}
}

func TestAddLineItemDefaultsQuantity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	item, err := service.AddLineItem(ctx, owner.ID, event.ID, &models.CreateLineItemRequest{
		Name: "venue", Cost: decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("AddLineItem failed: %v", err)
	}
	if item.Quantity != 1 {
		t.Errorf("zero quantity should default to 1, got %d", item.Quantity)
	}

	_, err = service.AddLineItem(ctx, owner.ID, event.ID, &models.CreateLineItemRequest{
		Name: "bad", Cost: decimal.NewFromInt(-5),
	})
	if err == nil {
		t.Errorf("negative cost must be rejected")
	}
}

func TestAddFeedbackValidatesRating(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	bad := 7.0
	_, err := service.AddFeedback(ctx, owner.ID, event.ID, &models.CreateFeedbackRequest{Rating: &bad})
	if err == nil {
		t.Errorf("rating above 5 must be rejected")
	}

	// A response without a numeric rating is still valid
	if _, err := service.AddFeedback(ctx, owner.ID, event.ID, &models.CreateFeedbackRequest{Comment: "great"}); err != nil {
		t.Fatalf("ratingless feedback failed: %v", err)
	}
}

func TestAddCollaboratorIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	collaborator := createTestUser(t, db, 2, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	req := &models.AddCollaboratorRequest{UserID: collaborator.ID}
	if _, err := service.AddCollaborator(ctx, owner.ID, event.ID, req); err != nil {
		t.Fatalf("AddCollaborator failed: %v", err)
	}
	// Re-adding the same collaborator is a no-op, not an error
	if _, err := service.AddCollaborator(ctx, owner.ID, event.ID, req); err != nil {
		t.Fatalf("repeated AddCollaborator failed: %v", err)
	}

	var count int64
	db.Model(&models.EventCollaborator{}).Where("event_id = ?", event.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected one collaborator row, got %d", count)
	}

	events, err := service.ResolveScope(ctx, collaborator.ID, models.ScopeJoined)
	if err != nil {
		t.Fatalf("ResolveScope failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != event.ID {
		t.Errorf("collaborator should see the joined event")
	}
}

func TestUpdateEventOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	service := NewEventService(repository.NewRepository(db))

	owner := createTestUser(t, db, 1, "free")
	stranger := createTestUser(t, db, 2, "free")
	event := createTestEvent(t, db, owner.ID, "event", nil)

	title := "hijacked"
	_, err := service.UpdateEvent(ctx, stranger.ID, event.ID, &models.UpdateEventRequest{Title: &title})
	if err == nil {
		t.Fatalf("expected non-owner update to fail")
	}

	title = "renamed"
	updated, err := service.UpdateEvent(ctx, owner.ID, event.ID, &models.UpdateEventRequest{Title: &title})
	if err != nil {
		t.Fatalf("owner update failed: %v", err)
	}
	if updated.Title != "renamed" {
		t.Errorf("expected renamed title, got %q", updated.Title)
	}
}
