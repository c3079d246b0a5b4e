package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"eventpilot/internal/analytics"
	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

// EventService handles event CRUD and visibility resolution
type EventService struct {
	repo *repository.Repository
}

func NewEventService(repo *repository.Repository) *EventService {
	return &EventService{repo: repo}
}

// CreateEvent creates a new event owned by the caller
func (s *EventService) CreateEvent(ctx context.Context, ownerID uint, req *models.CreateEventRequest) (*models.Event, error) {
	markupType, err := parseMarkupType(req.MarkupType)
	if err != nil {
		return nil, err
	}
	discountType, err := parseDiscountType(req.DiscountType)
	if err != nil {
		return nil, err
	}
	if req.MarkupValue.IsNegative() || req.DiscountValue.IsNegative() {
		return nil, fmt.Errorf("markup and discount values must be non-negative")
	}

	event := &models.Event{
		OwnerID:       ownerID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Date:          req.Date,
		Status:        models.EventStatusComingSoon,
		MarkupType:    markupType,
		MarkupValue:   req.MarkupValue,
		DiscountType:  discountType,
		DiscountValue: req.DiscountValue,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

// GetEvent retrieves an event visible to the caller
func (s *EventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}
	return event, nil
}

// UpdateEvent applies a partial update; only the owner may modify an event
func (s *EventService) UpdateEvent(ctx context.Context, userID uint, eventID uuid.UUID, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.ownedEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Date != nil {
		event.Date = req.Date
	}
	if req.Status != nil {
		status, err := parseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		event.Status = status
	}
	if req.MarkupType != nil {
		markupType, err := parseMarkupType(*req.MarkupType)
		if err != nil {
			return nil, err
		}
		event.MarkupType = markupType
	}
	if req.MarkupValue != nil {
		if req.MarkupValue.IsNegative() {
			return nil, fmt.Errorf("markup value must be non-negative")
		}
		event.MarkupValue = *req.MarkupValue
	}
	if req.DiscountType != nil {
		discountType, err := parseDiscountType(*req.DiscountType)
		if err != nil {
			return nil, err
		}
		event.DiscountType = discountType
	}
	if req.DiscountValue != nil {
		if req.DiscountValue.IsNegative() {
			return nil, fmt.Errorf("discount value must be non-negative")
		}
		event.DiscountValue = *req.DiscountValue
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event and its dependents; owner only
func (s *EventService) DeleteEvent(ctx context.Context, userID uint, eventID uuid.UUID) error {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, eventID)
}

// AddLineItem appends a cost line to an owned event
func (s *EventService) AddLineItem(ctx context.Context, userID uint, eventID uuid.UUID, req *models.CreateLineItemRequest) (*models.LineItem, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	if req.Cost.IsNegative() {
		return nil, fmt.Errorf("cost must be non-negative")
	}

	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	item := &models.LineItem{
		EventID:  eventID,
		Name:     req.Name,
		Cost:     req.Cost,
		Quantity: quantity,
	}
	if err := s.repo.CreateLineItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create line item: %w", err)
	}
	return item, nil
}

// RemoveLineItem deletes a cost line from an owned event
func (s *EventService) RemoveLineItem(ctx context.Context, userID uint, eventID, itemID uuid.UUID) error {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return err
	}
	return s.repo.DeleteLineItem(ctx, eventID, itemID)
}

// AddCollaborator links a user to an owned event; re-adding is a no-op
func (s *EventService) AddCollaborator(ctx context.Context, ownerID uint, eventID uuid.UUID, req *models.AddCollaboratorRequest) (*models.EventCollaborator, error) {
	if _, err := s.ownedEvent(ctx, ownerID, eventID); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "member"
	}

	collab := &models.EventCollaborator{
		EventID: eventID,
		UserID:  req.UserID,
		Role:    role,
	}
	if err := s.repo.AddCollaborator(ctx, collab); err != nil {
		return nil, fmt.Errorf("failed to add collaborator: %w", err)
	}
	return collab, nil
}

// UpsertAttendance sets the expected/actual counts; owner only. The row is
// created lazily on first write.
func (s *EventService) UpsertAttendance(ctx context.Context, userID uint, eventID uuid.UUID, req *models.UpsertAttendanceRequest) (*models.AttendanceStat, error) {
	if _, err := s.ownedEvent(ctx, userID, eventID); err != nil {
		return nil, err
	}
	if req.ExpectedAttendees < 0 || req.EventAttendees < 0 {
		return nil, fmt.Errorf("attendee counts must be non-negative")
	}

	stat := &models.AttendanceStat{
		EventID:           eventID,
		ExpectedAttendees: req.ExpectedAttendees,
		EventAttendees:    req.EventAttendees,
	}
	if err := s.repo.UpsertAttendance(ctx, stat); err != nil {
		return nil, fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return stat, nil
}

// AddFeedback records one feedback response for an event
func (s *EventService) AddFeedback(ctx context.Context, userID uint, eventID uuid.UUID, req *models.CreateFeedbackRequest) (*models.FeedbackResponse, error) {
	if _, err := s.repo.GetEventByID(ctx, eventID); err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}

	var sentiment *models.Sentiment
	if req.Sentiment != nil {
		parsed, err := parseSentiment(*req.Sentiment)
		if err != nil {
			return nil, err
		}
		sentiment = &parsed
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	feedback := &models.FeedbackResponse{
		EventID:   eventID,
		UserID:    &userID,
		Rating:    req.Rating,
		Sentiment: sentiment,
		Comment:   req.Comment,
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return feedback, nil
}

// ListFeedback retrieves all responses for an event
func (s *EventService) ListFeedback(ctx context.Context, eventID uuid.UUID) ([]models.FeedbackResponse, error) {
	return s.repo.GetFeedback(ctx, []uuid.UUID{eventID})
}

// ResolveScope returns the events visible under the requested scope. "both"
// is the union de-duplicated by event id; the first occurrence wins on
// collision. Archived and cancelled events are never visible.
func (s *EventService) ResolveScope(ctx context.Context, userID uint, scope models.EventScope) ([]models.Event, error) {
	var combined []models.Event

	switch scope {
	case models.ScopeOwned:
		owned, err := s.repo.GetOwnedEvents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owned events: %w", err)
		}
		combined = owned
	case models.ScopeJoined:
		joined, err := s.repo.GetJoinedEvents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load joined events: %w", err)
		}
		combined = joined
	default: // both
		owned, err := s.repo.GetOwnedEvents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load owned events: %w", err)
		}
		joined, err := s.repo.GetJoinedEvents(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load joined events: %w", err)
		}
		combined = append(owned, joined...)
	}

	seen := make(map[uuid.UUID]bool, len(combined))
	visible := make([]models.Event, 0, len(combined))
	for _, event := range combined {
		if seen[event.ID] {
			continue
		}
		seen[event.ID] = true
		if event.Status == models.EventStatusArchived || event.Status == models.EventStatusCancelled {
			continue
		}
		visible = append(visible, event)
	}
	return visible, nil
}

// VisibleEvents resolves scope and applies the filter conjunction, returning
// the filtered events plus their id set for downstream fetches.
func (s *EventService) VisibleEvents(ctx context.Context, userID uint, scope models.EventScope, filter *models.EventFilter) ([]models.Event, []uuid.UUID, error) {
	events, err := s.ResolveScope(ctx, userID, scope)
	if err != nil {
		return nil, nil, err
	}

	if filter != nil && needsAttendance(filter) {
		ids := eventIDs(events)
		stats, err := s.repo.GetAttendanceStats(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load attendance for filtering: %w", err)
		}
		events = applyFilter(events, filter, attendanceByEvent(stats))
	} else if filter != nil {
		events = applyFilter(events, filter, nil)
	}

	return events, eventIDs(events), nil
}

// applyFilter keeps events satisfying every bound simultaneously. Missing
// attendance counts as expected=0, actual=0.
func applyFilter(events []models.Event, filter *models.EventFilter, attendance map[uuid.UUID]models.AttendanceStat) []models.Event {
	filtered := make([]models.Event, 0, len(events))
	for _, event := range events {
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		if filter.DateFrom != nil && (event.Date == nil || event.Date.Before(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && (event.Date == nil || event.Date.After(*filter.DateTo)) {
			continue
		}

		expected, actual := 0, 0
		if stat, ok := attendance[event.ID]; ok {
			expected, actual = stat.ExpectedAttendees, stat.EventAttendees
		}
		if filter.ExpectedMin != nil && expected < *filter.ExpectedMin {
			continue
		}
		if filter.ExpectedMax != nil && expected > *filter.ExpectedMax {
			continue
		}
		if filter.ActualMin != nil && actual < *filter.ActualMin {
			continue
		}
		if filter.ActualMax != nil && actual > *filter.ActualMax {
			continue
		}

		filtered = append(filtered, event)
	}
	return filtered
}

func needsAttendance(filter *models.EventFilter) bool {
	return filter.ExpectedMin != nil || filter.ExpectedMax != nil ||
		filter.ActualMin != nil || filter.ActualMax != nil
}

func (s *EventService) ownedEvent(ctx context.Context, userID uint, eventID uuid.UUID) (*models.Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event not found: %w", err)
	}
	if event.OwnerID != userID {
		return nil, fmt.Errorf("only the event owner may do this")
	}
	return event, nil
}

func eventIDs(events []models.Event) []uuid.UUID {
	ids := make([]uuid.UUID, len(events))
	for i, event := range events {
		ids[i] = event.ID
	}
	return ids
}

func attendanceByEvent(stats []models.AttendanceStat) map[uuid.UUID]models.AttendanceStat {
	byEvent := make(map[uuid.UUID]models.AttendanceStat, len(stats))
	for _, stat := range stats {
		byEvent[stat.EventID] = stat
	}
	return byEvent
}

func parseMarkupType(value string) (analytics.MarkupType, error) {
	switch value {
	case "", string(analytics.MarkupPercentage):
		return analytics.MarkupPercentage, nil
	case string(analytics.MarkupFixed):
		return analytics.MarkupFixed, nil
	default:
		return "", fmt.Errorf("invalid markup type: %s", value)
	}
}

func parseDiscountType(value string) (analytics.DiscountType, error) {
	switch value {
	case "", string(analytics.DiscountNone):
		return analytics.DiscountNone, nil
	case string(analytics.DiscountPercentage):
		return analytics.DiscountPercentage, nil
	case string(analytics.DiscountFixed):
		return analytics.DiscountFixed, nil
	default:
		return "", fmt.Errorf("invalid discount type: %s", value)
	}
}

func parseStatus(value string) (models.EventStatus, error) {
	switch models.EventStatus(value) {
	case models.EventStatusComingSoon, models.EventStatusOngoing, models.EventStatusDone,
		models.EventStatusCancelled, models.EventStatusArchived:
		return models.EventStatus(value), nil
	default:
		return "", fmt.Errorf("invalid event status: %s", value)
	}
}

func parseSentiment(value string) (models.Sentiment, error) {
	switch models.Sentiment(value) {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
		return models.Sentiment(value), nil
	default:
		return "", fmt.Errorf("invalid sentiment: %s", value)
	}
}
