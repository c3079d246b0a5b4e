package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"eventpilot/internal/analytics"
	"eventpilot/internal/insightgen"
	"eventpilot/internal/models"
	"eventpilot/internal/repository"
)

// ErrQuotaExceeded is the defined terminal state when a scope has used its
// weekly allowance. It disables the generation action; it is not a failure.
var ErrQuotaExceeded = errors.New("insight quota exceeded for this week")

// InsightGenerator produces narrative text from a prompt and numeric context
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string, payload insightgen.Context) (string, error)
}

// InsightService gates generation behind the weekly quota and guarantees a
// saved insight (possibly fallback) at the end of every permitted cycle.
type InsightService struct {
	repo      *repository.Repository
	analytics *AnalyticsService
	generator InsightGenerator
}

func NewInsightService(repo *repository.Repository, analytics *AnalyticsService, generator InsightGenerator) *InsightService {
	return &InsightService{repo: repo, analytics: analytics, generator: generator}
}

// Quota reports the caller's portfolio-scope allowance for the current week
func (s *InsightService) Quota(ctx context.Context, userID uint) (*models.QuotaStatus, error) {
	usage, err := s.userUsage(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.QuotaStatus{
		WeekStart:         usage.WeekStart,
		InsightsGenerated: usage.InsightsGenerated,
		MaxInsights:       usage.MaxInsights,
		CanGenerateMore:   usage.CanGenerateMore(),
	}, nil
}

// GeneratePortfolioInsight produces and persists the weekly portfolio
// narrative for a user. The quota counter is incremented before the external
// call: a failed generation still consumes quota, which is a deliberate
// guard against retry storms, and the fallback summary is saved instead.
func (s *InsightService) GeneratePortfolioInsight(ctx context.Context, userID uint, scope models.EventScope, filter *models.EventFilter) (*models.Insight, error) {
	usage, err := s.userUsage(ctx, userID)
	if err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReserveInsight(ctx, usage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve insight quota: %w", err)
	}
	if !reserved {
		return nil, ErrQuotaExceeded
	}

	summary, err := s.analytics.Portfolio(ctx, userID, scope, filter)
	if err != nil {
		return nil, err
	}

	payload := portfolioContext(summary)
	content, source := s.generateOrFallback(ctx, portfolioPrompt, payload, fallbackPortfolioSummary(summary))

	weekStart := usage.WeekStart
	insight := &models.Insight{
		UserID:    &userID,
		WeekStart: &weekStart,
		Content:   content,
		Source:    source,
	}
	if err := s.repo.UpsertUserInsight(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to save insight: %w", err)
	}
	return insight, nil
}

// GenerateEventInsight produces and persists the narrative for one event,
// quota-tracked per (event, week) against the per-event ceiling.
func (s *InsightService) GenerateEventInsight(ctx context.Context, userID uint, eventID uuid.UUID) (*models.Insight, error) {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekStart := analytics.WeekStart(time.Now())
	usage, err := s.repo.GetOrCreateEventUsage(ctx, eventID, weekStart, plan.MaxAIInsightsPerEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve quota: %w", err)
	}

	reserved, err := s.repo.ReserveInsight(ctx, usage.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve insight quota: %w", err)
	}
	if !reserved {
		return nil, ErrQuotaExceeded
	}

	summary, err := s.analytics.EventSummary(ctx, eventID)
	if err != nil {
		return nil, err
	}

	payload := eventContext(summary)
	content, source := s.generateOrFallback(ctx, eventPrompt, payload, fallbackEventSummary(summary))

	insight := &models.Insight{
		EventID:   &eventID,
		WeekStart: &weekStart,
		Content:   content,
		Source:    source,
	}
	if err := s.repo.UpsertEventInsight(ctx, insight); err != nil {
		return nil, fmt.Errorf("failed to save insight: %w", err)
	}
	return insight, nil
}

// GetEventInsight returns the latest stored insight for an event
func (s *InsightService) GetEventInsight(ctx context.Context, eventID uuid.UUID) (*models.Insight, error) {
	return s.repo.GetEventInsight(ctx, eventID)
}

// GetPortfolioInsight returns the caller's stored insight for this week
func (s *InsightService) GetPortfolioInsight(ctx context.Context, userID uint) (*models.Insight, error) {
	return s.repo.GetUserInsight(ctx, userID, analytics.WeekStart(time.Now()))
}

// generateOrFallback collapses generator failure into the deterministic
// local summary. The error is logged, never surfaced.
func (s *InsightService) generateOrFallback(ctx context.Context, prompt string, payload insightgen.Context, fallback string) (string, string) {
	content, err := s.generator.Generate(ctx, prompt, payload)
	if err != nil {
		log.Printf("Insight generation failed, using fallback summary: %v", err)
		return fallback, models.InsightSourceFallback
	}
	return content, models.InsightSourceGenerated
}

func (s *InsightService) userUsage(ctx context.Context, userID uint) (*models.InsightUsage, error) {
	plan, err := s.planFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	weekStart := analytics.WeekStart(time.Now())
	usage, err := s.repo.GetOrCreateUserUsage(ctx, userID, weekStart, plan.MaxAIInsightsOverall)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve quota: %w", err)
	}
	return usage, nil
}

// planFor re-reads the tier ceilings on every check; the subscription
// collaborator is authoritative and never cached across sessions.
func (s *InsightService) planFor(ctx context.Context, userID uint) (*models.SubscriptionPlan, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	plan, err := s.repo.GetPlanByName(ctx, user.Plan)
	if err != nil {
		return nil, fmt.Errorf("subscription plan %q not found: %w", user.Plan, err)
	}
	return plan, nil
}

const (
	portfolioPrompt = "Summarize this event portfolio for its organizer: highlight spend, pricing headroom, attendance performance and feedback, and suggest one concrete improvement."
	eventPrompt     = "Summarize this event's finances for its organizer: cost structure, pricing outcome, attendance and feedback, with one concrete suggestion."
)

func portfolioContext(summary *models.PortfolioSummary) insightgen.Context {
	top := analytics.TopN(summary.Events, analytics.TopPromptLimit, func(p models.PricedEvent) decimal.Decimal {
		return p.Pricing.BaseCost
	})

	payload := insightgen.Context{
		TotalEvents:      summary.TotalEvents,
		TotalItems:       summary.TotalItems,
		TotalItemCost:    summary.TotalItemCost.StringFixed(2),
		EstimatedRevenue: summary.EstimatedRevenue.StringFixed(2),
		CostMean:         summary.CostStats.Mean,
		CostStdDev:       summary.CostStats.StandardDeviation,
		CostDescription:  summary.CostStats.Description,
		ExpectedTotal:    summary.ExpectedTotal,
		ActualTotal:      summary.ActualTotal,
		AttendanceRate:   summary.AttendanceRate,
		AverageRating:    summary.AverageRating,
		TotalResponses:   summary.TotalResponses,
	}
	for _, event := range top {
		payload.TopEvents = append(payload.TopEvents, insightgen.TopEventContext{
			Title:      event.Title,
			BaseCost:   event.Pricing.BaseCost.StringFixed(2),
			FinalPrice: event.Pricing.FinalPrice.StringFixed(2),
		})
	}
	return payload
}

func eventContext(summary *models.EventSummary) insightgen.Context {
	return insightgen.Context{
		TotalEvents:      1,
		TotalItems:       summary.Priced.ItemCount,
		TotalItemCost:    summary.Priced.Pricing.BaseCost.StringFixed(2),
		EstimatedRevenue: summary.Priced.Pricing.FinalPrice.StringFixed(2),
		CostMean:         summary.CostStats.Mean,
		CostStdDev:       summary.CostStats.StandardDeviation,
		CostDescription:  summary.CostStats.Description,
		ExpectedTotal:    summary.Expected,
		ActualTotal:      summary.Actual,
		AttendanceRate:   summary.AttendanceRate,
		AverageRating:    summary.AverageRating,
		TotalResponses:   summary.TotalResponses,
		TopEvents: []insightgen.TopEventContext{{
			Title:      summary.Event.Title,
			BaseCost:   summary.Priced.Pricing.BaseCost.StringFixed(2),
			FinalPrice: summary.Priced.Pricing.FinalPrice.StringFixed(2),
		}},
	}
}

// fallbackPortfolioSummary builds the deterministic narrative used when the
// external generator is unavailable
func fallbackPortfolioSummary(summary *models.PortfolioSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your portfolio covers %d events with %d line items totaling %s in costs and an estimated revenue of %s.",
		summary.TotalEvents, summary.TotalItems,
		summary.TotalItemCost.StringFixed(2), summary.EstimatedRevenue.StringFixed(2))
	fmt.Fprintf(&b, " Across events, %s.", summary.CostStats.Description)
	if summary.ExpectedTotal > 0 {
		fmt.Fprintf(&b, " Attendance reached %.1f%% of the %d expected attendees.",
			summary.AttendanceRate, summary.ExpectedTotal)
	}
	if summary.TotalResponses > 0 {
		fmt.Fprintf(&b, " Feedback averages %.1f across %d responses.",
			summary.AverageRating, summary.TotalResponses)
	}
	return b.String()
}

func fallbackEventSummary(summary *models.EventSummary) string {
	var b strings.Builder
	pricing := summary.Priced.Pricing
	fmt.Fprintf(&b, "%s has %d line items with a base cost of %s and a final price of %s (margin %.1f%%).",
		summary.Event.Title, summary.Priced.ItemCount,
		pricing.BaseCost.StringFixed(2), pricing.FinalPrice.StringFixed(2), pricing.ProfitMarginPct)
	fmt.Fprintf(&b, " Within the event, %s.", summary.CostStats.Description)
	if summary.Expected > 0 {
		fmt.Fprintf(&b, " Attendance reached %.1f%% of the %d expected attendees.",
			summary.AttendanceRate, summary.Expected)
	}
	if summary.TotalResponses > 0 {
		fmt.Fprintf(&b, " Feedback averages %.1f across %d responses.",
			summary.AverageRating, summary.TotalResponses)
	}
	return b.String()
}
