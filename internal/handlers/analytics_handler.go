package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"eventpilot/internal/auth"
	"eventpilot/internal/models"
	"eventpilot/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fetchTimeout bounds every aggregation request so a stuck upstream fetch
// surfaces as a retryable timeout instead of hanging the client.
const fetchTimeout = 120 * time.Second

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	trendService     *services.TrendService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, trendService *services.TrendService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		trendService:     trendService,
	}
}

// GetEventSummary returns the derived financial view for one event
// GET /api/events/:id/summary
func (h *AnalyticsHandler) GetEventSummary(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	summary, err := h.analyticsService.EventSummary(ctx, eventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetPortfolio returns the aggregated view of the caller's visible events
// GET /api/analytics/portfolio?scope=...&date_from=...&category=...
func (h *AnalyticsHandler) GetPortfolio(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	scope := models.EventScope(c.DefaultQuery("scope", string(models.ScopeBoth)))

	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	summary, err := h.analyticsService.Portfolio(ctx, userID, scope, &filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetTrends returns the merged historical + predicted monthly series
// GET /api/analytics/trends?metric=cost&months=3
func (h *AnalyticsHandler) GetTrends(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	metric := c.DefaultQuery("metric", services.MetricCost)
	months, _ := strconv.Atoi(c.DefaultQuery("months", "3"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	trends, err := h.trendService.Trends(ctx, userID, metric, months)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, trends)
}

// GetTopEvents returns the ranked top-N view
// GET /api/analytics/top?by=cost|price&limit=10
func (h *AnalyticsHandler) GetTopEvents(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	by := c.DefaultQuery("by", "cost")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), fetchTimeout)
	defer cancel()

	top, err := h.analyticsService.TopEvents(ctx, userID, by, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": top})
}
