package handlers

import (
	"errors"
	"net/http"

	"eventpilot/internal/auth"
	"eventpilot/internal/models"
	"eventpilot/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InsightHandler struct {
	insightService *services.InsightService
}

func NewInsightHandler(insightService *services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

// GetQuota reports the caller's weekly allowance
// GET /api/insights/quota
func (h *InsightHandler) GetQuota(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	quota, err := h.insightService.Quota(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, quota)
}

// GeneratePortfolioInsight generates and saves the weekly portfolio insight
// POST /api/insights/portfolio
func (h *InsightHandler) GeneratePortfolioInsight(c *gin.Context) {
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

	insight, err := h.insightService.GeneratePortfolioInsight(c.Request.Context(), userID, scope, &filter)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, insight)
}

// GetPortfolioInsight returns this week's stored portfolio insight
// GET /api/insights/portfolio
func (h *InsightHandler) GetPortfolioInsight(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	insight, err := h.insightService.GetPortfolioInsight(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no insight for this week"})
		return
	}

	c.JSON(http.StatusOK, insight)
}

// GenerateEventInsight generates and saves one event's insight
// POST /api/events/:id/insight
func (h *InsightHandler) GenerateEventInsight(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	insight, err := h.insightService.GenerateEventInsight(c.Request.Context(), userID, eventID)
	if err != nil {
		if errors.Is(err, services.ErrQuotaExceeded) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, insight)
}

// GetEventInsight returns the latest stored insight for an event
// GET /api/events/:id/insight
func (h *InsightHandler) GetEventInsight(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	insight, err := h.insightService.GetEventInsight(c.Request.Context(), eventID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no insight for this event"})
		return
	}

	c.JSON(http.StatusOK, insight)
}
