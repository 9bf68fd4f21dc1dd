package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/services"
)

type RecommendationController struct {
	recommendations *services.RecommendationService
}

func NewRecommendationController(recommendations *services.RecommendationService) *RecommendationController {
	return &RecommendationController{recommendations: recommendations}
}

// GetRecommendations returns personalized event suggestions for the
// authenticated user.
func (rc *RecommendationController) GetRecommendations(c *gin.Context) {
	userID := c.GetString("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	recommendations, err := rc.recommendations.GetRecommendations(userID, limit)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}

// GetTrendingEvents returns near-term events ranked by RSVP velocity.
func (rc *RecommendationController) GetTrendingEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	events, err := rc.recommendations.GetTrendingEvents(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trending events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
