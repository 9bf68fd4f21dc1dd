package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

type UserController struct {
	db *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name        *string   `json:"name"`
		Avatar      *string   `json:"avatar"`
		Bio         *string   `json:"bio"`
		City        *string   `json:"city"`
		Interests   *[]string `json:"interests"`
		LocationLat *float64  `json:"location_lat"`
		LocationLng *float64  `json:"location_lng"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Avatar != nil {
		updates["avatar"] = *req.Avatar
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Interests != nil {
		updates["interests"] = models.StringSlice(*req.Interests)
	}
	if req.LocationLat != nil && req.LocationLng != nil {
		if utils.ToGeoPoint(*req.LocationLat, *req.LocationLng) == nil ||
			!utils.IsValidLatitude(*req.LocationLat) || !utils.IsValidLongitude(*req.LocationLng) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coordinates"})
			return
		}
		updates["location_lat"] = *req.LocationLat
		updates["location_lng"] = *req.LocationLng
	}

	if err := uc.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (uc *UserController) GetUser(c *gin.Context) {
	targetUserID := c.Param("id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""
	user.Email = "" // Only the owner sees their email
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) GetStatistics(c *gin.Context) {
	userID := c.GetString("user_id")

	var user models.User
	if err := uc.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var hostedCount int64
	uc.db.Model(&models.Event{}).Where("host_id = ?", userID).Count(&hostedCount)

	var attendedCount int64
	uc.db.Model(&models.EventAttendee{}).Where("user_id = ?", userID).Count(&attendedCount)

	var groupsCount int64
	uc.db.Model(&models.GroupMember{}).Where("user_id = ?", userID).Count(&groupsCount)

	statistics := gin.H{
		"hosted_events_count": hostedCount,
		"attended_count":      attendedCount,
		"groups_count":        groupsCount,
	}

	c.JSON(http.StatusOK, statistics)
}
