package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly-api/models"
)

type CommentController struct {
	db                     *gorm.DB
	notificationController *NotificationController
}

func NewCommentController(db *gorm.DB, notificationController *NotificationController) *CommentController {
	return &CommentController{
		db:                     db,
		notificationController: notificationController,
	}
}

type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (cc *CommentController) CreateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := cc.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	comment := models.Comment{
		ID:        uuid.New().String(),
		EventID:   eventID,
		UserID:    userID,
		Body:      req.Body,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := cc.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	// Don't notify hosts commenting on their own event
	if event.HostID != userID {
		if err := cc.notificationController.CreateCommentNotification(
			userID,       // who commented
			event.HostID, // event host (to be notified)
			eventID,
			comment.ID,
		); err != nil {
			// Log the error but don't stop the flow
			fmt.Printf("Failed to create comment notification: %v\n", err)
		}
	}

	c.JSON(http.StatusCreated, comment)
}

func (cc *CommentController) GetComments(c *gin.Context) {
	eventID := c.Param("id")
	var comments []models.Comment
	if err := cc.db.Preload("User").Where("event_id = ?", eventID).Order("created_at ASC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	for i := range comments {
		comments[i].User.Password = ""
	}
	c.JSON(http.StatusOK, comments)
}

func (cc *CommentController) DeleteComment(c *gin.Context) {
	userID := c.GetString("user_id")
	commentID := c.Param("commentId")

	var comment models.Comment
	if err := cc.db.First(&comment, "id = ? AND user_id = ?", commentID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found or access denied"})
		return
	}

	if err := cc.db.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
