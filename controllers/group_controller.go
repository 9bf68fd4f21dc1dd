package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gatherly-api/models"
	"gatherly-api/utils"
)

type GroupController struct {
	db            *gorm.DB
	notifications *NotificationController
}

func NewGroupController(db *gorm.DB, notifications *NotificationController) *GroupController {
	return &GroupController{
		db:            db,
		notifications: notifications,
	}
}

type CreateGroupRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	City        string   `json:"city"`
	Tags        []string `json:"tags"`
}

func (gc *GroupController) GetGroups(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	query := gc.db.Model(&models.Group{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("LOWER(city) = LOWER(?)", city)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", like, like)
	}

	var total int64
	query.Count(&total)

	var groups []models.Group
	if err := query.Preload("Creator").
		Order("members_count DESC").
		Offset(offset).
		Limit(limit).
		Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	for i := range groups {
		groups[i].Creator.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"groups":     groups,
		"pagination": utils.NewPagination(page, limit, total),
	})
}

func (gc *GroupController) CreateGroup(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := models.Group{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		City:         req.City,
		Tags:         models.StringSlice(req.Tags),
		CreatorID:    userID,
		MembersCount: 1, // Creator is automatically a member
	}

	if err := gc.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	member := models.GroupMember{
		GroupID: group.ID,
		UserID:  userID,
		Role:    models.GroupRoleOwner,
	}
	gc.db.Create(&member)

	c.JSON(http.StatusCreated, group)
}

func (gc *GroupController) GetGroup(c *gin.Context) {
	groupID := c.Param("id")

	var group models.Group
	if err := gc.db.Preload("Creator").Preload("Members").Preload("Members.User").
		First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	group.Creator.Password = ""
	for i := range group.Members {
		group.Members[i].User.Password = ""
	}
	c.JSON(http.StatusOK, group)
}

func (gc *GroupController) JoinGroup(c *gin.Context) {
	userID := c.GetString("user_id")
	groupID := c.Param("id")

	var group models.Group
	if err := gc.db.First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	// Check if already a member
	var existing models.GroupMember
	if err := gc.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this group"})
		return
	}

	member := models.GroupMember{
		GroupID: groupID,
		UserID:  userID,
		Role:    models.GroupRoleMember,
	}

	if err := gc.db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to join group"})
		return
	}

	gc.db.Model(&group).UpdateColumn("members_count", gorm.Expr("members_count + ?", 1))

	if group.CreatorID != userID {
		go gc.notifications.CreateGroupJoinNotification(userID, group.CreatorID, groupID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined group"})
}

func (gc *GroupController) LeaveGroup(c *gin.Context) {
	userID := c.GetString("user_id")
	groupID := c.Param("id")

	var group models.Group
	if err := gc.db.First(&group, "id = ?", groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	if group.CreatorID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner cannot leave their own group"})
		return
	}

	var member models.GroupMember
	if err := gc.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not a member of this group"})
		return
	}

	if err := gc.db.Delete(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to leave group"})
		return
	}

	gc.db.Model(&group).UpdateColumn("members_count", gorm.Expr("members_count - ?", 1))

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left group"})
}

func (gc *GroupController) GetMembers(c *gin.Context) {
	groupID := c.Param("id")

	var members []models.GroupMember
	if err := gc.db.Preload("User").Where("group_id = ?", groupID).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	users := make([]models.User, 0, len(members))
	for _, member := range members {
		member.User.Password = ""
		users = append(users, member.User)
	}

	c.JSON(http.StatusOK, gin.H{"members": users})
}

func (gc *GroupController) GetJoinedGroups(c *gin.Context) {
	userID := c.GetString("user_id")

	var memberships []models.GroupMember
	if err := gc.db.Preload("Group").Preload("Group.Creator").Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch joined groups"})
		return
	}

	groups := make([]models.Group, 0, len(memberships))
	for _, membership := range memberships {
		membership.Group.Creator.Password = ""
		groups = append(groups, membership.Group)
	}

	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (gc *GroupController) DeleteGroup(c *gin.Context) {
	userID := c.GetString("user_id")
	groupID := c.Param("id")

	var group models.Group
	if err := gc.db.First(&group, "id = ? AND creator_id = ?", groupID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found or access denied"})
		return
	}

	// Delete members first
	gc.db.Where("group_id = ?", groupID).Delete(&models.GroupMember{})

	if err := gc.db.Delete(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}
