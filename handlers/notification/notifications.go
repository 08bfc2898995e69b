package notification

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/response"
)

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	db *gorm.DB
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// List returns the user's notifications, newest first
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	query := h.db.WithContext(c.Context()).Where("user_id = ?", userID)
	if c.QueryBool("unread", false) {
		query = query.Where("read_at IS NULL")
	}

	var notifications []model.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		response.LogError(c, "Notification list", err)
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, notifications)
}

// MarkRead marks a single notification as read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid notification id")
	}

	result := h.db.WithContext(c.Context()).
		Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		response.LogError(c, "Notification mark read", result.Error)
		return response.InternalServerError(c, "Failed to update notification")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Notification not found")
	}

	return response.Success(c, fiber.Map{"message": "Notification marked as read."})
}

// MarkAllRead marks every unread notification as read
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	result := h.db.WithContext(c.Context()).
		Model(&model.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	if result.Error != nil {
		response.LogError(c, "Notification mark all read", result.Error)
		return response.InternalServerError(c, "Failed to update notifications")
	}

	return response.Success(c, fiber.Map{"updated": result.RowsAffected})
}
