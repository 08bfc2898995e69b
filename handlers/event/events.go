package event

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/response"
	"github.com/cocalhq/cocal-api/utils/validation"
)

// EventHandler handles calendar event requests
type EventHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Location    string    `json:"location" validate:"max=255"`
	Color       string    `json:"color" validate:"max=20"`
	AllDay      bool      `json:"all_day"`
	StartAt     time.Time `json:"start_at" validate:"required"`
	EndAt       time.Time `json:"end_at" validate:"required,gtefield=StartAt"`
}

// Create adds a calendar event owned by the authenticated user
func (h *EventHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	event := model.Event{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Color:       req.Color,
		AllDay:      req.AllDay,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
	}

	if err := h.db.WithContext(c.Context()).Create(&event).Error; err != nil {
		response.LogError(c, "Event create", err)
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, event)
}

// List returns the user's events, optionally bounded to a [from, to) window
func (h *EventHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	query := h.db.WithContext(c.Context()).Where("owner_id = ?", userID)

	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return response.BadRequest(c, "Invalid 'from' timestamp")
		}
		query = query.Where("end_at >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return response.BadRequest(c, "Invalid 'to' timestamp")
		}
		query = query.Where("start_at < ?", t)
	}

	var total int64
	if err := query.Model(&model.Event{}).Count(&total).Error; err != nil {
		response.LogError(c, "Event count", err)
		return response.InternalServerError(c, "Failed to list events")
	}

	pagination := response.CalculatePagination(page, limit, total)

	var events []model.Event
	if err := query.
		Order("start_at ASC").
		Offset((pagination.CurrentPage - 1) * pagination.PerPage).
		Limit(pagination.PerPage).
		Find(&events).Error; err != nil {
		response.LogError(c, "Event list", err)
		return response.InternalServerError(c, "Failed to list events")
	}

	return response.Paginated(c, events, pagination)
}

// Get returns a single owned event
func (h *EventHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event id")
	}

	var event model.Event
	if err := h.db.WithContext(c.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		response.LogError(c, "Event load", err)
		return response.InternalServerError(c, "Failed to load event")
	}

	return response.Success(c, event)
}

// Update modifies an owned event
func (h *EventHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event id")
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var event model.Event
	if err := h.db.WithContext(c.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Event not found")
		}
		response.LogError(c, "Event load", err)
		return response.InternalServerError(c, "Failed to load event")
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.Color = req.Color
	event.AllDay = req.AllDay
	if !req.StartAt.Equal(event.StartAt) {
		// Rescheduling re-arms the reminder
		event.ReminderSentAt = nil
	}
	event.StartAt = req.StartAt
	event.EndAt = req.EndAt

	if err := h.db.WithContext(c.Context()).Save(&event).Error; err != nil {
		response.LogError(c, "Event update", err)
		return response.InternalServerError(c, "Failed to update event")
	}

	return response.Success(c, event)
}

// Delete removes an owned event
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid event id")
	}

	result := h.db.WithContext(c.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		Delete(&model.Event{})
	if result.Error != nil {
		response.LogError(c, "Event delete", result.Error)
		return response.InternalServerError(c, "Failed to delete event")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Event not found")
	}

	return response.NoContent(c)
}
