package todo

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

// TodoHandler handles personal todo requests
type TodoHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(db *gorm.DB) *TodoHandler {
	return &TodoHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTodoRequest represents a todo creation request
type CreateTodoRequest struct {
	Content string     `json:"content" validate:"required,min=1,max=500"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// UpdateTodoRequest represents a todo update request
type UpdateTodoRequest struct {
	Content string     `json:"content" validate:"required,min=1,max=500"`
	Done    bool       `json:"done"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// Create adds a todo for the authenticated user
func (h *TodoHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	todo := model.Todo{
		UserID:  userID,
		Content: req.Content,
		DueDate: req.DueDate,
	}

	if err := h.db.WithContext(c.Context()).Create(&todo).Error; err != nil {
		response.LogError(c, "Todo create", err)
		return response.InternalServerError(c, "Failed to create todo")
	}

	return response.Created(c, todo)
}

// List returns the user's todos, pending first
func (h *TodoHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var todos []model.Todo
	if err := h.db.WithContext(c.Context()).
		Where("user_id = ?", userID).
		Order("done ASC, due_date ASC NULLS LAST, created_at DESC").
		Find(&todos).Error; err != nil {
		response.LogError(c, "Todo list", err)
		return response.InternalServerError(c, "Failed to list todos")
	}

	return response.Success(c, todos)
}

// Update modifies a todo's content and done state
func (h *TodoHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid todo id")
	}

	var req UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var todo model.Todo
	if err := h.db.WithContext(c.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Todo not found")
		}
		response.LogError(c, "Todo load", err)
		return response.InternalServerError(c, "Failed to load todo")
	}

	todo.Content = req.Content
	todo.Done = req.Done
	todo.DueDate = req.DueDate

	if err := h.db.WithContext(c.Context()).Save(&todo).Error; err != nil {
		response.LogError(c, "Todo update", err)
		return response.InternalServerError(c, "Failed to update todo")
	}

	return response.Success(c, todo)
}

// Delete removes a todo
func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid todo id")
	}

	result := h.db.WithContext(c.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.Todo{})
	if result.Error != nil {
		response.LogError(c, "Todo delete", result.Error)
		return response.InternalServerError(c, "Failed to delete todo")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Todo not found")
	}

	return response.NoContent(c)
}
