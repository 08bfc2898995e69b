package project

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

// ProjectHandler handles team project requests
type ProjectHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
}

// UpdateProjectRequest represents a project update request
type UpdateProjectRequest struct {
	Name        string    `json:"name" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Status      string    `json:"status" validate:"required,oneof=IN_PROGRESS COMPLETED"`
}

// MemberResponse represents a project member in responses
type MemberResponse struct {
	UserID   uint   `json:"user_id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// Create adds a project and enrolls the creator as its OWNER member
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	project := model.Project{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      model.ProjectInProgress,
	}

	err := h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		member := model.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      model.MemberRoleOwner,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		response.LogError(c, "Project create", err)
		return response.InternalServerError(c, "Failed to create project")
	}

	return response.Created(c, project)
}

// List returns every project the user is a member of
func (h *ProjectHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var projects []model.Project
	if err := h.db.WithContext(c.Context()).
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", userID).
		Order("projects.start_date ASC").
		Find(&projects).Error; err != nil {
		response.LogError(c, "Project list", err)
		return response.InternalServerError(c, "Failed to list projects")
	}

	return response.Success(c, projects)
}

// Get returns a single project the user belongs to
func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	project, err := h.memberProject(c, uint(id), userID)
	if err != nil {
		return err
	}

	return response.Success(c, project)
}

// Update modifies a project. Owner only.
func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	var req UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var project model.Project
	if err := h.db.WithContext(c.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Project not found")
		}
		response.LogError(c, "Project load", err)
		return response.InternalServerError(c, "Failed to load project")
	}

	project.Name = req.Name
	project.Description = req.Description
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate
	project.Status = req.Status

	if err := h.db.WithContext(c.Context()).Save(&project).Error; err != nil {
		response.LogError(c, "Project update", err)
		return response.InternalServerError(c, "Failed to update project")
	}

	return response.Success(c, project)
}

// Delete removes a project. Owner only.
func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	result := h.db.WithContext(c.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		Delete(&model.Project{})
	if result.Error != nil {
		response.LogError(c, "Project delete", result.Error)
		return response.InternalServerError(c, "Failed to delete project")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Project not found")
	}

	return response.NoContent(c)
}

// Members lists the project's members. Member only.
func (h *ProjectHandler) Members(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid project id")
	}

	if _, err := h.memberProject(c, uint(id), userID); err != nil {
		return err
	}

	var memberships []model.ProjectMember
	if err := h.db.WithContext(c.Context()).
		Preload("User").
		Where("project_id = ?", id).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		response.LogError(c, "Project members", err)
		return response.InternalServerError(c, "Failed to list members")
	}

	members := make([]MemberResponse, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, MemberResponse{
			UserID:   m.UserID,
			Email:    m.User.Email,
			Nickname: m.User.Nickname,
			Role:     m.Role,
		})
	}

	return response.Success(c, members)
}

// memberProject loads a project the user belongs to, writing the error
// response itself when access is denied.
func (h *ProjectHandler) memberProject(c *fiber.Ctx, projectID, userID uint) (*model.Project, error) {
	var membership model.ProjectMember
	if err := h.db.WithContext(c.Context()).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Project not found")
		}
		response.LogError(c, "Project membership check", err)
		return nil, response.InternalServerError(c, "Failed to load project")
	}

	var project model.Project
	if err := h.db.WithContext(c.Context()).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NotFound(c, "Project not found")
		}
		response.LogError(c, "Project load", err)
		return nil, response.InternalServerError(c, "Failed to load project")
	}

	return &project, nil
}
