package invite

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/middleware"
	"github.com/cocalhq/cocal-api/utils/response"
	"github.com/cocalhq/cocal-api/utils/validation"
)

const (
	// inviteTTL is how long a pending invite can be accepted.
	inviteTTL = 7 * 24 * time.Hour
	// maxDeclines blocks re-inviting someone who keeps saying no.
	maxDeclines = 3
)

// InviteHandler handles project invitation requests
type InviteHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(db *gorm.DB) *InviteHandler {
	return &InviteHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateInviteRequest represents an invitation request
type CreateInviteRequest struct {
	ProjectID uint   `json:"project_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

// Create invites a user to a project by email. Only the project owner or an
// admin member may invite. The invitee gets an INVITE notification.
func (h *InviteHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req CreateInviteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var project model.Project
	if err := h.db.WithContext(c.Context()).First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, fiber.StatusNotFound, "Project not found", "PROJECT_NOT_FOUND")
		}
		response.LogError(c, "Invite project load", err)
		return response.InternalServerError(c, "Failed to create invite")
	}

	var membership model.ProjectMember
	if err := h.db.WithContext(c.Context()).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		First(&membership).Error; err != nil || !membership.CanInvite() {
		return response.Error(c, fiber.StatusForbidden,
			"Only the project owner or an admin can invite", "INVITE_NOT_ALLOWED")
	}

	var invitee model.User
	email := strings.ToLower(req.Email)
	if err := h.db.WithContext(c.Context()).Where("email = ?", email).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.Error(c, fiber.StatusNotFound, "Email not found", "EMAIL_NOT_FOUND")
		}
		response.LogError(c, "Invite user lookup", err)
		return response.InternalServerError(c, "Failed to create invite")
	}
	if invitee.ID == userID {
		return response.BadRequest(c, "You are already in this project")
	}

	var memberCount int64
	if err := h.db.WithContext(c.Context()).Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, invitee.ID).
		Count(&memberCount).Error; err != nil {
		response.LogError(c, "Invite membership check", err)
		return response.InternalServerError(c, "Failed to create invite")
	}
	if memberCount > 0 {
		return response.Conflict(c, "User is already a member of this project")
	}

	// Re-inviting someone who declined repeatedly is blocked outright.
	var declined int64
	if err := h.db.WithContext(c.Context()).Model(&model.Invite{}).
		Where("project_id = ? AND invitee_id = ? AND status = ?",
			project.ID, invitee.ID, model.InviteStatusDeclined).
		Count(&declined).Error; err != nil {
		response.LogError(c, "Invite decline count", err)
		return response.InternalServerError(c, "Failed to create invite")
	}
	if declined >= maxDeclines {
		return response.Error(c, fiber.StatusConflict,
			"User has declined this project too many times", "INVITE_DECLINE_LIMIT")
	}

	var pending int64
	if err := h.db.WithContext(c.Context()).Model(&model.Invite{}).
		Where("project_id = ? AND invitee_id = ? AND status = ? AND expires_at > ?",
			project.ID, invitee.ID, model.InviteStatusPending, time.Now()).
		Count(&pending).Error; err != nil {
		response.LogError(c, "Invite pending check", err)
		return response.InternalServerError(c, "Failed to create invite")
	}
	if pending > 0 {
		return response.Conflict(c, "An invitation is already pending for this user")
	}

	invite := model.Invite{
		ProjectID: project.ID,
		InviterID: userID,
		InviteeID: invitee.ID,
		Status:    model.InviteStatusPending,
		ExpiresAt: time.Now().Add(inviteTTL),
	}

	err := h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invite).Error; err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]interface{}{
			"invite_id":  invite.ID,
			"project_id": project.ID,
		})
		if err != nil {
			return err
		}

		notification := model.Notification{
			UserID:  invitee.ID,
			Type:    model.NotificationInvite,
			Message: fmt.Sprintf("You have been invited to '%s'", project.Name),
			Payload: datatypes.JSON(payload),
		}
		return tx.Create(&notification).Error
	})
	if err != nil {
		response.LogError(c, "Invite create", err)
		return response.InternalServerError(c, "Failed to create invite")
	}

	return response.Created(c, invite)
}

// List returns the user's pending, unexpired invitations
func (h *InviteHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var invites []model.Invite
	if err := h.db.WithContext(c.Context()).
		Where("invitee_id = ? AND status = ? AND expires_at > ?",
			userID, model.InviteStatusPending, time.Now()).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		response.LogError(c, "Invite list", err)
		return response.InternalServerError(c, "Failed to list invites")
	}

	return response.Success(c, invites)
}

// Accept joins the invitee to the project and closes the invite
func (h *InviteHandler) Accept(c *fiber.Ctx) error {
	return h.respond(c, model.InviteStatusAccepted)
}

// Decline closes the invite without joining
func (h *InviteHandler) Decline(c *fiber.Ctx) error {
	return h.respond(c, model.InviteStatusDeclined)
}

func (h *InviteHandler) respond(c *fiber.Ctx, status string) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid invite id")
	}

	var invite model.Invite
	if err := h.db.WithContext(c.Context()).
		Where("id = ? AND invitee_id = ? AND status = ?", id, userID, model.InviteStatusPending).
		First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Invite not found")
		}
		response.LogError(c, "Invite load", err)
		return response.InternalServerError(c, "Failed to load invite")
	}

	now := time.Now()
	if invite.IsExpired(now) {
		return response.Error(c, fiber.StatusGone, "Invite has expired", "INVITE_EXPIRED")
	}

	invite.Status = status
	invite.RespondedAt = &now

	err = h.db.WithContext(c.Context()).Transaction(func(tx *gorm.DB) error {
		if status == model.InviteStatusAccepted {
			member := model.ProjectMember{
				ProjectID: invite.ProjectID,
				UserID:    userID,
				Role:      model.MemberRoleMember,
			}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return tx.Save(&invite).Error
	})
	if err != nil {
		response.LogError(c, "Invite respond", err)
		return response.InternalServerError(c, "Failed to update invite")
	}

	return response.Success(c, invite)
}
