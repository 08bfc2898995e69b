package invite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/middleware"
)

// setupInviteTest connects to the test database and builds a fiber app with
// the invite routes behind a canned principal. Requires a running Postgres;
// guarded behind RUN_INTEGRATION_TESTS.
func setupInviteTest(t *testing.T) (*gorm.DB, func(userID uint) *fiber.App) {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=cocal_test port=5432 sslmode=disable TimeZone=UTC"
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{}, &model.Project{}, &model.ProjectMember{},
		&model.Invite{}, &model.Notification{},
	))
	require.NoError(t, db.Exec(
		"TRUNCATE invites, project_members, projects, notifications, users RESTART IDENTITY CASCADE").Error)

	handler := NewInviteHandler(db)
	appFor := func(userID uint) *fiber.App {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("principal", &middleware.Principal{UserID: userID})
			return c.Next()
		})
		app.Post("/invites", handler.Create)
		app.Get("/invites", handler.List)
		app.Patch("/invites/:id/accept", handler.Accept)
		app.Patch("/invites/:id/decline", handler.Decline)
		return app
	}

	return db, appFor
}

func createInviteTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{Email: email, PasswordHash: hash, Nickname: "tester", Role: model.RoleUser}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProject(t *testing.T, db *gorm.DB, owner *model.User) *model.Project {
	t.Helper()

	project := &model.Project{
		OwnerID:   owner.ID,
		Name:      "Launch planning",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(30 * 24 * time.Hour),
		Status:    model.ProjectInProgress,
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, db.Create(&model.ProjectMember{
		ProjectID: project.ID, UserID: owner.ID, Role: model.MemberRoleOwner,
	}).Error)
	return project
}

func postInvite(t *testing.T, app *fiber.App, projectID uint, email string) int {
	t.Helper()

	body, err := json.Marshal(CreateInviteRequest{ProjectID: projectID, Email: email})
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/invites", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestInviteCreatesNotificationAndAcceptJoins(t *testing.T) {
	db, appFor := setupInviteTest(t)

	owner := createInviteTestUser(t, db, "owner@example.com")
	guest := createInviteTestUser(t, db, "guest@example.com")
	project := createTestProject(t, db, owner)

	status := postInvite(t, appFor(owner.ID), project.ID, guest.Email)
	require.Equal(t, fiber.StatusCreated, status)

	// The invitee got an INVITE notification carrying the project id.
	var notification model.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?",
		guest.ID, model.NotificationInvite).First(&notification).Error)
	assert.Contains(t, string(notification.Payload), fmt.Sprintf(`"project_id":%d`, project.ID))

	var invite model.Invite
	require.NoError(t, db.Where("invitee_id = ?", guest.ID).First(&invite).Error)
	assert.Equal(t, model.InviteStatusPending, invite.Status)

	// Accepting enrolls the invitee as a MEMBER.
	req := httptest.NewRequest("PATCH", fmt.Sprintf("/invites/%d/accept", invite.ID), nil)
	resp, err := appFor(guest.ID).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var membership model.ProjectMember
	require.NoError(t, db.Where("project_id = ? AND user_id = ?",
		project.ID, guest.ID).First(&membership).Error)
	assert.Equal(t, model.MemberRoleMember, membership.Role)

	// A member cannot be invited again.
	status = postInvite(t, appFor(owner.ID), project.ID, guest.Email)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestInviteRequiresOwnerOrAdmin(t *testing.T) {
	db, appFor := setupInviteTest(t)

	owner := createInviteTestUser(t, db, "owner@example.com")
	member := createInviteTestUser(t, db, "member@example.com")
	guest := createInviteTestUser(t, db, "guest@example.com")
	project := createTestProject(t, db, owner)
	require.NoError(t, db.Create(&model.ProjectMember{
		ProjectID: project.ID, UserID: member.ID, Role: model.MemberRoleMember,
	}).Error)

	status := postInvite(t, appFor(member.ID), project.ID, guest.Email)
	assert.Equal(t, fiber.StatusForbidden, status)

	status = postInvite(t, appFor(guest.ID), project.ID, member.Email)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestInviteDeclineLimitBlocksReinvites(t *testing.T) {
	db, appFor := setupInviteTest(t)

	owner := createInviteTestUser(t, db, "owner@example.com")
	guest := createInviteTestUser(t, db, "guest@example.com")
	project := createTestProject(t, db, owner)

	for i := 0; i < maxDeclines; i++ {
		status := postInvite(t, appFor(owner.ID), project.ID, guest.Email)
		require.Equal(t, fiber.StatusCreated, status)

		var invite model.Invite
		require.NoError(t, db.Where("invitee_id = ? AND status = ?",
			guest.ID, model.InviteStatusPending).First(&invite).Error)

		req := httptest.NewRequest("PATCH", fmt.Sprintf("/invites/%d/decline", invite.ID), nil)
		resp, err := appFor(guest.ID).Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	status := postInvite(t, appFor(owner.ID), project.ID, guest.Email)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestExpiredInviteCannotBeAccepted(t *testing.T) {
	db, appFor := setupInviteTest(t)

	owner := createInviteTestUser(t, db, "owner@example.com")
	guest := createInviteTestUser(t, db, "guest@example.com")
	project := createTestProject(t, db, owner)

	invite := model.Invite{
		ProjectID: project.ID,
		InviterID: owner.ID,
		InviteeID: guest.ID,
		Status:    model.InviteStatusPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(&invite).Error)

	req := httptest.NewRequest("PATCH", fmt.Sprintf("/invites/%d/accept", invite.ID), nil)
	resp, err := appFor(guest.ID).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGone, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, guest.ID).
		Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
