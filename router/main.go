package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/config"
	"github.com/cocalhq/cocal-api/database"
	"github.com/cocalhq/cocal-api/handlers"
	auth_handlers "github.com/cocalhq/cocal-api/handlers/auth"
	event_handlers "github.com/cocalhq/cocal-api/handlers/event"
	invite_handlers "github.com/cocalhq/cocal-api/handlers/invite"
	notification_handlers "github.com/cocalhq/cocal-api/handlers/notification"
	project_handlers "github.com/cocalhq/cocal-api/handlers/project"
	todo_handlers "github.com/cocalhq/cocal-api/handlers/todo"
	"github.com/cocalhq/cocal-api/model"
	"github.com/cocalhq/cocal-api/services"
	"github.com/cocalhq/cocal-api/utils/auth"
	"github.com/cocalhq/cocal-api/utils/cache"
	"github.com/cocalhq/cocal-api/utils/middleware"
)

func SetupRoutes(app *fiber.App, store *database.GORMStore, getEnv *config.EnviornmentVariable) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	issuer := getEnv.JWT_ISSUER
	if issuer == "" {
		issuer = "cocal-api"
	}
	audience := getEnv.JWT_AUDIENCE
	if audience == "" {
		audience = "cocal-web"
	}

	policy := auth.TokenPolicy{
		Secret:    getEnv.JWT_SECRET,
		Issuer:    issuer,
		Audience:  audience,
		AccessTTL: getEnv.ACCESS_TOKEN_TTL,
		ClockSkew: getEnv.CLOCK_SKEW,
	}
	codec := auth.NewTokenCodec(policy)
	generator := auth.NewRefreshGenerator()

	db := store.GetDB()

	// Redis backs the blacklist and brute force counters
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	blacklist := auth.NewBlacklistService(redisCache)
	refreshTokens := services.NewRefreshTokenService(db)
	sessions := services.NewSessionService(db, codec, generator, refreshTokens, blacklist, getEnv.REFRESH_TOKEN_TTL)

	bruteForceProtection := middleware.NewBruteForceProtection(redisCache)
	authMiddleware := middleware.NewAuthMiddleware(codec, blacklist)

	authHandler := auth_handlers.NewAuthHandler(db, sessions, bruteForceProtection)
	eventHandler := event_handlers.NewEventHandler(db)
	todoHandler := todo_handlers.NewTodoHandler(db)
	notificationHandler := notification_handlers.NewNotificationHandler(db)
	projectHandler := project_handlers.NewProjectHandler(db)
	inviteHandler := invite_handlers.NewInviteHandler(db)

	// Apply security middleware
	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
	})

	// Every request resolves its bearer token exactly once; routes decide
	// whether an anonymous principal is acceptable
	app.Use(authMiddleware.Authenticate())

	app.Get("/health", handlers.HandleCheckHealth(store, redisCache))

	apiGroup := app.Group("/api")

	// Auth endpoints
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", bruteForceProtection.CheckAttempt(), authHandler.Register)
	authGroup.Post("/login", bruteForceProtection.CheckAttempt(), authHandler.Login)
	authGroup.Post("/reissue", authHandler.Reissue)
	authGroup.Post("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
	authGroup.Post("/all-logout", authMiddleware.RequireAuth(), authHandler.LogoutAll)
	authGroup.Get("/me", authMiddleware.RequireAuth(), authHandler.Me)
	authGroup.Delete("/me", authMiddleware.RequireAuth(), authHandler.DeleteAccount)

	// Calendar events
	eventGroup := apiGroup.Group("/events", authMiddleware.RequireAuth())
	eventGroup.Post("/", eventHandler.Create)
	eventGroup.Get("/", eventHandler.List)
	eventGroup.Get("/:id", eventHandler.Get)
	eventGroup.Put("/:id", eventHandler.Update)
	eventGroup.Delete("/:id", eventHandler.Delete)

	// Todos
	todoGroup := apiGroup.Group("/todos", authMiddleware.RequireAuth())
	todoGroup.Post("/", todoHandler.Create)
	todoGroup.Get("/", todoHandler.List)
	todoGroup.Put("/:id", todoHandler.Update)
	todoGroup.Delete("/:id", todoHandler.Delete)

	// Team projects
	projectGroup := apiGroup.Group("/projects", authMiddleware.RequireAuth())
	projectGroup.Post("/", projectHandler.Create)
	projectGroup.Get("/", projectHandler.List)
	projectGroup.Get("/:id", projectHandler.Get)
	projectGroup.Put("/:id", projectHandler.Update)
	projectGroup.Delete("/:id", projectHandler.Delete)
	projectGroup.Get("/:id/members", projectHandler.Members)

	// Project invitations
	inviteGroup := apiGroup.Group("/invites", authMiddleware.RequireAuth())
	inviteGroup.Post("/", inviteHandler.Create)
	inviteGroup.Get("/", inviteHandler.List)
	inviteGroup.Patch("/:id/accept", inviteHandler.Accept)
	inviteGroup.Patch("/:id/decline", inviteHandler.Decline)

	// Notifications
	notificationGroup := apiGroup.Group("/notifications", authMiddleware.RequireAuth())
	notificationGroup.Get("/", notificationHandler.List)
	notificationGroup.Patch("/read-all", notificationHandler.MarkAllRead)
	notificationGroup.Patch("/:id/read", notificationHandler.MarkRead)

	// Admin-only example: role gate derived from the roles claim
	apiGroup.Get("/admin/ping", authMiddleware.RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
