package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cocalhq/cocal-api/database"
	"github.com/cocalhq/cocal-api/utils/cache"
)

// HandleCheckHealth reports liveness plus dependency health.
func HandleCheckHealth(store *database.GORMStore, redisCache *cache.RedisCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		deps := fiber.Map{}

		if err := store.HealthCheck(); err != nil {
			status = "degraded"
			deps["postgres"] = "down"
		} else {
			deps["postgres"] = "up"
		}

		if redisCache != nil {
			if err := redisCache.HealthCheck(c.Context()); err != nil {
				status = "degraded"
				deps["redis"] = "down"
			} else {
				deps["redis"] = "up"
			}
		}

		code := fiber.StatusOK
		if status != "ok" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{"status": status, "dependencies": deps})
	}
}
