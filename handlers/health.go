package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/salmamehrez85/UniMate/database"
)

// HealthCheck returns a handler reporting API and database health
func HealthCheck(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "up"
		if err := store.HealthCheck(); err != nil {
			dbStatus = "down"
		}

		return c.JSON(fiber.Map{
			"status":   "ok",
			"database": dbStatus,
		})
	}
}
