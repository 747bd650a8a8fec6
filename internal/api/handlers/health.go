package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"mediawall/internal/database"
)

type HealthHandler struct {
	startTime time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
	}
}

// Health returns service status and a database connectivity check
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "healthy"
	checks := make(map[string]interface{})

	dbStatus := "up"
	if database.DB != nil {
		sqlDB, err := database.DB.DB()
		if err != nil {
			dbStatus = "error: " + err.Error()
			status = "degraded"
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "error: " + err.Error()
			status = "degraded"
		}
	} else {
		dbStatus = "not configured"
		status = "degraded"
	}
	checks["database"] = dbStatus

	return c.JSON(fiber.Map{
		"status":  status,
		"uptime":  time.Since(h.startTime).String(),
		"checks":  checks,
		"version": "1.0.0",
	})
}
