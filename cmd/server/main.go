package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"mediawall/internal/api"
	"mediawall/internal/database"
	"mediawall/internal/models"
	"mediawall/internal/services"
	"mediawall/internal/storage"
	"mediawall/internal/websocket"
)

func main() {
	// Load .env if present; real env vars win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize database
	database.Init()
	database.Migrate(
		&models.User{},
		&models.MediaItem{},
	)

	// Cover object store
	coversDir := getEnv("COVERS_DIR", "./covers")
	baseURL := getEnv("PUBLIC_BASE_URL", "http://localhost:"+getEnv("PORT", "8080"))
	urlSecret := getEnv("COVER_URL_SECRET", "cover-url-secret-change-in-production")

	store, err := storage.NewDiskStore(coversDir, baseURL, []byte(urlSecret))
	if err != nil {
		log.Fatal("Failed to initialize cover storage:", err)
	}

	coverService := services.NewCoverService(store)
	searchService := services.NewSearchService()

	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create Fiber app. BodyLimit leaves room for a 5MB cover plus
	// multipart overhead.
	app := fiber.New(fiber.Config{
		BodyLimit: 8 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Setup routes
	api.SetupRoutes(app, hub, coverService, searchService, store)

	port := getEnv("PORT", "8080")

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		app.Shutdown()
	}()

	// Start server
	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
