package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"mediawall/internal/api/handlers"
	"mediawall/internal/api/middleware"
	"mediawall/internal/services"
	"mediawall/internal/storage"
	ws "mediawall/internal/websocket"
)

func SetupRoutes(app *fiber.App, hub *ws.Hub, covers *services.CoverService, search *services.SearchService, disk *storage.DiskStore) {
	// Health check
	healthHandler := handlers.NewHealthHandler()
	app.Get("/health", healthHandler.Health)

	// Signed cover delivery (the signature is the access control)
	coversHandler := handlers.NewCoversHandler(covers, disk)
	app.Get("/covers/*", coversHandler.Serve)

	// API routes
	api := app.Group("/api")

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler()
	auth := api.Group("/auth")
	auth.Post("/register", middleware.AuthLimiter, authHandler.Register)
	auth.Post("/login", middleware.AuthLimiter, authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired())
	protected.Post("/auth/logout", authHandler.Logout)

	// Items
	itemsHandler := handlers.NewItemsHandler(covers, hub)
	items := protected.Group("/items")
	items.Get("/", itemsHandler.List)
	items.Post("/", itemsHandler.Create)
	items.Post("/bulk", itemsHandler.BulkCreate)
	items.Get("/:id", itemsHandler.Get)
	items.Put("/:id", itemsHandler.Update)
	items.Delete("/:id", itemsHandler.Delete)

	// Cover uploads
	protected.Post("/covers/upload", middleware.UploadLimiter, coversHandler.Upload)

	// External metadata search
	searchHandler := handlers.NewSearchHandler(search)
	protected.Get("/search", middleware.SearchLimiter, searchHandler.Search)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		// Get token from query param
		token := conn.Query("token")
		if token == "" {
			conn.Close()
			return
		}

		claims, err := services.ValidateToken(token)
		if err != nil {
			conn.Close()
			return
		}

		client := ws.NewClient(hub, conn, claims.UserID, claims.Username)
		hub.Register(client)

		go client.WritePump()
		client.ReadPump()
	}))
}
