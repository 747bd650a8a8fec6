package handlers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"mediawall/internal/api/middleware"
)

func setupAuthTestApp() *fiber.App {
	app := fiber.New()
	handler := NewAuthHandler()

	auth := app.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/refresh", handler.Refresh)

	protected := app.Group("", middleware.AuthRequired())
	protected.Post("/auth/logout", handler.Logout)

	return app
}

func TestRegister(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	app := setupAuthTestApp()

	t.Run("successful registration", func(t *testing.T) {
		resp, body := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/register",
			Body: map[string]string{
				"username": "newuser",
				"password": "password123",
			},
		})

		assertStatus(t, resp, http.StatusCreated)

		data := parseResponse(body)
		assertJSONFieldExists(t, data, "access_token")
		assertJSONFieldExists(t, data, "refresh_token")
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/register",
			Body:   map[string]string{"username": "nopassword"},
		})

		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("short password", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/register",
			Body: map[string]string{
				"username": "shortpw",
				"password": "123",
			},
		})

		assertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("duplicate username", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/register",
			Body: map[string]string{
				"username": "newuser",
				"password": "password456",
			},
		})

		assertStatus(t, resp, http.StatusConflict)
	})
}

func TestLogin(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	app := setupAuthTestApp()
	createTestUser(t, "loginuser", "password123")

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/login",
			Body: map[string]string{
				"username": "loginuser",
				"password": "password123",
			},
		})

		assertStatus(t, resp, http.StatusOK)

		data := parseResponse(body)
		assertJSONFieldExists(t, data, "access_token")
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/login",
			Body: map[string]string{
				"username": "loginuser",
				"password": "wrongpassword",
			},
		})

		assertStatus(t, resp, http.StatusUnauthorized)
	})
}

func TestLogout(t *testing.T) {
	cleanup := setupTestDB(t)
	defer cleanup()

	app := setupAuthTestApp()
	_, token := createTestUser(t, "logoutuser", "password123")

	t.Run("signed in", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/logout",
			Token:  token,
		})

		assertStatus(t, resp, http.StatusOK)
	})

	t.Run("no token", func(t *testing.T) {
		resp, _ := makeRequest(app, testRequest{
			Method: "POST",
			Path:   "/auth/logout",
		})

		assertStatus(t, resp, http.StatusUnauthorized)
	})
}
