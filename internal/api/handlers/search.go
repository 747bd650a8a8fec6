package handlers

import (
	"github.com/gofiber/fiber/v2"
	"mediawall/internal/models"
	"mediawall/internal/services"
)

type SearchHandler struct {
	search *services.SearchService
}

func NewSearchHandler(search *services.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search proxies the keyless metadata APIs for autofill. Provider
// failures are not surfaced: the client gets an empty list and the user
// types the fields by hand.
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	mediaType := models.MediaType(c.Query("type", string(models.MediaTypeMovie)))

	// Games have no lookup provider; only movie/tv/book are searchable.
	switch mediaType {
	case models.MediaTypeMovie, models.MediaTypeTV, models.MediaTypeBook:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid media type",
		})
	}

	results := h.search.Search(c.Context(), query, mediaType)

	return c.JSON(fiber.Map{
		"results": results,
	})
}
