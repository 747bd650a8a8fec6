package handlers

import (
	"errors"
	"io"
	"os"

	"github.com/gofiber/fiber/v2"
	"mediawall/internal/api/middleware"
	"mediawall/internal/services"
	"mediawall/internal/storage"
)

type CoversHandler struct {
	covers *services.CoverService
	disk   *storage.DiskStore
}

func NewCoversHandler(covers *services.CoverService, disk *storage.DiskStore) *CoversHandler {
	return &CoversHandler{
		covers: covers,
		disk:   disk,
	}
}

// Upload validates and stores a cover image, responding with the durable
// storage path (what the client persists on the item) and a long-lived
// signed URL (what the client renders right away).
func (h *CoversHandler) Upload(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
		})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxCoverBytes+1))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read file",
		})
	}

	result, err := h.covers.Upload(c.Context(), data, file.Size, file.Filename, userID)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Reason,
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to store cover image",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Serve delivers cover bytes for a valid signed URL. The signature is the
// only access control here: no session is required, the URL itself grants
// time-limited read access to exactly one object.
func (h *CoversHandler) Serve(c *fiber.Ctx) error {
	objectPath := c.Params("*")
	exp := c.Query("exp")
	sig := c.Query("sig")

	if !h.disk.Verify(objectPath, exp, sig) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid or expired URL",
		})
	}

	fullPath, err := h.disk.FilePath(objectPath)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Invalid or expired URL",
		})
	}

	if _, err := os.Stat(fullPath); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cover not found",
		})
	}

	return c.SendFile(fullPath)
}
