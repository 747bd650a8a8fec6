package handlers

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"mediawall/internal/api/middleware"
	"mediawall/internal/database"
	"mediawall/internal/models"
	"mediawall/internal/services"
	ws "mediawall/internal/websocket"
)

type ItemsHandler struct {
	covers *services.CoverService
	hub    *ws.Hub
}

func NewItemsHandler(covers *services.CoverService, hub *ws.Hub) *ItemsHandler {
	return &ItemsHandler{
		covers: covers,
		hub:    hub,
	}
}

type ItemInput struct {
	Title          string             `json:"title"`
	Type           models.MediaType   `json:"type"`
	Status         models.MediaStatus `json:"status"`
	CoverReference *string            `json:"cover_reference"`
	DateFinished   *string            `json:"date_finished"`
	Review         *string            `json:"review"`
	Tags           *[]string          `json:"tags"`
	Rating         *models.Rating     `json:"rating"`
	Seasons        *int               `json:"seasons"`
	Language       string             `json:"language"`
}

// validateCoverReference rejects anything that must never be persisted:
// transient preview URLs from the client and signed URLs (ours carry
// exp/sig query params). Durable paths, legacy public URLs and plain
// external URLs pass.
func validateCoverReference(ref string) string {
	if strings.HasPrefix(ref, "blob:") || strings.HasPrefix(ref, "data:") {
		return "cover_reference must not be a local preview URL"
	}
	if services.ClassifyCover(ref).Kind == services.CoverKindExternal {
		if u, err := url.Parse(ref); err == nil {
			q := u.Query()
			if q.Get("sig") != "" && q.Get("exp") != "" {
				return "cover_reference must be a storage path, not a signed URL"
			}
		}
	}
	return ""
}

func validateItemInput(input *ItemInput) string {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return "Title is required"
	}
	if !models.ValidMediaType(input.Type) {
		return "Invalid media type"
	}
	if input.Status != "" && !models.ValidMediaStatus(input.Status) {
		return "Invalid status"
	}
	if input.Rating != nil {
		if err := input.Rating.Validate(); err != nil {
			return err.Error()
		}
	}
	if input.DateFinished != nil && *input.DateFinished != "" {
		if _, err := time.Parse("2006-01-02", *input.DateFinished); err != nil {
			return "date_finished must be YYYY-MM-DD"
		}
	}
	if input.CoverReference != nil && *input.CoverReference != "" {
		if msg := validateCoverReference(*input.CoverReference); msg != "" {
			return msg
		}
	}
	return ""
}

// applyInput writes validated input onto an item. Seasons only mean
// anything for TV shows and are cleared otherwise.
func applyInput(item *models.MediaItem, input *ItemInput) {
	item.Title = input.Title
	item.Type = input.Type
	if input.Status != "" {
		item.Status = input.Status
	}

	if input.CoverReference != nil {
		if *input.CoverReference == "" {
			item.CoverReference = nil
		} else {
			ref := *input.CoverReference
			item.CoverReference = &ref
		}
	}

	if input.DateFinished != nil {
		if *input.DateFinished == "" {
			item.DateFinished = nil
		} else {
			t, _ := time.Parse("2006-01-02", *input.DateFinished)
			d := datatypes.Date(t)
			item.DateFinished = &d
		}
	}

	if input.Review != nil {
		if *input.Review == "" {
			item.Review = nil
		} else {
			review := *input.Review
			item.Review = &review
		}
	}

	// Omitted tags are preserved like the other optional fields; an
	// explicit empty array clears them.
	if input.Tags != nil {
		item.Tags = models.NormalizeTags(*input.Tags)
	}

	if input.Rating != nil {
		item.SetRating(*input.Rating)
	}

	if input.Type == models.MediaTypeTV {
		item.Seasons = input.Seasons
	} else {
		item.Seasons = nil
	}

	if input.Language != "" {
		item.Language = input.Language
	}
}

// List returns the user's wall, newest first, with display URLs resolved
// through one batch signing call for the whole page.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	query := database.DB.Where("user_id = ?", userID).Order("created_at DESC")
	if mediaType := c.Query("type"); mediaType != "" {
		query = query.Where("type = ?", mediaType)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var items []models.MediaItem
	if err := query.Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load items",
		})
	}

	if tag := c.Query("tag"); tag != "" {
		filtered := items[:0]
		for _, item := range items {
			for _, t := range item.Tags {
				if t == tag {
					filtered = append(filtered, item)
					break
				}
			}
		}
		items = filtered
	}

	refs := make([]string, 0, len(items))
	for _, item := range items {
		if item.CoverReference != nil {
			refs = append(refs, *item.CoverReference)
		}
	}
	resolved := h.covers.ResolveCovers(c.Context(), refs)

	responses := make([]models.MediaItemResponse, len(items))
	for i, item := range items {
		coverURL := ""
		if item.CoverReference != nil {
			coverURL = resolved[*item.CoverReference]
		}
		responses[i] = item.ToResponse(coverURL)
	}

	return c.JSON(fiber.Map{
		"items": responses,
	})
}

func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	itemID := c.Params("id")

	var item models.MediaItem
	if err := database.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Item not found",
		})
	}

	return c.JSON(fiber.Map{
		"item": item.ToResponse(h.displayURL(c, &item)),
	})
}

func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input ItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateItemInput(&input); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	item := models.MediaItem{UserID: userID}
	applyInput(&item, &input)

	if err := database.DB.Create(&item).Error; err != nil {
		return h.persistFailure(c, &item, err)
	}

	response := item.ToResponse(h.displayURL(c, &item))
	h.notify(userID, "created", &response, item.ID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"item": response,
	})
}

func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	itemID := c.Params("id")

	var item models.MediaItem
	if err := database.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Item not found",
		})
	}

	var input ItemInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if msg := validateItemInput(&input); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": msg,
		})
	}

	var oldRef string
	if item.CoverReference != nil {
		oldRef = *item.CoverReference
	}

	applyInput(&item, &input)

	if err := database.DB.Save(&item).Error; err != nil {
		return h.persistFailure(c, &item, err)
	}

	// Replacing a cover allocates a new path; the old object would be
	// orphaned unless removed here.
	var newRef string
	if item.CoverReference != nil {
		newRef = *item.CoverReference
	}
	if oldRef != "" && oldRef != newRef {
		if err := h.covers.Remove(c.Context(), oldRef); err != nil {
			log.Printf("Failed to remove replaced cover %q: %v", oldRef, err)
		}
	}

	response := item.ToResponse(h.displayURL(c, &item))
	h.notify(userID, "updated", &response, item.ID)

	return c.JSON(fiber.Map{
		"item": response,
	})
}

func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	itemID := c.Params("id")

	var item models.MediaItem
	if err := database.DB.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Item not found",
		})
	}

	if err := database.DB.Delete(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete item",
		})
	}

	if item.CoverReference != nil {
		if err := h.covers.Remove(c.Context(), *item.CoverReference); err != nil {
			log.Printf("Failed to remove cover %q: %v", *item.CoverReference, err)
		}
	}

	h.notify(userID, "deleted", nil, item.ID)

	return c.JSON(fiber.Map{
		"message": "Item deleted",
	})
}

type BulkInput struct {
	Text string `json:"text"`
}

const bulkLineLimit = 500

// BulkCreate imports pasted text: one title per line, tab-separated
// columns keep only the first (spreadsheet paste). Every imported item
// gets the paste defaults: movie, finished, English, finished today.
func (h *ItemsHandler) BulkCreate(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)

	var input BulkInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	titles := parseBulkTitles(input.Text)
	if len(titles) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No titles found in pasted text",
		})
	}
	if len(titles) > bulkLineLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Too many lines (max 500)",
		})
	}

	today := datatypes.Date(time.Now())
	items := make([]models.MediaItem, len(titles))
	for i, title := range titles {
		items[i] = models.MediaItem{
			UserID:       userID,
			Title:        title,
			Type:         models.MediaTypeMovie,
			Status:       models.MediaStatusFinished,
			Language:     models.DefaultLanguage,
			DateFinished: &today,
		}
	}

	if err := database.DB.Create(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save items",
		})
	}

	responses := make([]models.MediaItemResponse, len(items))
	for i := range items {
		responses[i] = items[i].ToResponse("")
		h.notify(userID, "created", &responses[i], items[i].ID)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"items": responses,
	})
}

func parseBulkTitles(text string) []string {
	var titles []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		title := strings.TrimSpace(strings.SplitN(line, "\t", 2)[0])
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// displayURL resolves one item's cover for detail and mutation responses.
// An unsignable reference degrades to a placeholder, same as listings.
func (h *ItemsHandler) displayURL(c *fiber.Ctx, item *models.MediaItem) string {
	if item.CoverReference == nil {
		return ""
	}
	url, err := h.covers.Sign(c.Context(), *item.CoverReference)
	if err != nil {
		log.Printf("Failed to sign cover %q: %v", *item.CoverReference, err)
		return ""
	}
	return url
}

// persistFailure maps a DB write error after input handling. When the
// item carries a stored cover path the message says so: the upload
// succeeded, only the record write failed, and the two are not
// transactional.
func (h *ItemsHandler) persistFailure(c *fiber.Ctx, item *models.MediaItem, err error) error {
	var coverPath string
	if item.CoverReference != nil {
		if ref := services.ClassifyCover(*item.CoverReference); ref.Kind != services.CoverKindExternal {
			coverPath = ref.Value
		}
	}

	persistErr := &services.PersistError{CoverPath: coverPath, Err: err}
	log.Printf("Persist failure: %v", persistErr)

	body := fiber.Map{
		"error": "Failed to save item",
	}
	if coverPath != "" {
		body["error"] = "Failed to save item; the uploaded cover image was stored and is still available"
		body["cover_path"] = coverPath
	}
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}

func (h *ItemsHandler) notify(userID, action string, item *models.MediaItemResponse, itemID string) {
	if h.hub == nil {
		return
	}
	h.hub.NotifyItemChange(userID, action, item, itemID)
}
