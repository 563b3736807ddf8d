package event

import (
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EventHandler handles the campus event calendar
type EventHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewEventHandler creates a new event handler
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// EventRequest represents a calendar entry
type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	Venue       string    `json:"venue" validate:"omitempty,max=255"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required"`
}

// Create schedules a campus event (admin)
// POST /events
func (h *EventHandler) Create(c *fiber.Ctx) error {
	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return response.BadRequest(c, "ends_at must be after starts_at")
	}

	event := model.CampusEvent{
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedByID: adminID,
	}

	if err := h.db.Create(&event).Error; err != nil {
		return response.InternalServerError(c, "Failed to create event")
	}

	return response.Created(c, event)
}

// List returns events, defaulting to upcoming ones
// GET /events
func (h *EventHandler) List(c *fiber.Ctx) error {
	query := h.db.Model(&model.CampusEvent{})

	// include_past=true returns the full calendar
	if c.Query("include_past") != "true" {
		query = query.Where("ends_at > ?", time.Now())
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("starts_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("starts_at <= ?", to)
	}

	var events []model.CampusEvent
	if err := query.Order("starts_at ASC").Find(&events).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch events")
	}

	return response.Success(c, events)
}

// Update edits a scheduled event (admin)
// PUT /events/:id
func (h *EventHandler) Update(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	var req EventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return response.BadRequest(c, "ends_at must be after starts_at")
	}

	var event model.CampusEvent
	if err := h.db.First(&event, eventID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Event not found")
		}
		return response.InternalServerError(c, "Failed to load event")
	}

	updates := map[string]interface{}{
		"title":       req.Title,
		"description": req.Description,
		"venue":       req.Venue,
		"starts_at":   req.StartsAt,
		"ends_at":     req.EndsAt,
	}
	if err := h.db.Model(&event).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update event")
	}

	return response.SuccessWithMessage(c, "Event updated", event)
}

// Delete cancels an event (admin)
// DELETE /events/:id
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	eventID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid event ID")
	}

	result := h.db.Delete(&model.CampusEvent{}, eventID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete event")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Event not found")
	}

	return response.SuccessWithMessage(c, "Event deleted", nil)
}
