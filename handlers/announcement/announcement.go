package announcement

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnnouncementHandler handles posting and reading campus notices
type AnnouncementHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAnnouncementHandler creates a new announcement handler
func NewAnnouncementHandler(db *gorm.DB) *AnnouncementHandler {
	return &AnnouncementHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// PostRequest represents a new notice
type PostRequest struct {
	Title     string                 `json:"title" validate:"required,max=255"`
	Body      string                 `json:"body" validate:"required,max=20000"`
	Audience  string                 `json:"audience" validate:"omitempty,oneof=all students faculty"`
	ExpiresAt *time.Time             `json:"expires_at,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Post publishes an announcement (admin/faculty)
// POST /announcements
func (h *AnnouncementHandler) Post(c *fiber.Ctx) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		return response.BadRequest(c, "expires_at must be in the future")
	}

	announcement := model.Announcement{
		Title:      req.Title,
		Body:       req.Body,
		Audience:   req.Audience,
		PostedByID: accountID,
		ExpiresAt:  req.ExpiresAt,
	}
	if announcement.Audience == "" {
		announcement.Audience = model.AudienceAll
	}
	if req.Metadata != nil {
		raw, err := json.Marshal(req.Metadata)
		if err != nil {
			return response.BadRequest(c, "Invalid metadata")
		}
		announcement.Metadata = datatypes.JSON(raw)
	}

	if err := h.db.Create(&announcement).Error; err != nil {
		return response.InternalServerError(c, "Failed to post announcement")
	}

	return response.Created(c, announcement)
}

// List returns live announcements visible to the caller. The route carries
// optional auth: anonymous visitors get the public feed, authenticated
// callers get their audience on top of it.
// GET /announcements
func (h *AnnouncementHandler) List(c *fiber.Ctx) error {
	role := ""
	if claims, ok := middleware.GetClaims(c); ok {
		role = claims.Role
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.Announcement{}).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())

	switch role {
	case model.RoleAdmin:
		// Admins see everything.
	case model.RoleStudent:
		query = query.Where("audience IN ?", []string{model.AudienceAll, model.AudienceStudents})
	case model.RoleFaculty:
		query = query.Where("audience IN ?", []string{model.AudienceAll, model.AudienceFaculty})
	default:
		query = query.Where("audience = ?", model.AudienceAll)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var announcements []model.Announcement
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Preload("PostedBy").
		Order("created_at DESC").
		Find(&announcements).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch announcements")
	}

	return response.Paginated(c, announcements, pagination)
}

// Delete removes an announcement (admin)
// DELETE /announcements/:id
func (h *AnnouncementHandler) Delete(c *fiber.Ctx) error {
	announcementID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid announcement ID")
	}

	result := h.db.Delete(&model.Announcement{}, announcementID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete announcement")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Announcement not found")
	}

	return response.SuccessWithMessage(c, "Announcement deleted", nil)
}
