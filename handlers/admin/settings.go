package admin

import (
	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListSettings returns all application settings
// GET /admin/settings
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	var settings []model.AppSetting
	if err := h.db.Order("key ASC").Find(&settings).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch settings")
	}
	return response.Success(c, settings)
}

// GetSetting returns one setting by key
// GET /admin/settings/:key
func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	var setting model.AppSetting
	if err := h.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Setting not found")
		}
		return response.InternalServerError(c, "Failed to load setting")
	}
	return response.Success(c, setting)
}

// UpdateSettingRequest carries a new value for an existing setting key
type UpdateSettingRequest struct {
	Value string `json:"value"`
}

// UpdateSetting changes a setting's value. Keys are created by the seeder,
// not through the API
// PUT /admin/settings/:key
func (h *AdminHandler) UpdateSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var setting model.AppSetting
	if err := h.db.Where("key = ?", key).First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Setting not found")
		}
		return response.InternalServerError(c, "Failed to load setting")
	}

	old := setting

	if err := h.db.Model(&setting).Update("value", req.Value).Error; err != nil {
		return response.InternalServerError(c, "Failed to update setting")
	}

	h.audit.Record(c, adminID, "setting_update", "app_settings", setting.ID, old, setting, "Updated application setting")

	return response.SuccessWithMessage(c, "Setting updated", setting)
}

// PublicSettings returns settings flagged public, without auth
// GET /settings/public
func (h *AdminHandler) PublicSettings(c *fiber.Ctx) error {
	var settings []model.AppSetting
	if err := h.db.Where("is_public = ?", true).Order("key ASC").Find(&settings).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch settings")
	}
	return response.Success(c, settings)
}
