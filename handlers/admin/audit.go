package admin

import (
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListAuditLogs lists the admin audit trail with filters
// GET /admin/audit-logs
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	query := h.db.Model(&model.AdminAuditLog{})

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if adminID := c.Query("admin_id"); adminID != "" {
		query = query.Where("admin_id = ?", adminID)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("created_at >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("created_at <= ?", to)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var logs []model.AdminAuditLog
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Preload("Admin").
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch audit logs")
	}

	return response.Paginated(c, logs, pagination)
}

// GetAuditLog returns one audit entry with old/new values
// GET /admin/audit-logs/:id
func (h *AdminHandler) GetAuditLog(c *fiber.Ctx) error {
	logID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid audit log ID")
	}

	var entry model.AdminAuditLog
	if err := h.db.Preload("Admin").First(&entry, logID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Audit log not found")
		}
		return response.InternalServerError(c, "Failed to load audit log")
	}

	return response.Success(c, entry)
}

// ListCronLogs lists recent background job runs
// GET /admin/cron-logs
func (h *AdminHandler) ListCronLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	query := h.db.Model(&model.CronJobLog{})
	if jobName := c.Query("job_name"); jobName != "" {
		query = query.Where("job_name = ?", jobName)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var logs []model.CronJobLog
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Order("started_at DESC").
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch cron logs")
	}

	return response.Paginated(c, logs, pagination)
}
