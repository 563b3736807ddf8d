package admission

import (
	"errors"
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListApplications lists admission applications with filters (admin)
// GET /admissions/applications
func (h *AdmissionHandler) ListApplications(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.AdmissionApplication{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var apps []model.AdmissionApplication
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Preload("Documents").
		Offset(offset).Limit(pagination.PerPage).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch applications")
	}

	return response.Paginated(c, apps, pagination)
}

// GetApplication returns one application with its documents (admin)
// GET /admissions/applications/:id
func (h *AdmissionHandler) GetApplication(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var app model.AdmissionApplication
	if err := h.db.Preload("Documents").Preload("Reviewer").First(&app, appID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to load application")
	}

	return response.Success(c, app)
}

// ApproveRequest carries optional reviewer overrides for approval
type ApproveRequest struct {
	Department string `json:"department,omitempty"`
	Program    string `json:"program,omitempty"`
}

// Approve approves an application and provisions the student account (admin)
// POST /admissions/applications/:id/approve
func (h *AdmissionHandler) Approve(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	reviewerID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ApproveRequest
	// Body is optional; ignore parse errors for an empty body.
	_ = c.BodyParser(&req)

	var overrides *services.ApproveOverrides
	if req.Department != "" || req.Program != "" {
		overrides = &services.ApproveOverrides{
			Department: req.Department,
			Program:    req.Program,
		}
	}

	result, err := h.provisioning.Approve(c.Context(), uint(appID), reviewerID, overrides)
	if err != nil {
		return h.provisioningError(c, err)
	}

	h.audit.Record(c, reviewerID, "application_approve", "applications", uint(appID),
		nil, result.Application, "Approved admission application")

	return response.SuccessWithMessage(c, "Application approved", result)
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Reject rejects a pending application (admin)
// POST /admissions/applications/:id/reject
func (h *AdmissionHandler) Reject(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	reviewerID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	app, err := h.provisioning.Reject(c.Context(), uint(appID), reviewerID, req.Reason)
	if err != nil {
		return h.provisioningError(c, err)
	}

	h.audit.Record(c, reviewerID, "application_reject", "applications", uint(appID),
		nil, app, "Rejected admission application")

	return response.SuccessWithMessage(c, "Application rejected", app)
}

// ResendCredentials rotates and re-sends login credentials (admin)
// POST /admissions/applications/:id/resend-credentials
func (h *AdmissionHandler) ResendCredentials(c *fiber.Ctx) error {
	appID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	result, err := h.provisioning.ResendCredentials(c.Context(), uint(appID))
	if err != nil {
		return h.provisioningError(c, err)
	}

	h.audit.Record(c, adminID, "credentials_resend", "applications", uint(appID),
		nil, nil, "Rotated and re-sent student credentials")

	return response.SuccessWithMessage(c, "Credentials rotated and re-sent", result)
}

// provisioningError maps engine sentinels onto the HTTP error taxonomy.
func (h *AdmissionHandler) provisioningError(c *fiber.Ctx, err error) error {
	switch {
	case services.IsNotFound(err):
		return response.NotFound(c, err.Error())
	case services.IsConflict(err):
		return response.ReviewConflict(c, err.Error())
	case errors.Is(err, services.ErrReasonRequired):
		return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
			"Validation failed", "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrLockBusy):
		return response.ProvisioningBusy(c, services.ErrLockBusy.Error())
	default:
		return response.InternalServerError(c, "Provisioning failed")
	}
}
