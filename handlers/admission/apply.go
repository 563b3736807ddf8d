package admission

import (
	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
)

// ApplyRequest represents a public admission application submission
type ApplyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,min=7,max=20"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Address     string `json:"address" validate:"required"`
	Department  string `json:"department" validate:"required,max=100"`
	Program     string `json:"program" validate:"required,max=100"`
}

// admissionsOpen reads the admissions gate from app settings.
func (h *AdmissionHandler) admissionsOpen() bool {
	var setting model.AppSetting
	err := h.db.Where("key = ?", model.SettingAdmissionsOpen).First(&setting).Error
	return gateOpen(setting.Value, err)
}

// gateOpen decides the admissions gate. A missing or unreadable setting fails
// open so a lost row cannot freeze admissions; only an explicit "false"
// closes the form.
func gateOpen(value string, err error) bool {
	if err != nil {
		return true
	}
	return value != "false"
}

// resubmissionBlocked reports whether any earlier application for the same
// email is still live. Only a rejection clears the way for a fresh
// submission.
func resubmissionBlocked(prior []model.ApplicationStatus) bool {
	for _, status := range prior {
		if status != model.ApplicationRejected {
			return true
		}
	}
	return false
}

// Apply handles the public admission application form
// POST /admissions/apply
func (h *AdmissionHandler) Apply(c *fiber.Ctx) error {
	if !h.admissionsOpen() {
		return response.Forbidden(c, "Admissions are currently closed")
	}

	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
			"Validation failed", "VALIDATION_ERROR", flattenErrors(err))
	}

	// One live application per email.
	var prior []model.ApplicationStatus
	if err := h.db.Model(&model.AdmissionApplication{}).
		Where("email = ?", req.Email).
		Pluck("status", &prior).Error; err != nil {
		return response.InternalServerError(c, "Failed to check existing applications")
	}
	if resubmissionBlocked(prior) {
		return response.Conflict(c, "An application for this email is already under review or approved")
	}

	app := model.AdmissionApplication{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		Department:  req.Department,
		Program:     req.Program,
		Status:      model.ApplicationPending,
	}

	if err := h.db.Create(&app).Error; err != nil {
		return response.InternalServerError(c, "Failed to submit application")
	}

	return response.Created(c, app)
}

func flattenErrors(err error) string {
	fieldErrors := validation.FormatValidationErrors(err)
	msg := ""
	for _, v := range fieldErrors {
		if msg != "" {
			msg += "; "
		}
		msg += v
	}
	if msg == "" {
		msg = err.Error()
	}
	return msg
}
