package faculty

import (
	"fmt"
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FacultyHandler handles the faculty directory and faculty account creation
type FacultyHandler struct {
	db        *gorm.DB
	email     *services.EmailService
	audit     *services.AuditService
	validator *validation.Validator
}

// NewFacultyHandler creates a new faculty handler
func NewFacultyHandler(db *gorm.DB, email *services.EmailService, audit *services.AuditService) *FacultyHandler {
	return &FacultyHandler{
		db:        db,
		email:     email,
		audit:     audit,
		validator: validation.NewValidator(),
	}
}

// CreateFacultyRequest represents an admin request to onboard faculty
type CreateFacultyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,min=7,max=20"`
	Department  string `json:"department" validate:"required,max=100"`
	Designation string `json:"designation" validate:"required,max=100"`
}

// CreateFaculty onboards a faculty member: profile, login account with a
// temporary password, and a welcome email (admin)
// POST /faculty
func (h *FacultyHandler) CreateFaculty(c *fiber.Ctx) error {
	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateFacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing int64
	h.db.Model(&model.Account{}).Where("email = ?", req.Email).Count(&existing)
	if existing > 0 {
		return response.Conflict(c, "An account already exists for this email")
	}

	var count int64
	if err := h.db.Model(&model.Faculty{}).Unscoped().Count(&count).Error; err != nil {
		return response.InternalServerError(c, "Failed to allocate faculty number")
	}

	faculty := model.Faculty{
		FacultyNumber: fmt.Sprintf("FAC%04d", count+1),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Department:    req.Department,
		Designation:   req.Designation,
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return response.InternalServerError(c, "Failed to generate temporary password")
	}
	passwordHash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	// Profile and account land together or not at all.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&faculty).Error; err != nil {
			return err
		}
		account := model.Account{
			Email:              req.Email,
			PasswordHash:       passwordHash,
			Name:               req.Name,
			Role:               model.RoleFaculty,
			IsApproved:         true,
			MustChangePassword: true,
			FacultyID:          &faculty.ID,
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create faculty account")
	}

	delivery := h.email.SendFacultyWelcome(c.Context(), req.Email, req.Name, tempPassword)

	h.audit.Record(c, adminID, "faculty_create", "faculty", faculty.ID, nil, faculty, "Onboarded faculty member")

	return response.Created(c, fiber.Map{
		"faculty":     faculty,
		"email_sent":  delivery.Sent,
		"email_error": delivery.Error,
	})
}

// ListFaculty lists faculty members (admin)
// GET /faculty
func (h *FacultyHandler) ListFaculty(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.Faculty{})
	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var members []model.Faculty
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Order("faculty_number ASC").
		Find(&members).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch faculty")
	}

	return response.Paginated(c, members, pagination)
}

// GetFaculty returns one faculty member with assigned subjects (admin)
// GET /faculty/:id
func (h *FacultyHandler) GetFaculty(c *fiber.Ctx) error {
	facultyID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	var faculty model.Faculty
	if err := h.db.Preload("Subjects").First(&faculty, facultyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Faculty member not found")
		}
		return response.InternalServerError(c, "Failed to load faculty member")
	}

	return response.Success(c, faculty)
}

// UpdateFacultyRequest represents an admin update to a faculty record
type UpdateFacultyRequest struct {
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
}

// UpdateFaculty updates mutable faculty fields (admin)
// PUT /faculty/:id
func (h *FacultyHandler) UpdateFaculty(c *fiber.Ctx) error {
	facultyID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateFacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var faculty model.Faculty
	if err := h.db.First(&faculty, facultyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Faculty member not found")
		}
		return response.InternalServerError(c, "Failed to load faculty member")
	}

	old := faculty

	updates := map[string]interface{}{}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Department != "" {
		updates["department"] = req.Department
	}
	if req.Designation != "" {
		updates["designation"] = req.Designation
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(&faculty).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update faculty member")
	}

	h.audit.Record(c, adminID, "faculty_update", "faculty", faculty.ID, old, faculty, "Updated faculty record")

	return response.SuccessWithMessage(c, "Faculty updated", faculty)
}

// DeleteFaculty soft-deletes a faculty member, locks the linked account and
// unassigns their subjects (admin)
// DELETE /faculty/:id
func (h *FacultyHandler) DeleteFaculty(c *fiber.Ctx) error {
	facultyID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid faculty ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var faculty model.Faculty
	if err := h.db.First(&faculty, facultyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Faculty member not found")
		}
		return response.InternalServerError(c, "Failed to load faculty member")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&faculty).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Subject{}).
			Where("faculty_id = ?", faculty.ID).
			Update("faculty_id", nil).Error; err != nil {
			return err
		}
		return tx.Model(&model.Account{}).
			Where("faculty_id = ?", faculty.ID).
			Updates(map[string]interface{}{
				"is_approved":   false,
				"token_version": gorm.Expr("token_version + 1"),
			}).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete faculty member")
	}

	h.audit.Record(c, adminID, "faculty_delete", "faculty", faculty.ID, faculty, nil, "Deleted faculty record")

	return response.SuccessWithMessage(c, "Faculty deleted", nil)
}

// MySubjects returns the authenticated faculty member's subjects
// GET /faculty/me/subjects
func (h *FacultyHandler) MySubjects(c *fiber.Ctx) error {
	account, ok := middleware.GetAccount(c)
	if !ok || account.FacultyID == nil {
		return response.Forbidden(c, "No faculty profile linked to this account")
	}

	var subjects []model.Subject
	if err := h.db.Where("faculty_id = ?", *account.FacultyID).
		Preload("Students").
		Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	return response.Success(c, subjects)
}
