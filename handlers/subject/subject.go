package subject

import (
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SubjectHandler handles the subject catalogue, faculty assignment and
// student enrollment
type SubjectHandler struct {
	db        *gorm.DB
	audit     *services.AuditService
	validator *validation.Validator
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(db *gorm.DB, audit *services.AuditService) *SubjectHandler {
	return &SubjectHandler{
		db:        db,
		audit:     audit,
		validator: validation.NewValidator(),
	}
}

// CreateSubjectRequest represents a new catalogue entry
type CreateSubjectRequest struct {
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=255"`
	Department string `json:"department" validate:"required,max=100"`
	Semester   int    `json:"semester" validate:"required,gte=1,lte=12"`
	Credits    int    `json:"credits" validate:"required,gte=1,lte=10"`
}

// CreateSubject adds a subject to the catalogue (admin)
// POST /subjects
func (h *SubjectHandler) CreateSubject(c *fiber.Ctx) error {
	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	subject := model.Subject{
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Semester:   req.Semester,
		Credits:    req.Credits,
	}

	if err := h.db.Create(&subject).Error; err != nil {
		return response.Conflict(c, "A subject with this code already exists")
	}

	h.audit.Record(c, adminID, "subject_create", "subjects", subject.ID, nil, subject, "Created subject")

	return response.Created(c, subject)
}

// ListSubjects lists the catalogue with filters
// GET /subjects
func (h *SubjectHandler) ListSubjects(c *fiber.Ctx) error {
	query := h.db.Model(&model.Subject{}).Preload("Faculty")

	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}

	var subjects []model.Subject
	if err := query.Order("code ASC").Find(&subjects).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch subjects")
	}

	return response.Success(c, subjects)
}

// GetSubject returns one subject with faculty and enrolled students
// GET /subjects/:id
func (h *SubjectHandler) GetSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var subject model.Subject
	if err := h.db.Preload("Faculty").Preload("Students").First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}

	return response.Success(c, subject)
}

// UpdateSubjectRequest represents an admin update to a catalogue entry
type UpdateSubjectRequest struct {
	Name     string `json:"name,omitempty"`
	Semester int    `json:"semester,omitempty"`
	Credits  int    `json:"credits,omitempty"`
}

// UpdateSubject updates mutable subject fields (admin)
// PUT /subjects/:id
func (h *SubjectHandler) UpdateSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}

	old := subject

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Semester > 0 {
		updates["semester"] = req.Semester
	}
	if req.Credits > 0 {
		updates["credits"] = req.Credits
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(&subject).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update subject")
	}

	h.audit.Record(c, adminID, "subject_update", "subjects", subject.ID, old, subject, "Updated subject")

	return response.SuccessWithMessage(c, "Subject updated", subject)
}

// DeleteSubject soft-deletes a catalogue entry (admin)
// DELETE /subjects/:id
func (h *SubjectHandler) DeleteSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	result := h.db.Delete(&model.Subject{}, subjectID)
	if result.Error != nil {
		return response.InternalServerError(c, "Failed to delete subject")
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Subject not found")
	}

	h.audit.Record(c, adminID, "subject_delete", "subjects", uint(subjectID), nil, nil, "Deleted subject")

	return response.SuccessWithMessage(c, "Subject deleted", nil)
}

// AssignFacultyRequest names the faculty member taking a subject
type AssignFacultyRequest struct {
	FacultyID uint `json:"faculty_id" validate:"required"`
}

// AssignFaculty assigns a faculty member to teach a subject (admin)
// PUT /subjects/:id/faculty
func (h *SubjectHandler) AssignFaculty(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req AssignFacultyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}

	var faculty model.Faculty
	if err := h.db.First(&faculty, req.FacultyID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Faculty member not found")
		}
		return response.InternalServerError(c, "Failed to load faculty member")
	}

	if err := h.db.Model(&subject).Update("faculty_id", faculty.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to assign faculty")
	}

	h.audit.Record(c, adminID, "subject_assign_faculty", "subjects", subject.ID,
		nil, fiber.Map{"faculty_id": faculty.ID}, "Assigned faculty to subject")

	return response.SuccessWithMessage(c, "Faculty assigned", subject)
}

// EnrollRequest names the students to enroll
type EnrollRequest struct {
	StudentIDs []uint `json:"student_ids" validate:"required,min=1"`
}

// EnrollStudents enrolls students into a subject (admin)
// POST /subjects/:id/enroll
func (h *SubjectHandler) EnrollStudents(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if len(req.StudentIDs) == 0 {
		return response.BadRequest(c, "student_ids must not be empty")
	}

	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}

	var students []model.Student
	if err := h.db.Where("id IN ? AND status = ?", req.StudentIDs, model.StudentActive).Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to load students")
	}
	if len(students) != len(req.StudentIDs) {
		return response.BadRequest(c, "One or more students not found or not active")
	}

	if err := h.db.Model(&subject).Association("Students").Append(&students); err != nil {
		return response.InternalServerError(c, "Failed to enroll students")
	}

	h.audit.Record(c, adminID, "subject_enroll", "subjects", subject.ID,
		nil, fiber.Map{"student_ids": req.StudentIDs}, "Enrolled students into subject")

	return response.SuccessWithMessage(c, "Students enrolled", fiber.Map{
		"subject_id": subject.ID,
		"enrolled":   len(students),
	})
}
