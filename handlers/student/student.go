package student

import (
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StudentHandler handles student directory and self-service endpoints
type StudentHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB, audit *services.AuditService) *StudentHandler {
	return &StudentHandler{db: db, audit: audit}
}

// ListStudents lists students with filters (admin/faculty)
// GET /students
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.Student{})

	if department := c.Query("department"); department != "" {
		query = query.Where("department = ?", department)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR student_number ILIKE ?", like, like, like)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var students []model.Student
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Order("student_number ASC").
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}

// GetStudent returns one student with enrolled subjects (admin/faculty)
// GET /students/:id
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	var student model.Student
	if err := h.db.Preload("Subjects").Preload("FeeInvoices").First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to load student")
	}

	return response.Success(c, student)
}

// UpdateStudentRequest represents an admin update to a student record
type UpdateStudentRequest struct {
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Semester int    `json:"semester,omitempty"`
	Status   string `json:"status,omitempty"`
}

// UpdateStudent updates mutable student fields (admin)
// PUT /students/:id
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var student model.Student
	if err := h.db.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to load student")
	}

	old := student

	updates := map[string]interface{}{}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.Semester > 0 {
		updates["semester"] = req.Semester
	}
	if req.Status != "" {
		if !model.ValidStudentStatus(req.Status) {
			return response.BadRequest(c, "status must be one of active, suspended, graduated")
		}
		updates["status"] = req.Status
	}
	if len(updates) == 0 {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(&student).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	h.audit.Record(c, adminID, "student_update", "students", student.ID, old, student, "Updated student record")

	return response.SuccessWithMessage(c, "Student updated", student)
}

// DeleteStudent soft-deletes a student and locks the linked account (admin).
// The student number stays burned; numbering counts unscoped rows
// DELETE /students/:id
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	studentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid student ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var student model.Student
	if err := h.db.First(&student, studentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to load student")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&student).Error; err != nil {
			return err
		}
		return tx.Model(&model.Account{}).
			Where("student_id = ?", student.ID).
			Updates(map[string]interface{}{
				"is_approved":   false,
				"token_version": gorm.Expr("token_version + 1"),
			}).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	h.audit.Record(c, adminID, "student_delete", "students", student.ID, student, nil, "Deleted student record")

	return response.SuccessWithMessage(c, "Student deleted", nil)
}
