package student

import (
	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
)

// currentStudent resolves the student profile linked to the authenticated
// account.
func (h *StudentHandler) currentStudent(c *fiber.Ctx) (*model.Student, error) {
	account, ok := middleware.GetAccount(c)
	if !ok || account.StudentID == nil {
		return nil, response.Forbidden(c, "No student profile linked to this account")
	}

	var student model.Student
	if err := h.db.First(&student, *account.StudentID).Error; err != nil {
		return nil, response.InternalServerError(c, "Failed to load student profile")
	}
	return &student, nil
}

// MyProfile returns the authenticated student's profile with subjects
// GET /students/me
func (h *StudentHandler) MyProfile(c *fiber.Ctx) error {
	student, errResp := h.currentStudent(c)
	if errResp != nil {
		return errResp
	}

	if err := h.db.Preload("Subjects").First(student, student.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, student)
}

// MyAttendance returns the student's attendance grouped per subject
// GET /students/me/attendance
func (h *StudentHandler) MyAttendance(c *fiber.Ctx) error {
	student, errResp := h.currentStudent(c)
	if errResp != nil {
		return errResp
	}

	query := h.db.Where("student_id = ?", student.ID).Preload("Subject")
	if subjectID := c.Query("subject_id"); subjectID != "" {
		query = query.Where("subject_id = ?", subjectID)
	}

	var records []model.AttendanceRecord
	if err := query.Order("date DESC").Find(&records).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	present := 0
	for _, r := range records {
		if r.Status == model.AttendancePresent || r.Status == model.AttendanceLate {
			present++
		}
	}
	percentage := 0.0
	if len(records) > 0 {
		percentage = float64(present) / float64(len(records)) * 100
	}

	return response.Success(c, fiber.Map{
		"records":    records,
		"total":      len(records),
		"present":    present,
		"percentage": percentage,
	})
}

// MyResults returns the student's exam results
// GET /students/me/results
func (h *StudentHandler) MyResults(c *fiber.Ctx) error {
	student, errResp := h.currentStudent(c)
	if errResp != nil {
		return errResp
	}

	var results []model.ExamResult
	if err := h.db.Where("student_id = ?", student.ID).
		Preload("Subject").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch results")
	}

	return response.Success(c, results)
}

// MyFees returns the student's fee invoices
// GET /students/me/fees
func (h *StudentHandler) MyFees(c *fiber.Ctx) error {
	student, errResp := h.currentStudent(c)
	if errResp != nil {
		return errResp
	}

	var invoices []model.FeeInvoice
	if err := h.db.Where("student_id = ?", student.ID).
		Order("due_at DESC").
		Find(&invoices).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch fee invoices")
	}

	var outstanding int64
	for _, inv := range invoices {
		if inv.Status != model.FeePaid {
			outstanding += inv.AmountCents
		}
	}

	return response.Success(c, fiber.Map{
		"invoices":          invoices,
		"outstanding_cents": outstanding,
	})
}

// MyAssignments returns assignments for the student's enrolled subjects
// GET /students/me/assignments
func (h *StudentHandler) MyAssignments(c *fiber.Ctx) error {
	student, errResp := h.currentStudent(c)
	if errResp != nil {
		return errResp
	}

	var assignments []model.Assignment
	if err := h.db.
		Joins("JOIN student_subjects ON student_subjects.subject_id = assignments.subject_id").
		Where("student_subjects.student_id = ?", student.ID).
		Preload("Subject").
		Order("due_at ASC").
		Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	return response.Success(c, assignments)
}
