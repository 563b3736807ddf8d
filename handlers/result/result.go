package result

import (
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultHandler handles exam result recording and lookups
type ResultHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewResultHandler creates a new result handler
func NewResultHandler(db *gorm.DB) *ResultHandler {
	return &ResultHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// RecordRequest represents marks for one subject and exam sitting
type RecordRequest struct {
	SubjectID uint          `json:"subject_id" validate:"required"`
	ExamType  string        `json:"exam_type" validate:"required,oneof=midterm final practical"`
	MaxMarks  int           `json:"max_marks" validate:"omitempty,gte=1,lte=1000"`
	Entries   []RecordEntry `json:"entries" validate:"required,min=1,dive"`
}

// RecordEntry is one student's marks within a RecordRequest
type RecordEntry struct {
	StudentID uint `json:"student_id" validate:"required"`
	Marks     int  `json:"marks" validate:"gte=0"`
}

// Record stores exam results for a subject. Re-recording the same
// student/subject/exam updates the existing row, and the letter grade is
// derived from the marks (faculty)
// POST /results
func (h *ResultHandler) Record(c *fiber.Ctx) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req RecordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if req.MaxMarks == 0 {
		req.MaxMarks = 100
	}

	var subject model.Subject
	if err := h.db.First(&subject, req.SubjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}

	role, _ := middleware.GetAccountRole(c)
	if role != model.RoleAdmin {
		account, ok := middleware.GetAccount(c)
		if !ok || account.FacultyID == nil {
			return response.Forbidden(c, "No faculty profile linked to this account")
		}
		if subject.FacultyID == nil || *subject.FacultyID != *account.FacultyID {
			return response.Forbidden(c, "You are not assigned to this subject")
		}
	}

	var enrolled []model.Student
	if err := h.db.Model(&subject).Association("Students").Find(&enrolled); err != nil {
		return response.InternalServerError(c, "Failed to load enrollment")
	}
	enrolledSet := make(map[uint]bool, len(enrolled))
	for _, s := range enrolled {
		enrolledSet[s.ID] = true
	}

	results := make([]model.ExamResult, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if !enrolledSet[entry.StudentID] {
			return response.BadRequest(c, "One or more students are not enrolled in this subject")
		}
		if entry.Marks > req.MaxMarks {
			return response.BadRequest(c, "marks exceed max_marks")
		}
		results = append(results, model.ExamResult{
			StudentID:    entry.StudentID,
			SubjectID:    subject.ID,
			ExamType:     req.ExamType,
			Semester:     subject.Semester,
			Marks:        entry.Marks,
			MaxMarks:     req.MaxMarks,
			Grade:        model.LetterGrade(entry.Marks, req.MaxMarks),
			RecordedByID: accountID,
		})
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "student_id"}, {Name: "subject_id"}, {Name: "exam_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"marks", "max_marks", "grade", "recorded_by_id", "updated_at"}),
	}).Create(&results).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to record results")
	}

	return response.SuccessWithMessage(c, "Results recorded", fiber.Map{
		"subject_id": subject.ID,
		"exam_type":  req.ExamType,
		"recorded":   len(results),
	})
}

// ListForSubject lists results for a subject, optionally for one exam type
// (faculty/admin)
// GET /results/subjects/:id
func (h *ResultHandler) ListForSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	query := h.db.Where("subject_id = ?", subjectID).Preload("Student")
	if examType := c.Query("exam_type"); examType != "" {
		query = query.Where("exam_type = ?", examType)
	}

	var results []model.ExamResult
	if err := query.Order("student_id ASC").Find(&results).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch results")
	}

	return response.Success(c, results)
}
