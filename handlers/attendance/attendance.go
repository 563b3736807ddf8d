package attendance

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

// AttendanceHandler handles attendance marking by faculty and lookups
type AttendanceHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// MarkRequest represents attendance for one subject on one date
type MarkRequest struct {
	SubjectID uint        `json:"subject_id" validate:"required"`
	Date      string      `json:"date" validate:"required,datetime=2006-01-02"`
	Entries   []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// MarkEntry is one student's status within a MarkRequest
type MarkEntry struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

// subjectForFaculty loads a subject and checks the caller teaches it. Admins
// may mark any subject.
func (h *AttendanceHandler) subjectForFaculty(c *fiber.Ctx, subjectID uint) (*model.Subject, error) {
	var subject model.Subject
	if err := h.db.First(&subject, subjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, response.NotFound(c, "Subject not found")
		}
		return nil, response.InternalServerError(c, "Failed to load subject")
	}

	role, _ := middleware.GetAccountRole(c)
	if role == model.RoleAdmin {
		return &subject, nil
	}

	account, ok := middleware.GetAccount(c)
	if !ok || account.FacultyID == nil {
		return nil, response.Forbidden(c, "No faculty profile linked to this account")
	}
	if subject.FacultyID == nil || *subject.FacultyID != *account.FacultyID {
		return nil, response.Forbidden(c, "You are not assigned to this subject")
	}
	return &subject, nil
}

// Mark records attendance for a subject on a date. Re-marking the same
// student/subject/date updates the existing row instead of duplicating it
// (faculty)
// POST /attendance
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req MarkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	subject, errResp := h.subjectForFaculty(c, req.SubjectID)
	if errResp != nil {
		return errResp
	}

	// Only enrolled students can be marked.
	var enrolled []model.Student
	if err := h.db.Model(subject).Association("Students").Find(&enrolled); err != nil {
		return response.InternalServerError(c, "Failed to load enrollment")
	}
	enrolledSet := make(map[uint]bool, len(enrolled))
	for _, s := range enrolled {
		enrolledSet[s.ID] = true
	}

	records := make([]model.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if !enrolledSet[entry.StudentID] {
			return response.BadRequest(c, "One or more students are not enrolled in this subject")
		}
		records = append(records, model.AttendanceRecord{
			SubjectID:  subject.ID,
			StudentID:  entry.StudentID,
			Date:       req.Date,
			Status:     entry.Status,
			MarkedByID: accountID,
		})
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subject_id"}, {Name: "student_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "marked_by_id", "updated_at"}),
	}).Create(&records).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to record attendance")
	}

	return response.SuccessWithMessage(c, "Attendance recorded", fiber.Map{
		"subject_id": subject.ID,
		"date":       req.Date,
		"marked":     len(records),
	})
}

// ListForSubject lists attendance for a subject, optionally for one date
// (faculty/admin)
// GET /attendance/subjects/:id
func (h *AttendanceHandler) ListForSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	subject, errResp := h.subjectForFaculty(c, uint(subjectID))
	if errResp != nil {
		return errResp
	}

	query := h.db.Where("subject_id = ?", subject.ID).Preload("Student")
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var records []model.AttendanceRecord
	if err := query.Order("date DESC, student_id ASC").Find(&records).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch attendance")
	}

	return response.Success(c, records)
}
