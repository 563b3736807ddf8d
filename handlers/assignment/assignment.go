package assignment

import (
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentHandler handles assignment lifecycle: faculty set and grade work,
// students submit answers
type AssignmentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAssignmentHandler creates a new assignment handler
func NewAssignmentHandler(db *gorm.DB) *AssignmentHandler {
	return &AssignmentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// facultyProfile resolves the faculty profile linked to the caller's account
func facultyProfile(c *fiber.Ctx) (uint, error) {
	account, ok := middleware.GetAccount(c)
	if !ok || account.FacultyID == nil {
		return 0, response.Forbidden(c, "No faculty profile linked to this account")
	}
	return *account.FacultyID, nil
}

// CreateAssignmentRequest represents new work for a subject
type CreateAssignmentRequest struct {
	SubjectID   uint      `json:"subject_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"omitempty,max=5000"`
	MaxMarks    int       `json:"max_marks" validate:"omitempty,gte=1,lte=1000"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

// CreateAssignment sets an assignment for a subject the caller teaches
// (faculty)
// POST /assignments
func (h *AssignmentHandler) CreateAssignment(c *fiber.Ctx) error {
	facultyID, errResp := facultyProfile(c)
	if errResp != nil {
		return errResp
	}

	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}
	if !req.DueAt.After(time.Now()) {
		return response.BadRequest(c, "due_at must be in the future")
	}

	var subject model.Subject
	if err := h.db.First(&subject, req.SubjectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Subject not found")
		}
		return response.InternalServerError(c, "Failed to load subject")
	}
	if subject.FacultyID == nil || *subject.FacultyID != facultyID {
		return response.Forbidden(c, "You are not assigned to this subject")
	}

	assignment := model.Assignment{
		SubjectID:   subject.ID,
		FacultyID:   facultyID,
		Title:       req.Title,
		Description: req.Description,
		MaxMarks:    req.MaxMarks,
		DueAt:       req.DueAt,
	}
	if assignment.MaxMarks == 0 {
		assignment.MaxMarks = 100
	}

	if err := h.db.Create(&assignment).Error; err != nil {
		return response.InternalServerError(c, "Failed to create assignment")
	}

	return response.Created(c, assignment)
}

// ListForSubject lists assignments for a subject with submissions
// (faculty/admin)
// GET /assignments/subjects/:id
func (h *AssignmentHandler) ListForSubject(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid subject ID")
	}

	var assignments []model.Assignment
	if err := h.db.Where("subject_id = ?", subjectID).
		Preload("Submissions").
		Preload("Submissions.Student").
		Order("due_at DESC").
		Find(&assignments).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch assignments")
	}

	return response.Success(c, assignments)
}

// SubmitRequest carries a student's answer
type SubmitRequest struct {
	Content string `json:"content" validate:"required,max=50000"`
}

// Submit records a student's answer to an assignment. Re-submitting before
// grading replaces the earlier answer (student)
// POST /assignments/:id/submit
func (h *AssignmentHandler) Submit(c *fiber.Ctx) error {
	assignmentID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid assignment ID")
	}

	account, ok := middleware.GetAccount(c)
	if !ok || account.StudentID == nil {
		return response.Forbidden(c, "No student profile linked to this account")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var assignment model.Assignment
	if err := h.db.First(&assignment, assignmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Assignment not found")
		}
		return response.InternalServerError(c, "Failed to load assignment")
	}
	if time.Now().After(assignment.DueAt) {
		return response.Conflict(c, "The submission deadline has passed")
	}

	var enrolled int64
	h.db.Table("student_subjects").
		Where("student_id = ? AND subject_id = ?", *account.StudentID, assignment.SubjectID).
		Count(&enrolled)
	if enrolled == 0 {
		return response.Forbidden(c, "You are not enrolled in this subject")
	}

	var existing model.AssignmentSubmission
	err = h.db.Where("assignment_id = ? AND student_id = ?", assignment.ID, *account.StudentID).
		First(&existing).Error
	if err == nil && existing.GradedAt != nil {
		return response.Conflict(c, "This submission has already been graded")
	}

	submission := model.AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    *account.StudentID,
		Content:      req.Content,
		SubmittedAt:  time.Now(),
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "submitted_at", "updated_at"}),
	}).Create(&submission).Error; err != nil {
		return response.InternalServerError(c, "Failed to record submission")
	}

	return response.SuccessWithMessage(c, "Submission recorded", submission)
}

// GradeRequest carries marks and feedback for one submission
type GradeRequest struct {
	Marks    int    `json:"marks" validate:"gte=0"`
	Feedback string `json:"feedback" validate:"omitempty,max=5000"`
}

// Grade records marks for a submission (faculty)
// PUT /assignments/submissions/:id/grade
func (h *AssignmentHandler) Grade(c *fiber.Ctx) error {
	submissionID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid submission ID")
	}

	facultyID, errResp := facultyProfile(c)
	if errResp != nil {
		return errResp
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var submission model.AssignmentSubmission
	if err := h.db.Preload("Assignment").First(&submission, submissionID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Submission not found")
		}
		return response.InternalServerError(c, "Failed to load submission")
	}
	if submission.Assignment.FacultyID != facultyID {
		return response.Forbidden(c, "You did not set this assignment")
	}
	if req.Marks > submission.Assignment.MaxMarks {
		return response.BadRequest(c, "marks exceed the assignment maximum")
	}

	now := time.Now()
	updates := map[string]interface{}{
		"marks":     req.Marks,
		"feedback":  req.Feedback,
		"graded_at": now,
	}
	if err := h.db.Model(&submission).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to grade submission")
	}

	return response.SuccessWithMessage(c, "Submission graded", submission)
}
