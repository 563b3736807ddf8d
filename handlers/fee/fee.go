package fee

import (
	"strconv"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/Codewithswappy/UMSystem-sub001/utils/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeeHandler handles fee invoices and payment recording
type FeeHandler struct {
	db        *gorm.DB
	audit     *services.AuditService
	validator *validation.Validator
}

// NewFeeHandler creates a new fee handler
func NewFeeHandler(db *gorm.DB, audit *services.AuditService) *FeeHandler {
	return &FeeHandler{
		db:        db,
		audit:     audit,
		validator: validation.NewValidator(),
	}
}

// IssueRequest represents a new charge against a student
type IssueRequest struct {
	StudentID   uint      `json:"student_id" validate:"required"`
	Semester    int       `json:"semester" validate:"required,gte=1,lte=12"`
	Description string    `json:"description" validate:"required,max=255"`
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"omitempty,len=3"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

// IssueInvoice raises a fee invoice against a student (admin)
// POST /fees
func (h *FeeHandler) IssueInvoice(c *fiber.Ctx) error {
	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var student model.Student
	if err := h.db.First(&student, req.StudentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Student not found")
		}
		return response.InternalServerError(c, "Failed to load student")
	}

	invoice := model.FeeInvoice{
		StudentID:   student.ID,
		Semester:    req.Semester,
		Description: req.Description,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		DueAt:       req.DueAt,
		Status:      model.FeePending,
		IssuedByID:  adminID,
	}
	if invoice.Currency == "" {
		invoice.Currency = "INR"
	}

	if err := h.db.Create(&invoice).Error; err != nil {
		return response.InternalServerError(c, "Failed to create invoice")
	}

	h.audit.Record(c, adminID, "fee_issue", "fee_invoices", invoice.ID, nil, invoice, "Issued fee invoice")

	return response.Created(c, invoice)
}

// ListInvoices lists invoices with filters (admin)
// GET /fees
func (h *FeeHandler) ListInvoices(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.FeeInvoice{}).Preload("Student")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if semester := c.Query("semester"); semester != "" {
		query = query.Where("semester = ?", semester)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var invoices []model.FeeInvoice
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Order("due_at DESC").
		Find(&invoices).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch invoices")
	}

	return response.Paginated(c, invoices, pagination)
}

// RecordPayment marks an invoice paid and mints a receipt number (admin)
// POST /fees/:id/pay
func (h *FeeHandler) RecordPayment(c *fiber.Ctx) error {
	invoiceID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid invoice ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var invoice model.FeeInvoice
	if err := h.db.First(&invoice, invoiceID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Invoice not found")
		}
		return response.InternalServerError(c, "Failed to load invoice")
	}
	if invoice.Status == model.FeePaid {
		return response.Conflict(c, "Invoice is already paid")
	}

	old := invoice

	now := time.Now()
	receipt := "RCPT-" + uuid.New().String()
	updates := map[string]interface{}{
		"status":         model.FeePaid,
		"paid_at":        now,
		"receipt_number": receipt,
	}
	if err := h.db.Model(&invoice).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to record payment")
	}

	h.audit.Record(c, adminID, "fee_payment", "fee_invoices", invoice.ID, old, invoice, "Recorded fee payment")

	return response.SuccessWithMessage(c, "Payment recorded", invoice)
}
