package admin

import (
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler handles the admin dashboard, account directory, audit trail
// and settings
type AdminHandler struct {
	db    *gorm.DB
	audit *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{db: db, audit: audit}
}

// Dashboard returns headline counts for the admin overview page
// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var (
		pendingApplications int64
		totalStudents       int64
		activeStudents      int64
		totalFaculty        int64
		totalSubjects       int64
		overdueInvoices     int64
		outstandingCents    int64
		upcomingEvents      int64
	)

	h.db.Model(&model.AdmissionApplication{}).Where("status = ?", model.ApplicationPending).Count(&pendingApplications)
	h.db.Model(&model.Student{}).Count(&totalStudents)
	h.db.Model(&model.Student{}).Where("status = ?", model.StudentActive).Count(&activeStudents)
	h.db.Model(&model.Faculty{}).Count(&totalFaculty)
	h.db.Model(&model.Subject{}).Count(&totalSubjects)
	h.db.Model(&model.FeeInvoice{}).Where("status = ?", model.FeeOverdue).Count(&overdueInvoices)
	h.db.Model(&model.FeeInvoice{}).Where("status <> ?", model.FeePaid).
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&outstandingCents)
	h.db.Model(&model.CampusEvent{}).Where("starts_at > ?", time.Now()).Count(&upcomingEvents)

	return response.Success(c, fiber.Map{
		"pending_applications":  pendingApplications,
		"total_students":        totalStudents,
		"active_students":       activeStudents,
		"total_faculty":         totalFaculty,
		"total_subjects":        totalSubjects,
		"overdue_invoices":      overdueInvoices,
		"outstanding_fee_cents": outstandingCents,
		"upcoming_events":       upcomingEvents,
	})
}
