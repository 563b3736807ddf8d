package router

import (
	"log"
	"os"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/database"
	admin_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/admin"
	admission_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/admission"
	announcement_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/announcement"
	assignment_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/assignment"
	attendance_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/attendance"
	auth_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/auth"
	event_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/event"
	faculty_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/faculty"
	fee_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/fee"
	result_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/result"
	student_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/student"
	subject_handlers "github.com/Codewithswappy/UMSystem-sub001/handlers/subject"
	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/services"
	"github.com/Codewithswappy/UMSystem-sub001/services/filestore"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"github.com/Codewithswappy/UMSystem-sub001/utils/cache"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
)

func SetupRoutes(app *fiber.App, store *database.GORMStore) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "university-admin-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,     // Access token expires in 24 hours
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db := store.DB()

	// Redis backs brute force protection and the provisioning locks. Without
	// it logins still work and locking degrades to in-process.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	var locker services.ApplicationLocker
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
		locker = services.NewRedisLocker(redisCache)
	} else {
		locker = services.NewMemoryLocker()
	}

	emailService := services.NewEmailService()
	if !emailService.IsConfigured() {
		log.Println("Warning: SMTP is not configured. Credential emails will not be delivered.")
	}

	auditService := services.NewAuditService(db)

	provisioningService := services.NewProvisioningService(
		database.NewApplicationStore(db),
		database.NewStudentStore(db),
		database.NewAccountStore(db),
		emailService,
		locker,
	)

	// Document storage is optional; uploads return 503 when unconfigured.
	var fileClient *filestore.Client
	if os.Getenv("SPACES_ACCESS_KEY") != "" {
		fileClient, err = filestore.NewClient(filestore.Config{
			AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
			SecretKey: os.Getenv("SPACES_SECRET_KEY"),
			Bucket:    os.Getenv("SPACES_BUCKET"),
			Region:    os.Getenv("SPACES_REGION"),
			Endpoint:  os.Getenv("SPACES_ENDPOINT"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Document uploads will be disabled.", err)
		}
	} else {
		log.Println("Warning: Object storage is not configured. Document uploads will be disabled.")
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection, emailService)
	admissionHandler := admission_handlers.NewAdmissionHandler(db, provisioningService, fileClient, auditService)
	studentHandler := student_handlers.NewStudentHandler(db, auditService)
	facultyHandler := faculty_handlers.NewFacultyHandler(db, emailService, auditService)
	subjectHandler := subject_handlers.NewSubjectHandler(db, auditService)
	attendanceHandler := attendance_handlers.NewAttendanceHandler(db)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(db)
	resultHandler := result_handlers.NewResultHandler(db)
	feeHandler := fee_handlers.NewFeeHandler(db, auditService)
	announcementHandler := announcement_handlers.NewAnnouncementHandler(db)
	eventHandler := event_handlers.NewEventHandler(db)
	adminHandler := admin_handlers.NewAdminHandler(db, auditService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.InternalServerError(c, "Database is unreachable")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	})

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Public settings
	api.Get("/settings/public", adminHandler.PublicSettings)

	// Admissions: the application form and document upload are public, the
	// review pipeline is admin only
	admissions := api.Group("/admissions")
	admissions.Post("/apply", admissionHandler.Apply)
	admissions.Post("/:id/documents", admissionHandler.UploadDocument)

	admissions.Get("/", authMiddleware.RequireAdmin(), admissionHandler.ListApplications)
	admissions.Get("/:id", authMiddleware.RequireAdmin(), admissionHandler.GetApplication)
	admissions.Get("/:id/documents", authMiddleware.RequireAdmin(), admissionHandler.ListDocuments)
	admissions.Get("/:id/documents/:docID/url", authMiddleware.RequireAdmin(), admissionHandler.GetDocumentURL)
	admissions.Get("/:id/documents/:docID/download", authMiddleware.RequireAdmin(), admissionHandler.DownloadDocument)
	admissions.Post("/:id/approve", authMiddleware.RequireAdmin(), admissionHandler.Approve)
	admissions.Post("/:id/reject", authMiddleware.RequireAdmin(), admissionHandler.Reject)
	admissions.Post("/:id/resend-credentials", authMiddleware.RequireAdmin(), admissionHandler.ResendCredentials)

	// Students: directory for staff, self-service for students
	students := api.Group("/students", authMiddleware.Required(), authMiddleware.RequirePasswordChanged())
	students.Get("/me", studentHandler.MyProfile)
	students.Get("/me/attendance", studentHandler.MyAttendance)
	students.Get("/me/results", studentHandler.MyResults)
	students.Get("/me/fees", studentHandler.MyFees)
	students.Get("/me/assignments", studentHandler.MyAssignments)
	students.Get("/", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), studentHandler.ListStudents)
	students.Get("/:id", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), studentHandler.GetStudent)
	students.Put("/:id", authMiddleware.RequireAdmin(), studentHandler.UpdateStudent)
	students.Delete("/:id", authMiddleware.RequireAdmin(), studentHandler.DeleteStudent)

	// Faculty directory (admin) and faculty self-service
	faculty := api.Group("/faculty", authMiddleware.Required(), authMiddleware.RequirePasswordChanged())
	faculty.Get("/me/subjects", authMiddleware.RequireRole(model.RoleFaculty), facultyHandler.MySubjects)
	faculty.Post("/", authMiddleware.RequireAdmin(), facultyHandler.CreateFaculty)
	faculty.Get("/", authMiddleware.RequireAdmin(), facultyHandler.ListFaculty)
	faculty.Get("/:id", authMiddleware.RequireAdmin(), facultyHandler.GetFaculty)
	faculty.Put("/:id", authMiddleware.RequireAdmin(), facultyHandler.UpdateFaculty)
	faculty.Delete("/:id", authMiddleware.RequireAdmin(), facultyHandler.DeleteFaculty)

	// Subject catalogue
	subjects := api.Group("/subjects", authMiddleware.Required(), authMiddleware.RequirePasswordChanged())
	subjects.Get("/", subjectHandler.ListSubjects)
	subjects.Get("/:id", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), subjectHandler.GetSubject)
	subjects.Post("/", authMiddleware.RequireAdmin(), subjectHandler.CreateSubject)
	subjects.Put("/:id", authMiddleware.RequireAdmin(), subjectHandler.UpdateSubject)
	subjects.Delete("/:id", authMiddleware.RequireAdmin(), subjectHandler.DeleteSubject)
	subjects.Put("/:id/faculty", authMiddleware.RequireAdmin(), subjectHandler.AssignFaculty)
	subjects.Post("/:id/enroll", authMiddleware.RequireAdmin(), subjectHandler.EnrollStudents)

	// Attendance (faculty)
	attendance := api.Group("/attendance", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), authMiddleware.RequirePasswordChanged())
	attendance.Post("/", attendanceHandler.Mark)
	attendance.Get("/subjects/:id", attendanceHandler.ListForSubject)

	// Assignments
	assignments := api.Group("/assignments", authMiddleware.Required(), authMiddleware.RequirePasswordChanged())
	assignments.Post("/", authMiddleware.RequireRole(model.RoleFaculty), assignmentHandler.CreateAssignment)
	assignments.Get("/subjects/:id", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), assignmentHandler.ListForSubject)
	assignments.Post("/:id/submit", authMiddleware.RequireRole(model.RoleStudent), assignmentHandler.Submit)
	assignments.Put("/submissions/:id/grade", authMiddleware.RequireRole(model.RoleFaculty), assignmentHandler.Grade)

	// Exam results (faculty record, staff read; students use /students/me/results)
	results := api.Group("/results", authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), authMiddleware.RequirePasswordChanged())
	results.Post("/", resultHandler.Record)
	results.Get("/subjects/:id", resultHandler.ListForSubject)

	// Fees (admin; students use /students/me/fees)
	fees := api.Group("/fees", authMiddleware.RequireAdmin())
	fees.Post("/", feeHandler.IssueInvoice)
	fees.Get("/", feeHandler.ListInvoices)
	fees.Post("/:id/pay", feeHandler.RecordPayment)

	// Announcements: reading is open to visitors (audience scoped by the
	// handler), posting and deleting are staff operations
	announcements := api.Group("/announcements")
	announcements.Get("/", authMiddleware.Optional(), announcementHandler.List)
	announcements.Post("/", authMiddleware.Required(), authMiddleware.RequirePasswordChanged(),
		authMiddleware.RequireRole(model.RoleAdmin, model.RoleFaculty), announcementHandler.Post)
	announcements.Delete("/:id", authMiddleware.RequireAdmin(), announcementHandler.Delete)

	// Campus events
	events := api.Group("/events", authMiddleware.Required(), authMiddleware.RequirePasswordChanged())
	events.Get("/", eventHandler.List)
	events.Post("/", authMiddleware.RequireAdmin(), eventHandler.Create)
	events.Put("/:id", authMiddleware.RequireAdmin(), eventHandler.Update)
	events.Delete("/:id", authMiddleware.RequireAdmin(), eventHandler.Delete)

	// Admin panel
	admin := api.Group("/admin", authMiddleware.RequireAdmin())
	admin.Get("/dashboard", adminHandler.Dashboard)
	admin.Get("/accounts", adminHandler.ListAccounts)
	admin.Put("/accounts/:id/approval", adminHandler.SetAccountApproval)
	admin.Post("/accounts/:id/reset-password", adminHandler.ResetAccountPassword)
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/audit-logs/:id", adminHandler.GetAuditLog)
	admin.Get("/cron-logs", adminHandler.ListCronLogs)
	admin.Get("/settings", adminHandler.ListSettings)
	admin.Get("/settings/:key", adminHandler.GetSetting)
	admin.Put("/settings/:key", adminHandler.UpdateSetting)
}
