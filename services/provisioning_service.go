package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
)

// Sentinel errors for the provisioning workflow. Handlers map these to HTTP
// statuses; anything else is an internal failure of a repository or store.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyRejected     = errors.New("application has already been rejected")
	ErrAlreadyReviewed     = errors.New("application has already been reviewed")
	ErrAccountExists       = errors.New("application already approved and an account exists for this email")
	ErrNotApproved         = errors.New("application is not approved")
	ErrStudentMissing      = errors.New("no student record exists for this application")
	ErrAccountMissing      = errors.New("no account exists for this application")
	ErrReasonRequired      = errors.New("rejection reason is required")

	// ErrDuplicateRecord is returned by repositories when a unique
	// constraint rejects a write.
	ErrDuplicateRecord = errors.New("duplicate record")
)

// IsNotFound reports whether err means the referenced application is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrApplicationNotFound)
}

// IsConflict reports whether err is a state-machine violation rather than an
// internal failure.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyRejected) ||
		errors.Is(err, ErrAlreadyReviewed) ||
		errors.Is(err, ErrAccountExists) ||
		errors.Is(err, ErrNotApproved) ||
		errors.Is(err, ErrStudentMissing) ||
		errors.Is(err, ErrAccountMissing)
}

// ApplicationRepository loads and persists admission applications.
// Find methods return (nil, nil) when no row matches.
type ApplicationRepository interface {
	FindByID(ctx context.Context, id uint) (*model.AdmissionApplication, error)
	Save(ctx context.Context, app *model.AdmissionApplication) error
}

// StudentRepository owns student profiles keyed by email.
type StudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Student, error)
	Create(ctx context.Context, student *model.Student) error
	Count(ctx context.Context) (int64, error)
}

// AccountRepository owns login accounts. Passwords cross this boundary as
// plaintext and are hashed by the implementation before storage; the engine
// never sees or keeps a hash.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Account, error)
	Create(ctx context.Context, account *model.Account, password string) error
	Save(ctx context.Context, account *model.Account) error
	SetPassword(ctx context.Context, account *model.Account, password string) error
}

// DeliveryResult is the outcome of a notification attempt. Notifiers report
// failure through it and never through an error: a dead mail relay must not
// fail an approval whose writes have already been committed.
type DeliveryResult struct {
	Sent  bool
	Error string
}

// CredentialNotifier sends admission outcome emails.
type CredentialNotifier interface {
	SendApproval(ctx context.Context, email, name, studentNumber, tempPassword string) DeliveryResult
	SendRejection(ctx context.Context, email, name, reason string) DeliveryResult
}

// ApplicationLocker serializes provisioning per applicant email so two
// concurrent approvals cannot both mint a student or an account.
type ApplicationLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// ApproveOverrides lets the reviewer correct the applicant's stated
// department or program at approval time.
type ApproveOverrides struct {
	Department string `json:"department,omitempty"`
	Program    string `json:"program,omitempty"`
}

// ProvisionResult describes what a decision produced. TempPassword is
// populated only by ResendCredentials, never on the normal approval path.
type ProvisionResult struct {
	Application  *model.AdmissionApplication `json:"application"`
	Student      *model.Student              `json:"student"`
	EmailSent    bool                        `json:"email_sent"`
	EmailError   string                      `json:"email_error,omitempty"`
	TempPassword string                      `json:"temp_password,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
}

// ProvisioningService drives an admission decision to a consistent end
// state across the application, student and account stores.
//
// There is no transaction spanning the three stores. Each write is
// independently durable and every step first checks whether a prior
// attempt already performed it, so a crash between writes is repaired by
// simply calling Approve again (the Approved -> Approved recovery
// transition).
type ProvisioningService struct {
	applications ApplicationRepository
	students     StudentRepository
	accounts     AccountRepository
	notifier     CredentialNotifier
	locks        ApplicationLocker
}

// NewProvisioningService creates a provisioning service
func NewProvisioningService(
	applications ApplicationRepository,
	students StudentRepository,
	accounts AccountRepository,
	notifier CredentialNotifier,
	locks ApplicationLocker,
) *ProvisioningService {
	return &ProvisioningService{
		applications: applications,
		students:     students,
		accounts:     accounts,
		notifier:     notifier,
		locks:        locks,
	}
}

const maxStudentNumberRetries = 5

// FormatStudentNumber renders the sequential student identifier (STU00001).
func FormatStudentNumber(n int64) string {
	return fmt.Sprintf("STU%05d", n)
}

func provisionLockKey(email string) string {
	return "provision:" + strings.ToLower(email)
}

// Approve decides an application in favour of the applicant.
//
// Legal transitions: Pending -> Approved, and Approved -> Approved but only
// while no account exists for the applicant's email. The latter is the
// recovery path for an approval that moved the application and then crashed
// before the account was created. Approved-with-account and Rejected both
// conflict.
func (s *ProvisioningService) Approve(ctx context.Context, applicationID, reviewerID uint, overrides *ApproveOverrides) (*ProvisionResult, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	release, err := s.locks.Lock(ctx, provisionLockKey(app.Email))
	if err != nil {
		return nil, fmt.Errorf("acquire provisioning lock: %w", err)
	}
	defer release()

	// Re-read under the lock; a concurrent approval may have advanced the
	// application between the first read and the lock acquisition.
	app, err = s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	switch app.Status {
	case model.ApplicationRejected:
		return nil, ErrAlreadyRejected

	case model.ApplicationApproved:
		existing, err := s.accounts.FindByEmail(ctx, app.Email)
		if err != nil {
			return nil, fmt.Errorf("look up account: %w", err)
		}
		if existing != nil {
			return nil, ErrAccountExists
		}
		log.Printf("[provisioning] re-approving application %d (%s): approved but no account, finishing earlier attempt", app.ID, app.Email)

	case model.ApplicationPending:
		now := time.Now()
		app.Status = model.ApplicationApproved
		app.ReviewerID = &reviewerID
		app.ReviewedAt = &now
		if overrides != nil {
			if overrides.Department != "" {
				app.Department = overrides.Department
			}
			if overrides.Program != "" {
				app.Program = overrides.Program
			}
		}
		if err := s.applications.Save(ctx, app); err != nil {
			return nil, fmt.Errorf("persist approval: %w", err)
		}
	}

	student, err := s.ensureStudent(ctx, app)
	if err != nil {
		return nil, err
	}

	return s.ensureAccount(ctx, app, student)
}

// ensureStudent returns the student profile for the application's email,
// creating it when this is the first approval to get this far. The student
// number is derived from the running count; the unique index on the column
// plus retry-on-duplicate closes the race between concurrent creations.
func (s *ProvisioningService) ensureStudent(ctx context.Context, app *model.AdmissionApplication) (*model.Student, error) {
	student, err := s.students.FindByEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("look up student: %w", err)
	}
	if student != nil {
		// Materialized by a prior attempt; reuse as-is.
		return student, nil
	}

	count, err := s.students.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}

	for attempt := 0; attempt < maxStudentNumberRetries; attempt++ {
		student = &model.Student{
			StudentNumber: FormatStudentNumber(count + 1 + int64(attempt)),
			Name:          app.Name,
			Email:         app.Email,
			Phone:         app.Phone,
			Gender:        app.Gender,
			DateOfBirth:   app.DateOfBirth,
			Address:       app.Address,
			Department:    app.Department,
			Program:       app.Program,
			Semester:      1,
			Status:        model.StudentActive,
			ApplicationID: &app.ID,
		}
		err = s.students.Create(ctx, student)
		if err == nil {
			return student, nil
		}
		if !errors.Is(err, ErrDuplicateRecord) {
			return nil, fmt.Errorf("create student: %w", err)
		}
		// Number taken by a concurrent creation; try the next one.
	}
	return nil, fmt.Errorf("create student: %w", err)
}

// ensureAccount reconciles the login account for an approved application
// and sends the credentials email. Approval is already committed by the
// time this runs, so notification failure is reported in the result, never
// raised.
func (s *ProvisioningService) ensureAccount(ctx context.Context, app *model.AdmissionApplication, student *model.Student) (*ProvisionResult, error) {
	result := &ProvisionResult{Application: app, Student: student}

	account, err := s.accounts.FindByEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}

	switch {
	case account == nil:
		tempPassword, err := auth.GenerateTempPassword()
		if err != nil {
			return nil, fmt.Errorf("generate temporary password: %w", err)
		}
		account = &model.Account{
			Email:              app.Email,
			Name:               app.Name,
			Role:               model.RoleStudent,
			IsApproved:         true,
			MustChangePassword: true,
			ApplicationID:      &app.ID,
			StudentID:          &student.ID,
		}
		if err := s.accounts.Create(ctx, account, tempPassword); err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
		delivery := s.notifier.SendApproval(ctx, app.Email, app.Name, student.StudentNumber, tempPassword)
		result.EmailSent = delivery.Sent
		result.EmailError = delivery.Error

	case account.Role == model.RoleStudent:
		// A student account already exists for this email. Rotate the
		// credentials and repair the profile links so the account and the
		// records it points at agree again.
		tempPassword, err := auth.GenerateTempPassword()
		if err != nil {
			return nil, fmt.Errorf("generate temporary password: %w", err)
		}
		account.IsApproved = true
		account.MustChangePassword = true
		account.ApplicationID = &app.ID
		account.StudentID = &student.ID
		if err := s.accounts.SetPassword(ctx, account, tempPassword); err != nil {
			return nil, fmt.Errorf("rotate account password: %w", err)
		}
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		delivery := s.notifier.SendApproval(ctx, app.Email, app.Name, student.StudentNumber, tempPassword)
		result.EmailSent = delivery.Sent
		result.EmailError = delivery.Error

	default:
		// The email already belongs to an admin or faculty account. Leave
		// its credentials alone; just mark it approved and flag the overlap
		// for the reviewer.
		account.IsApproved = true
		if err := s.accounts.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("update account: %w", err)
		}
		result.Notes = fmt.Sprintf("email already registered to a %s account; credentials unchanged, no email sent", account.Role)
	}

	return result, nil
}

// Reject declines a pending application. Legal only from Pending; the
// rejection notification is best-effort and never reverts the decision.
// It takes the same per-email lock as Approve so a rejection cannot land on
// an application a concurrent approval is provisioning.
func (s *ProvisioningService) Reject(ctx context.Context, applicationID, reviewerID uint, reason string) (*model.AdmissionApplication, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	release, err := s.locks.Lock(ctx, provisionLockKey(app.Email))
	if err != nil {
		return nil, fmt.Errorf("acquire provisioning lock: %w", err)
	}
	defer release()

	// Re-read under the lock; a concurrent approval may have advanced the
	// application between the first read and the lock acquisition.
	app, err = s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.Status != model.ApplicationPending {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now()
	app.Status = model.ApplicationRejected
	app.ReviewerID = &reviewerID
	app.ReviewedAt = &now
	app.RejectionReason = reason
	if err := s.applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("persist rejection: %w", err)
	}

	if delivery := s.notifier.SendRejection(ctx, app.Email, app.Name, reason); !delivery.Sent {
		log.Printf("[provisioning] rejection email to %s not sent: %s", app.Email, delivery.Error)
	}
	return app, nil
}

// ResendCredentials rotates the temporary password of an already provisioned
// applicant and re-sends the credentials email. The plaintext password is
// returned to the caller as a fallback for failed delivery; the route that
// exposes this is admin-only for exactly that reason.
func (s *ProvisioningService) ResendCredentials(ctx context.Context, applicationID uint) (*ProvisionResult, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.Status != model.ApplicationApproved {
		return nil, ErrNotApproved
	}

	release, err := s.locks.Lock(ctx, provisionLockKey(app.Email))
	if err != nil {
		return nil, fmt.Errorf("acquire provisioning lock: %w", err)
	}
	defer release()

	student, err := s.students.FindByEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("look up student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentMissing
	}

	account, err := s.accounts.FindByEmail(ctx, app.Email)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountMissing
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	account.MustChangePassword = true
	if err := s.accounts.SetPassword(ctx, account, tempPassword); err != nil {
		return nil, fmt.Errorf("rotate account password: %w", err)
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	delivery := s.notifier.SendApproval(ctx, app.Email, app.Name, student.StudentNumber, tempPassword)
	return &ProvisionResult{
		Application:  app,
		Student:      student,
		EmailSent:    delivery.Sent,
		EmailError:   delivery.Error,
		TempPassword: tempPassword,
	}, nil
}
