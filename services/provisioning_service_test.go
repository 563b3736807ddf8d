package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
)

// ---- in-memory fakes ----

type fakeApplications struct {
	mu   sync.Mutex
	apps map[uint]*model.AdmissionApplication
}

func newFakeApplications(apps ...*model.AdmissionApplication) *fakeApplications {
	f := &fakeApplications{apps: make(map[uint]*model.AdmissionApplication)}
	for _, a := range apps {
		f.apps[a.ID] = a
	}
	return f
}

func (f *fakeApplications) FindByID(_ context.Context, id uint) (*model.AdmissionApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[id]
	if !ok {
		return nil, nil
	}
	copied := *app
	return &copied, nil
}

func (f *fakeApplications) Save(_ context.Context, app *model.AdmissionApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

type fakeStudents struct {
	mu       sync.Mutex
	nextID   uint
	byEmail  map[string]*model.Student
	byNumber map[string]*model.Student
	// numbers a test pre-claims to force duplicate errors
	takenNumbers map[string]bool
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{
		byEmail:      make(map[string]*model.Student),
		byNumber:     make(map[string]*model.Student),
		takenNumbers: make(map[string]bool),
	}
}

func (f *fakeStudents) FindByEmail(_ context.Context, email string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStudents) Create(_ context.Context, student *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.takenNumbers[student.StudentNumber] {
		return ErrDuplicateRecord
	}
	if _, ok := f.byNumber[student.StudentNumber]; ok {
		return ErrDuplicateRecord
	}
	if _, ok := f.byEmail[student.Email]; ok {
		return ErrDuplicateRecord
	}
	f.nextID++
	student.ID = f.nextID
	copied := *student
	f.byEmail[student.Email] = &copied
	f.byNumber[student.StudentNumber] = &copied
	return nil
}

func (f *fakeStudents) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byNumber)), nil
}

type fakeAccounts struct {
	mu        sync.Mutex
	nextID    uint
	byEmail   map[string]*model.Account
	passwords map[string]string // email -> last plaintext set
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		byEmail:   make(map[string]*model.Account),
		passwords: make(map[string]string),
	}
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAccounts) Create(_ context.Context, account *model.Account, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[account.Email]; ok {
		return ErrDuplicateRecord
	}
	f.nextID++
	account.ID = f.nextID
	copied := *account
	f.byEmail[account.Email] = &copied
	f.passwords[account.Email] = password
	return nil
}

func (f *fakeAccounts) Save(_ context.Context, account *model.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *account
	f.byEmail[account.Email] = &copied
	return nil
}

func (f *fakeAccounts) SetPassword(_ context.Context, account *model.Account, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[account.Email] = password
	return nil
}

type sentMail struct {
	kind          string // approval, rejection
	email         string
	studentNumber string
	tempPassword  string
	reason        string
}

type fakeNotifier struct {
	mu   sync.Mutex
	fail string // when non-empty, every delivery fails with this error
	sent []sentMail
}

func (f *fakeNotifier) SendApproval(_ context.Context, email, name, studentNumber, tempPassword string) DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != "" {
		return DeliveryResult{Error: f.fail}
	}
	f.sent = append(f.sent, sentMail{kind: "approval", email: email, studentNumber: studentNumber, tempPassword: tempPassword})
	return DeliveryResult{Sent: true}
}

func (f *fakeNotifier) SendRejection(_ context.Context, email, name, reason string) DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != "" {
		return DeliveryResult{Error: f.fail}
	}
	f.sent = append(f.sent, sentMail{kind: "rejection", email: email, reason: reason})
	return DeliveryResult{Sent: true}
}

type fixture struct {
	apps     *fakeApplications
	students *fakeStudents
	accounts *fakeAccounts
	notifier *fakeNotifier
	locker   *MemoryLocker
	svc      *ProvisioningService
}

func newFixture(apps ...*model.AdmissionApplication) *fixture {
	f := &fixture{
		apps:     newFakeApplications(apps...),
		students: newFakeStudents(),
		accounts: newFakeAccounts(),
		notifier: &fakeNotifier{},
		locker:   NewMemoryLocker(),
	}
	f.svc = NewProvisioningService(f.apps, f.students, f.accounts, f.notifier, f.locker)
	return f
}

func pendingApplication(id uint) *model.AdmissionApplication {
	return &model.AdmissionApplication{
		ID:          id,
		Name:        "Asha Verma",
		Email:       "asha.verma@example.com",
		Phone:       "9876501234",
		Department:  "Computer Science",
		Program:     "B.Tech",
		DateOfBirth: "2004-06-12",
		Status:      model.ApplicationPending,
	}
}

// ---- tests ----

func TestApproveProvisionsStudentAndAccount(t *testing.T) {
	f := newFixture(pendingApplication(1))

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if result.Application.Status != model.ApplicationApproved {
		t.Errorf("application status = %q, want approved", result.Application.Status)
	}
	if result.Application.ReviewerID == nil || *result.Application.ReviewerID != 9 {
		t.Errorf("reviewer not recorded: %v", result.Application.ReviewerID)
	}
	if result.Application.ReviewedAt == nil {
		t.Error("ReviewedAt not set")
	}

	if result.Student == nil {
		t.Fatal("no student in result")
	}
	if result.Student.StudentNumber != "STU00001" {
		t.Errorf("student number = %q, want STU00001", result.Student.StudentNumber)
	}
	if result.Student.Status != model.StudentActive {
		t.Errorf("student status = %q, want active", result.Student.Status)
	}
	if result.Student.Semester != 1 {
		t.Errorf("student semester = %d, want 1", result.Student.Semester)
	}

	account, _ := f.accounts.FindByEmail(context.Background(), "asha.verma@example.com")
	if account == nil {
		t.Fatal("no account created")
	}
	if account.Role != model.RoleStudent {
		t.Errorf("account role = %q, want student", account.Role)
	}
	if !account.IsApproved {
		t.Error("account not approved")
	}
	if !account.MustChangePassword {
		t.Error("MustChangePassword not set")
	}
	if account.StudentID == nil || *account.StudentID != result.Student.ID {
		t.Error("account not linked to the student profile")
	}

	if !result.EmailSent {
		t.Errorf("email not sent: %s", result.EmailError)
	}
	if result.TempPassword != "" {
		t.Error("approval must not return the temporary password")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].kind != "approval" {
		t.Fatalf("unexpected notifications: %+v", f.notifier.sent)
	}
	if f.notifier.sent[0].tempPassword != f.accounts.passwords["asha.verma@example.com"] {
		t.Error("emailed password differs from the stored one")
	}
}

func TestApproveWithOverrides(t *testing.T) {
	f := newFixture(pendingApplication(1))

	result, err := f.svc.Approve(context.Background(), 1, 9, &ApproveOverrides{Department: "Electrical Engineering", Program: "B.E."})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if result.Application.Department != "Electrical Engineering" {
		t.Errorf("department = %q, want override", result.Application.Department)
	}
	if result.Student.Program != "B.E." {
		t.Errorf("student program = %q, want override", result.Student.Program)
	}
}

func TestApproveUnknownApplication(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Approve(context.Background(), 42, 9, nil)
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestApproveRejectedApplication(t *testing.T) {
	app := pendingApplication(1)
	app.Status = model.ApplicationRejected
	f := newFixture(app)

	_, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if !errors.Is(err, ErrAlreadyRejected) {
		t.Fatalf("err = %v, want ErrAlreadyRejected", err)
	}
	if !IsConflict(err) {
		t.Error("ErrAlreadyRejected must be a conflict")
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	f := newFixture(pendingApplication(1))

	if _, err := f.svc.Approve(context.Background(), 1, 9, nil); err != nil {
		t.Fatalf("first Approve failed: %v", err)
	}
	_, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if !errors.Is(err, ErrAccountExists) {
		t.Fatalf("second Approve: err = %v, want ErrAccountExists", err)
	}
}

func TestApproveRecoversFromCrashBeforeStudent(t *testing.T) {
	// Simulates an approval that persisted the status flip and then died:
	// application approved, no student, no account.
	app := pendingApplication(1)
	app.Status = model.ApplicationApproved
	f := newFixture(app)

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("recovery Approve failed: %v", err)
	}
	if result.Student == nil || result.Student.StudentNumber != "STU00001" {
		t.Fatalf("recovery did not materialize the student: %+v", result.Student)
	}
	account, _ := f.accounts.FindByEmail(context.Background(), app.Email)
	if account == nil {
		t.Fatal("recovery did not create the account")
	}
	if !result.EmailSent {
		t.Error("recovery did not send credentials")
	}
}

func TestApproveRecoversFromCrashAfterStudent(t *testing.T) {
	// Approved and the student exists, but the crash hit before the account
	// was created. Recovery must reuse the student, not mint a second one.
	app := pendingApplication(1)
	app.Status = model.ApplicationApproved
	f := newFixture(app)

	existing := &model.Student{
		StudentNumber: "STU00001",
		Name:          app.Name,
		Email:         app.Email,
		Department:    app.Department,
		Program:       app.Program,
		Semester:      1,
		Status:        model.StudentActive,
	}
	if err := f.students.Create(context.Background(), existing); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("recovery Approve failed: %v", err)
	}
	if result.Student.ID != existing.ID {
		t.Errorf("recovery created a new student (id %d), want reuse of %d", result.Student.ID, existing.ID)
	}
	if count, _ := f.students.Count(context.Background()); count != 1 {
		t.Errorf("student count = %d, want 1", count)
	}
}

func TestApproveEmailFailureIsNotFatal(t *testing.T) {
	f := newFixture(pendingApplication(1))
	f.notifier.fail = "connection refused"

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if result.EmailSent {
		t.Error("EmailSent = true, want false")
	}
	if result.EmailError != "connection refused" {
		t.Errorf("EmailError = %q", result.EmailError)
	}

	// The account must exist regardless; resend covers the lost email.
	account, _ := f.accounts.FindByEmail(context.Background(), "asha.verma@example.com")
	if account == nil {
		t.Fatal("account missing after failed email")
	}
	if result.Application.Status != model.ApplicationApproved {
		t.Error("approval rolled back on email failure")
	}
}

func TestApproveAssignsSequentialNumbers(t *testing.T) {
	first := pendingApplication(1)
	second := pendingApplication(2)
	second.Email = "rohan.mehta@example.com"
	second.Name = "Rohan Mehta"
	f := newFixture(first, second)

	r1, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve 1 failed: %v", err)
	}
	r2, err := f.svc.Approve(context.Background(), 2, 9, nil)
	if err != nil {
		t.Fatalf("Approve 2 failed: %v", err)
	}
	if r1.Student.StudentNumber != "STU00001" || r2.Student.StudentNumber != "STU00002" {
		t.Errorf("numbers = %q, %q; want STU00001, STU00002", r1.Student.StudentNumber, r2.Student.StudentNumber)
	}
}

func TestApproveRetriesTakenStudentNumber(t *testing.T) {
	f := newFixture(pendingApplication(1))
	// Another process grabbed the next number already.
	f.students.takenNumbers["STU00001"] = true

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if result.Student.StudentNumber != "STU00002" {
		t.Errorf("student number = %q, want STU00002 after retry", result.Student.StudentNumber)
	}
}

func TestApproveRotatesExistingStudentAccount(t *testing.T) {
	// A stale student account already holds the applicant's email. Approval
	// rotates its credentials and repairs the profile links.
	app := pendingApplication(1)
	f := newFixture(app)

	stale := &model.Account{
		Email:              app.Email,
		Name:               app.Name,
		Role:               model.RoleStudent,
		IsApproved:         false,
		MustChangePassword: false,
	}
	if err := f.accounts.Create(context.Background(), stale, "old-password"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	account, _ := f.accounts.FindByEmail(context.Background(), app.Email)
	if !account.IsApproved || !account.MustChangePassword {
		t.Error("stale account not repaired")
	}
	if account.StudentID == nil || *account.StudentID != result.Student.ID {
		t.Error("stale account not relinked to the new student profile")
	}
	if f.accounts.passwords[app.Email] == "old-password" {
		t.Error("password was not rotated")
	}
	if !result.EmailSent {
		t.Error("credentials email not sent on rotation")
	}
}

func TestApproveLeavesStaffAccountAlone(t *testing.T) {
	app := pendingApplication(1)
	f := newFixture(app)

	staff := &model.Account{
		Email: app.Email,
		Name:  app.Name,
		Role:  model.RoleFaculty,
	}
	if err := f.accounts.Create(context.Background(), staff, "faculty-password"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	result, err := f.svc.Approve(context.Background(), 1, 9, nil)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if f.accounts.passwords[app.Email] != "faculty-password" {
		t.Error("staff credentials were touched")
	}
	if result.EmailSent {
		t.Error("no email should go out for a staff-owned address")
	}
	if !strings.Contains(result.Notes, "faculty") {
		t.Errorf("Notes = %q, want mention of the existing role", result.Notes)
	}
	account, _ := f.accounts.FindByEmail(context.Background(), app.Email)
	if !account.IsApproved {
		t.Error("staff account should still be marked approved")
	}
}

func TestConcurrentApprovalsCreateOneAccount(t *testing.T) {
	f := newFixture(pendingApplication(1))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), 1, 9, nil)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAccountExists):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("%d approvals succeeded, want exactly 1", succeeded)
	}
	if count, _ := f.students.Count(context.Background()); count != 1 {
		t.Errorf("student count = %d, want 1", count)
	}
	if len(f.notifier.sent) != 1 {
		t.Errorf("%d emails sent, want 1", len(f.notifier.sent))
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newFixture(pendingApplication(1))

	for _, reason := range []string{"", "   ", "\t\n"} {
		if _, err := f.svc.Reject(context.Background(), 1, 9, reason); !errors.Is(err, ErrReasonRequired) {
			t.Errorf("Reject(%q): err = %v, want ErrReasonRequired", reason, err)
		}
	}
}

func TestRejectPendingApplication(t *testing.T) {
	f := newFixture(pendingApplication(1))

	app, err := f.svc.Reject(context.Background(), 1, 9, "incomplete transcripts")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if app.Status != model.ApplicationRejected {
		t.Errorf("status = %q, want rejected", app.Status)
	}
	if app.RejectionReason != "incomplete transcripts" {
		t.Errorf("reason = %q", app.RejectionReason)
	}
	if app.ReviewerID == nil || *app.ReviewerID != 9 {
		t.Error("reviewer not recorded")
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].kind != "rejection" {
		t.Fatalf("unexpected notifications: %+v", f.notifier.sent)
	}
}

func TestRejectAfterReviewConflicts(t *testing.T) {
	f := newFixture(pendingApplication(1))

	if _, err := f.svc.Approve(context.Background(), 1, 9, nil); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	_, err := f.svc.Reject(context.Background(), 1, 9, "changed our minds")
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}
}

func TestRejectWaitsForProvisioningLock(t *testing.T) {
	f := newFixture(pendingApplication(1))

	// Simulate an approval in flight for the same applicant.
	release, err := f.locker.Lock(context.Background(), "provision:asha.verma@example.com")
	if err != nil {
		t.Fatalf("Lock failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := f.svc.Reject(ctx, 1, 9, "incomplete transcripts"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Reject while lock held: err = %v, want context.DeadlineExceeded", err)
	}

	got, _ := f.apps.FindByID(context.Background(), 1)
	if got.Status != model.ApplicationPending {
		t.Fatalf("status = %q, want pending while the lock is held", got.Status)
	}

	release()
	app, err := f.svc.Reject(context.Background(), 1, 9, "incomplete transcripts")
	if err != nil {
		t.Fatalf("Reject after release failed: %v", err)
	}
	if app.Status != model.ApplicationRejected {
		t.Errorf("status = %q, want rejected", app.Status)
	}
}

func TestRejectEmailFailureDoesNotRevert(t *testing.T) {
	f := newFixture(pendingApplication(1))
	f.notifier.fail = "relay down"

	app, err := f.svc.Reject(context.Background(), 1, 9, "incomplete transcripts")
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if app.Status != model.ApplicationRejected {
		t.Error("rejection reverted on email failure")
	}
}

func TestResendCredentialsRotatesPassword(t *testing.T) {
	f := newFixture(pendingApplication(1))

	if _, err := f.svc.Approve(context.Background(), 1, 9, nil); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	before := f.accounts.passwords["asha.verma@example.com"]

	result, err := f.svc.ResendCredentials(context.Background(), 1)
	if err != nil {
		t.Fatalf("ResendCredentials failed: %v", err)
	}
	if result.TempPassword == "" {
		t.Fatal("resend must return the new temporary password")
	}
	if result.TempPassword == before {
		t.Error("password was not rotated")
	}
	if f.accounts.passwords["asha.verma@example.com"] != result.TempPassword {
		t.Error("returned password differs from the stored one")
	}
	if !result.EmailSent {
		t.Errorf("email not sent: %s", result.EmailError)
	}
}

func TestResendCredentialsRequiresApproval(t *testing.T) {
	f := newFixture(pendingApplication(1))

	_, err := f.svc.ResendCredentials(context.Background(), 1)
	if !errors.Is(err, ErrNotApproved) {
		t.Fatalf("err = %v, want ErrNotApproved", err)
	}
}

func TestResendCredentialsMissingRecords(t *testing.T) {
	app := pendingApplication(1)
	app.Status = model.ApplicationApproved
	f := newFixture(app)

	_, err := f.svc.ResendCredentials(context.Background(), 1)
	if !errors.Is(err, ErrStudentMissing) {
		t.Fatalf("err = %v, want ErrStudentMissing", err)
	}

	student := &model.Student{StudentNumber: "STU00001", Email: app.Email, Name: app.Name, Department: app.Department, Program: app.Program}
	if err := f.students.Create(context.Background(), student); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	_, err = f.svc.ResendCredentials(context.Background(), 1)
	if !errors.Is(err, ErrAccountMissing) {
		t.Fatalf("err = %v, want ErrAccountMissing", err)
	}
}

func TestFormatStudentNumber(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{1, "STU00001"},
		{42, "STU00042"},
		{99999, "STU99999"},
		{123456, "STU123456"},
	}
	for _, tc := range cases {
		if got := FormatStudentNumber(tc.n); got != tc.want {
			t.Errorf("FormatStudentNumber(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
