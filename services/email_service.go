package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// EmailService sends admission and account emails via SMTP. It implements
// CredentialNotifier: delivery failures come back in a DeliveryResult so a
// dead relay never fails the decision that triggered the email.
type EmailService struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	appURL      string
	institution string
	sendTimeout time.Duration
}

// NewEmailService creates a new email service instance from the environment
func NewEmailService() *EmailService {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &EmailService{
		host:        getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:        port,
		username:    os.Getenv("SMTP_USERNAME"),
		password:    os.Getenv("SMTP_PASSWORD"),
		from:        getEnvOrDefault("SMTP_FROM", "noreply@umsystem.edu"),
		appURL:      getEnvOrDefault("APP_URL", "http://localhost:3000"),
		institution: getEnvOrDefault("INSTITUTION_NAME", "University Management System"),
		sendTimeout: 10 * time.Second,
	}
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.username != "" && e.password != ""
}

// SendApproval mails the login credentials to a newly provisioned student.
func (e *EmailService) SendApproval(ctx context.Context, email, name, studentNumber, tempPassword string) DeliveryResult {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured; credentials for %s (student %s) not emailed", email, studentNumber)
		return DeliveryResult{Error: "SMTP not configured"}
	}

	subject := fmt.Sprintf("Your admission to %s has been approved", e.institution)
	body := e.buildApprovalBody(name, studentNumber, email, tempPassword)
	return e.deliver(ctx, email, subject, body)
}

// SendRejection mails the rejection notice with the reviewer's reason.
func (e *EmailService) SendRejection(ctx context.Context, email, name, reason string) DeliveryResult {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured; rejection notice for %s not emailed", email)
		return DeliveryResult{Error: "SMTP not configured"}
	}

	subject := fmt.Sprintf("Update on your application to %s", e.institution)
	body := e.buildRejectionBody(name, reason)
	return e.deliver(ctx, email, subject, body)
}

// SendFacultyWelcome mails login credentials to a newly created faculty
// account.
func (e *EmailService) SendFacultyWelcome(ctx context.Context, email, name, tempPassword string) DeliveryResult {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured; faculty credentials for %s not emailed", email)
		return DeliveryResult{Error: "SMTP not configured"}
	}

	subject := fmt.Sprintf("Your faculty account at %s", e.institution)
	body := e.buildFacultyWelcomeBody(name, email, tempPassword)
	return e.deliver(ctx, email, subject, body)
}

// SendPasswordResetEmail sends a password reset link. Unlike the admission
// notifications this is the whole point of the request, so it returns an
// error the handler can surface.
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken, userName string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Reset token for %s: %s", toEmail, resetToken)
		return fmt.Errorf("SMTP not configured")
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", e.appURL, resetToken)
	subject := fmt.Sprintf("Reset your password - %s", e.institution)
	body := e.buildPasswordResetBody(userName, resetLink)

	if result := e.deliver(ctx, toEmail, subject, body); !result.Sent {
		return fmt.Errorf("send reset email: %s", result.Error)
	}
	return nil
}

// deliver runs the SMTP exchange with a bounded timeout and folds the
// outcome into a DeliveryResult.
func (e *EmailService) deliver(ctx context.Context, to, subject, body string) DeliveryResult {
	errCh := make(chan error, 1)
	go func() {
		errCh <- e.sendEmail(to, subject, body)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("email to %s failed: %v", to, err)
			return DeliveryResult{Error: err.Error()}
		}
		return DeliveryResult{Sent: true}
	case <-ctx.Done():
		return DeliveryResult{Error: ctx.Err().Error()}
	case <-time.After(e.sendTimeout):
		return DeliveryResult{Error: "SMTP send timed out"}
	}
}

func (e *EmailService) buildApprovalBody(name, studentNumber, email, tempPassword string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1a3c6e;">Congratulations, %s!</h2>
    <p>Your admission application to %s has been approved. A student account has been created for you.</p>
    <table style="border-collapse: collapse; margin: 20px 0;">
        <tr><td style="padding: 6px 16px 6px 0;"><strong>Student ID</strong></td><td>%s</td></tr>
        <tr><td style="padding: 6px 16px 6px 0;"><strong>Login email</strong></td><td>%s</td></tr>
        <tr><td style="padding: 6px 16px 6px 0;"><strong>Temporary password</strong></td><td><code>%s</code></td></tr>
    </table>
    <p>Sign in at <a href="%s">%s</a>. You will be asked to choose a new password on first login.</p>
    <p style="font-size: 12px; color: #666; margin-top: 30px;">If you did not apply, please contact the admissions office.</p>
</body>
</html>`, name, e.institution, studentNumber, email, tempPassword, e.appURL, e.appURL)
}

func (e *EmailService) buildRejectionBody(name, reason string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1a3c6e;">Dear %s,</h2>
    <p>Thank you for your application to %s. After careful review, we are unable to offer you admission at this time.</p>
    <p style="background-color: #f5f5f5; padding: 12px; border-radius: 4px;"><strong>Reviewer's note:</strong> %s</p>
    <p>You are welcome to apply again in a future admission cycle.</p>
</body>
</html>`, name, e.institution, reason)
}

func (e *EmailService) buildFacultyWelcomeBody(name, email, tempPassword string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1a3c6e;">Welcome, %s!</h2>
    <p>A faculty account has been created for you at %s.</p>
    <table style="border-collapse: collapse; margin: 20px 0;">
        <tr><td style="padding: 6px 16px 6px 0;"><strong>Login email</strong></td><td>%s</td></tr>
        <tr><td style="padding: 6px 16px 6px 0;"><strong>Temporary password</strong></td><td><code>%s</code></td></tr>
    </table>
    <p>Sign in at <a href="%s">%s</a> and change your password on first login.</p>
</body>
</html>`, name, e.institution, email, tempPassword, e.appURL, e.appURL)
}

func (e *EmailService) buildPasswordResetBody(userName, resetLink string) string {
	if userName == "" {
		userName = "User"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #1a3c6e;">Reset your password</h2>
    <p>Hello %s,</p>
    <p>We received a request to reset the password for your %s account. Click the link below to choose a new password:</p>
    <p><a href="%s">%s</a></p>
    <p style="font-size: 13px; background-color: #fff3cd; border: 1px solid #ffc107; border-radius: 4px; padding: 12px;">
        This link expires in 1 hour. If you did not request a reset, you can safely ignore this email.
    </p>
</body>
</html>`, userName, e.institution, resetLink, resetLink)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", e.institution, e.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()
	return nil
}
