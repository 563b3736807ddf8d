package auth

import (
	"time"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	authutil "github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword lets an authenticated account set a new password. This is
// also the endpoint that clears the must-change flag on provisioned
// accounts holding a temporary password.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	account, ok := middleware.GetAccount(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Current and new passwords are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	if err := authutil.VerifyPassword(account.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	newHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	// Bumping the token version invalidates every token issued before the
	// change, including the temporary-password session itself.
	updates := map[string]interface{}{
		"password_hash":        newHash,
		"must_change_password": false,
		"token_version":        gorm.Expr("token_version + 1"),
	}
	if err := h.db.Model(&model.Account{}).Where("id = ?", account.ID).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.SuccessWithMessage(c, "Password changed successfully. Please log in again.", nil)
}

// ForgotPasswordRequest represents a forgot password request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a reset token and emails the reset link. The
// response is identical whether or not the email exists.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	neutralMessage := "If the email is registered, a reset link has been sent"

	var account model.Account
	if err := h.db.Where("email = ?", req.Email).First(&account).Error; err != nil {
		return response.SuccessWithMessage(c, neutralMessage, nil)
	}

	resetToken := model.PasswordResetToken{
		AccountID: account.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}
	if err := h.db.Create(&resetToken).Error; err != nil {
		return response.InternalServerError(c, "Failed to create reset token")
	}

	if h.emailService != nil {
		// Delivery failure is deliberately not surfaced to the caller.
		_ = h.emailService.SendPasswordResetEmail(c.Context(), account.Email, resetToken.Token, account.Name)
	}

	return response.SuccessWithMessage(c, neutralMessage, nil)
}

// ResetPasswordRequest represents a password reset request
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword consumes a reset token and sets the new password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Token == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Token and new password are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	var resetToken model.PasswordResetToken
	if err := h.db.Where("token = ?", req.Token).First(&resetToken).Error; err != nil {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	if resetToken.IsExpired() || resetToken.IsUsed() {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	newHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	updates := map[string]interface{}{
		"password_hash":        newHash,
		"must_change_password": false,
		"token_version":        gorm.Expr("token_version + 1"),
	}
	if err := h.db.Model(&model.Account{}).Where("id = ?", resetToken.AccountID).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	resetToken.MarkAsUsed()
	if err := h.db.Save(&resetToken).Error; err != nil {
		return response.InternalServerError(c, "Failed to consume reset token")
	}

	return response.SuccessWithMessage(c, "Password reset successfully. Please log in.", nil)
}
