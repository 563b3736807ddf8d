package admin

import (
	"strconv"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ListAccounts lists login accounts with filters
// GET /admin/accounts
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	query := h.db.Model(&model.Account{})

	if role := c.Query("role"); role != "" {
		if !model.ValidRole(role) {
			return response.BadRequest(c, "role must be one of admin, faculty, student")
		}
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	pagination := response.CalculatePagination(page, limit, total)

	var accounts []model.Account
	offset := (pagination.CurrentPage - 1) * pagination.PerPage
	if err := query.Offset(offset).Limit(pagination.PerPage).
		Order("created_at DESC").
		Find(&accounts).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch accounts")
	}

	return response.Paginated(c, accounts, pagination)
}

// SetAccountApproval enables or disables login for an account
// PUT /admin/accounts/:id/approval
func (h *AdminHandler) SetAccountApproval(c *fiber.Ctx) error {
	accountID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	if uint(accountID) == adminID {
		return response.BadRequest(c, "You cannot change your own approval")
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var account model.Account
	if err := h.db.First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to load account")
	}

	old := account

	updates := map[string]interface{}{"is_approved": req.Approved}
	if !req.Approved {
		// Revoking approval also invalidates every live session.
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	if err := h.db.Model(&account).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to update account")
	}

	action := "account_approve"
	if !req.Approved {
		action = "account_suspend"
	}
	h.audit.Record(c, adminID, action, "accounts", account.ID, old, account, "Changed account approval")

	return response.SuccessWithMessage(c, "Account updated", account)
}

// ResetAccountPassword sets a fresh temporary password on an account and
// forces a change at next login. The plaintext is returned once in the
// response; it is never emailed from here
// POST /admin/accounts/:id/reset-password
func (h *AdminHandler) ResetAccountPassword(c *fiber.Ctx) error {
	accountID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid account ID")
	}

	adminID, ok := middleware.GetAccountID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var account model.Account
	if err := h.db.First(&account, accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Account not found")
		}
		return response.InternalServerError(c, "Failed to load account")
	}

	tempPassword, err := auth.GenerateTempPassword()
	if err != nil {
		return response.InternalServerError(c, "Failed to generate password")
	}
	passwordHash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	updates := map[string]interface{}{
		"password_hash":        passwordHash,
		"must_change_password": true,
		"token_version":        gorm.Expr("token_version + 1"),
	}
	if err := h.db.Model(&account).Updates(updates).Error; err != nil {
		return response.InternalServerError(c, "Failed to reset password")
	}

	h.audit.Record(c, adminID, "account_password_reset", "accounts", account.ID, nil, nil, "Reset account password")

	return response.SuccessWithMessage(c, "Password reset", fiber.Map{
		"account_id":    account.ID,
		"temp_password": tempPassword,
	})
}
