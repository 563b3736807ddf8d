package auth

import (
	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/middleware"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the authenticated account with its linked student or
// faculty profile.
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	account, ok := middleware.GetAccount(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	res := fiber.Map{
		"account": toAccountResponse(account),
	}

	if account.StudentID != nil {
		var student model.Student
		if err := h.db.Preload("Subjects").First(&student, *account.StudentID).Error; err == nil {
			res["student"] = student
		}
	}

	if account.FacultyID != nil {
		var faculty model.Faculty
		if err := h.db.Preload("Subjects").First(&faculty, *account.FacultyID).Error; err == nil {
			res["faculty"] = faculty
		}
	}

	return response.Success(c, res)
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"omitempty,min=2"`
}

// UpdateProfile updates the mutable account fields
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	account, ok := middleware.GetAccount(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Nothing to update")
	}

	if err := h.db.Model(account).Update("name", req.Name).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.SuccessWithMessage(c, "Profile updated", toAccountResponse(account))
}
