package middleware

import (
	"strings"

	"github.com/Codewithswappy/UMSystem-sub001/model"
	"github.com/Codewithswappy/UMSystem-sub001/utils/auth"
	"github.com/Codewithswappy/UMSystem-sub001/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

// authenticate validates the bearer token and loads the account. It returns
// a non-nil error response when the request must be rejected.
func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*auth.Claims, *model.Account, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil, response.Unauthorized(c, "Missing authorization token")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, nil, response.Unauthorized(c, "Invalid authorization format")
	}

	claims, err := m.jwtManager.ValidateToken(parts[1])
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, nil, response.Unauthorized(c, "Token has expired")
		}
		return nil, nil, response.Unauthorized(c, "Invalid token")
	}

	if claims.TokenType != "access" {
		return nil, nil, response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := m.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return nil, nil, response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return nil, nil, response.Unauthorized(c, "Token has been revoked")
	}

	var account model.Account
	if err := m.db.First(&account, claims.AccountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, response.Unauthorized(c, "Account not found")
		}
		return nil, nil, response.InternalServerError(c, "Failed to load account")
	}

	// Token version mismatch means a logout-everywhere or password change
	// happened after this token was issued.
	if account.TokenVersion != claims.TokenVersion {
		return nil, nil, response.Unauthorized(c, "Token has been invalidated")
	}

	if !account.IsApproved {
		return nil, nil, response.Forbidden(c, "Account is not approved")
	}

	return claims, &account, nil
}

func storeAccount(c *fiber.Ctx, claims *auth.Claims, account *model.Account) {
	c.Locals("account_id", claims.AccountID)
	c.Locals("account_email", claims.Email)
	c.Locals("account_role", claims.Role)
	c.Locals("claims", claims)
	c.Locals("account", account)
	c.Locals("token_jti", claims.ID)
}

// Required is middleware that requires a valid JWT token
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, account, errResp := m.authenticate(c)
		if errResp != nil {
			return errResp
		}
		storeAccount(c, claims, account)
		return c.Next()
	}
}

// Optional is middleware that allows requests with or without a token
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		claims, account, errResp := m.authenticate(c)
		if errResp != nil {
			// Anonymous access is still allowed; drop the bad token.
			return c.Next()
		}
		storeAccount(c, claims, account)
		return c.Next()
	}
}

// RequireRole is middleware that requires one of the given account roles.
// It must run after Required.
func (m *AuthMiddleware) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountRole := c.Locals("account_role")
		if accountRole == nil {
			return response.Forbidden(c, "Access denied")
		}

		role := accountRole.(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, "Insufficient permissions")
	}
}

// RequireAdmin authenticates inline and requires the admin role.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, account, errResp := m.authenticate(c)
		if errResp != nil {
			return errResp
		}
		if claims.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}
		storeAccount(c, claims, account)
		return c.Next()
	}
}

// RequirePasswordChanged blocks accounts still holding a temporary password
// from anything except the change-password endpoint. Must run after Required.
func (m *AuthMiddleware) RequirePasswordChanged() fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := GetAccount(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}
		if account.MustChangePassword {
			return response.Forbidden(c, "Password change required before accessing this resource")
		}
		return c.Next()
	}
}

// GetAccountID extracts the account ID from context
func GetAccountID(c *fiber.Ctx) (uint, bool) {
	accountID := c.Locals("account_id")
	if accountID == nil {
		return 0, false
	}
	id, ok := accountID.(uint)
	return id, ok
}

// GetAccountRole extracts the account role from context
func GetAccountRole(c *fiber.Ctx) (string, bool) {
	role := c.Locals("account_role")
	if role == nil {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}

// GetAccount extracts the full account from context
func GetAccount(c *fiber.Ctx) (*model.Account, bool) {
	account := c.Locals("account")
	if account == nil {
		return nil, false
	}
	a, ok := account.(*model.Account)
	return a, ok
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims := c.Locals("claims")
	if claims == nil {
		return nil, false
	}
	claimsData, ok := claims.(*auth.Claims)
	return claimsData, ok
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti := c.Locals("token_jti")
	if jti == nil {
		return "", false
	}
	j, ok := jti.(string)
	return j, ok
}
