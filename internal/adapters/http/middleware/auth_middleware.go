package middleware

import (
	"errors"
	"log"
	"strings"

	"brga-members/internal/adapters/persistence/repositories"
	"brga-members/internal/config"
	"brga-members/internal/core/domain"
	"brga-members/internal/pkg/jwt"
	"brga-members/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AuthMiddleware validates the access token and stashes the claims in
// the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. Try to get token from cookie first
		accessToken := c.Cookies("access_token")

		// 2. If not in cookie, try Authorization header
		if accessToken == "" {
			authHeader := c.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				accessToken = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// 3. No token found
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// 4. Validate token
		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		// 5. Set user info in context
		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)

		return c.Next()
	}
}

// RequireMembership gates a route on the caller's live membership
// record: the role row is re-read on every request, so an approval or
// deletion takes effect without waiting for a token refresh. Any
// failure to load the record denies access.
//
// allowPending lets not-yet-approved members through, which only the
// self-service profile routes use. An empty role list means any role.
func RequireMembership(roleRepo repositories.MemberRoleRepository, allowPending bool, roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			decision := domain.Decide(false, nil, roles, allowPending)
			return deny(c, decision)
		}

		var membership *domain.Membership
		role, err := roleRepo.GetByUserID(c.Context(), userID)
		if err == nil {
			membership = &domain.Membership{
				UserID:         userID,
				Role:           domain.Role(role.Role),
				ApprovalStatus: domain.ApprovalStatus(role.ApprovalStatus),
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ Membership lookup failed for user %d: %v", userID, err)
		}

		decision := domain.Decide(true, membership, roles, allowPending)
		if !decision.Allow {
			return deny(c, decision)
		}

		c.Locals("membership", membership)
		return c.Next()
	}
}

// RequireAdmin gates a route to admins and superadmins
func RequireAdmin(roleRepo repositories.MemberRoleRepository) fiber.Handler {
	return RequireMembership(roleRepo, true, domain.RoleAdmin, domain.RoleSuperadmin)
}

// RequireSuperadmin gates a route to superadmins only
func RequireSuperadmin(roleRepo repositories.MemberRoleRepository) fiber.Handler {
	return RequireMembership(roleRepo, true, domain.RoleSuperadmin)
}

func deny(c *fiber.Ctx, decision domain.Decision) error {
	if decision.RedirectLogin {
		return response.Unauthorized(c, "Please log in")
	}
	switch decision.Reason {
	case domain.DenyPending:
		return response.Forbidden(c, "Your membership is awaiting approval")
	case domain.DenyRejected, domain.DenyDeleted:
		return response.Forbidden(c, "Your account no longer has access")
	default:
		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// Membership returns the membership stored by RequireMembership, or nil
// on routes that only ran AuthMiddleware.
func Membership(c *fiber.Ctx) *domain.Membership {
	m, _ := c.Locals("membership").(*domain.Membership)
	return m
}
