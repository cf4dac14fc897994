// middleware/auth.go
package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// WhopContextMiddleware extracts the Whop identity headers set by the
// Gateway after it verifies the app session. Public tracking routes
// (click, validate) stay open; everything else requires a user.
func WhopContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		whopUserID := c.Get("X-Whop-User-Id")
		whopCompanyID := c.Get("X-Whop-Company-Id")
		accessLevel := c.Get("X-Whop-Access-Level")

		path := c.Path()
		isPublic := strings.HasPrefix(path, "/referrals/track") || strings.HasPrefix(path, "/referrals/validate")
		if !isPublic && whopUserID == "" {
			log.Printf("❌ [WHOP_CTX] X-Whop-User-Id required but missing on secured route: %s", path)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing X-Whop-User-Id — request must come through gateway with auth context",
			})
		}

		// Attach to ctx for handlers
		c.Locals("whop_user_id", whopUserID)
		c.Locals("whop_company_id", whopCompanyID)
		c.Locals("whop_access_level", accessLevel)

		return c.Next()
	}
}

// RequireAdmin guards creator dashboard routes. The Gateway marks company
// owners and moderators with access level "admin".
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		level, _ := c.Locals("whop_access_level").(string)
		if level != "admin" {
			log.Printf("🚫 [WHOP_CTX] Non-admin access attempt on %s", c.Path())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}
