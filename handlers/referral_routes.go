// handlers/referral_routes.go
package handlers

import (
	"fmt"
	"os"

	"referly-server/middleware"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupReferralRoutes(app *fiber.App, referralService *services.ReferralService) {
	group := app.Group("/referrals", middleware.WhopContextMiddleware())

	// Tracking routes are public: the share page hits them before the
	// visitor has any Whop session.
	group.Get("/validate/:code", func(c *fiber.Ctx) error {
		validation, err := referralService.ValidateCode(c.Params("code"))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, validation)
	})

	group.Post("/track/:code", func(c *fiber.Ctx) error {
		type Req struct {
			DeviceFingerprint *string `json:"device_fingerprint"`
			ReferrerURL       *string `json:"referrer_url"`
		}
		var req Req
		_ = c.BodyParser(&req) // body is optional on the tracking pixel

		err := referralService.RecordClick(c.Params("code"), services.ClickMetadata{
			IPAddress:         c.IP(),
			UserAgent:         c.Get("User-Agent"),
			DeviceFingerprint: req.DeviceFingerprint,
			ReferrerURL:       req.ReferrerURL,
		})
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{"tracked": true})
	})

	group.Post("/code", func(c *fiber.Ctx) error {
		code, err := referralService.GetOrCreateCode(whopUserID(c), whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{
			"code":      code.Code,
			"share_url": shareURL(code.Code),
			"is_active": code.IsActive,
		})
	})

	group.Get("/code", func(c *fiber.Ctx) error {
		code, err := referralService.GetCode(whopUserID(c), whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{
			"code":        code.Code,
			"share_url":   shareURL(code.Code),
			"clicks":      code.Clicks,
			"conversions": code.Conversions,
			"is_active":   code.IsActive,
		})
	})

	group.Post("/convert", func(c *fiber.Ctx) error {
		type Req struct {
			Code              string  `json:"code"`
			CampaignID        *string `json:"campaign_id"`
			DeviceFingerprint *string `json:"device_fingerprint"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		result, err := referralService.AttributeConversion(services.ConversionInput{
			Code:               req.Code,
			ReferredWhopUserID: whopUserID(c),
			WhopCompanyID:      whopCompanyID(c),
			CampaignID:         req.CampaignID,
			IPAddress:          c.IP(),
			UserAgent:          c.Get("User-Agent"),
			DeviceFingerprint:  req.DeviceFingerprint,
		})
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, result)
	})

	group.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := referralService.GetStats(whopUserID(c), whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, stats)
	})
}

func shareURL(code string) string {
	base := os.Getenv("APP_BASE_URL")
	if base == "" {
		base = "https://referly.app"
	}
	return fmt.Sprintf("%s?ref=%s", base, code)
}
