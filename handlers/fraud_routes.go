// handlers/fraud_routes.go
package handlers

import (
	"referly-server/middleware"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupFraudRoutes(app *fiber.App, fraudService *services.FraudService) {
	group := app.Group("/admin/fraud", middleware.WhopContextMiddleware(), middleware.RequireAdmin())

	group.Get("/flagged", func(c *fiber.Ctx) error {
		flagged, err := fraudService.ListFlagged(whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, flagged)
	})

	// Dry-run evaluation for the review tooling. Nothing is persisted; the
	// weighted risk score is reported alongside the accumulated one.
	group.Post("/check", func(c *fiber.Ctx) error {
		type Req struct {
			ReferrerID string `json:"referrer_id"`
			ReferredID string `json:"referred_id"`
			IPAddress  string `json:"ip_address"`
			UserAgent  string `json:"user_agent"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		result := services.PerformFraudCheck(services.FraudCheckInput{
			IPAddress:  req.IPAddress,
			UserAgent:  req.UserAgent,
			ReferrerID: req.ReferrerID,
			ReferredID: req.ReferredID,
		}, services.DefaultFraudCheckOptions)

		return ok(c, fiber.Map{
			"flagged":     result.Flagged,
			"fraud_score": result.FraudScore,
			"risk_score":  services.CalculateRiskScore(result.Checks),
			"checks":      result.Checks,
		})
	})
}
