// handlers/campaign_routes.go
package handlers

import (
	"time"

	"referly-server/middleware"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

func SetupCampaignRoutes(app *fiber.App, campaignService *services.CampaignService) {
	group := app.Group("/campaigns", middleware.WhopContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		campaigns, err := campaignService.ListCampaigns(whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, campaigns)
	})

	group.Get("/:id", func(c *fiber.Ctx) error {
		campaign, err := campaignService.GetCampaign(whopCompanyID(c), c.Params("id"))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, campaign)
	})

	// Admin campaign management
	adminGroup := app.Group("/admin/campaigns", middleware.WhopContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			Name            string         `json:"name"`
			Description     *string        `json:"description"`
			StartDate       time.Time      `json:"start_date"`
			EndDate         time.Time      `json:"end_date"`
			PointMultiplier float64        `json:"point_multiplier"`
			PrizePool       *string        `json:"prize_pool"`
			Rules           datatypes.JSON `json:"rules"`
			Prizes          datatypes.JSON `json:"prizes"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		campaign, err := campaignService.CreateCampaign(whopCompanyID(c), services.CreateCampaignInput{
			Name:            req.Name,
			Description:     req.Description,
			StartDate:       req.StartDate,
			EndDate:         req.EndDate,
			PointMultiplier: req.PointMultiplier,
			PrizePool:       req.PrizePool,
			Rules:           req.Rules,
			Prizes:          req.Prizes,
		})
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, campaign)
	})

	adminGroup.Patch("/:id/active", func(c *fiber.Ctx) error {
		type Req struct {
			Active bool `json:"active"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		if err := campaignService.SetCampaignActive(whopCompanyID(c), c.Params("id"), req.Active); err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{"active": req.Active})
	})
}
