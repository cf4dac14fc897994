// handlers/reward_routes.go
package handlers

import (
	"referly-server/middleware"
	"referly-server/models"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRewardRoutes(app *fiber.App, rewardService *services.RewardService) {
	group := app.Group("/rewards", middleware.WhopContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		rewards, err := rewardService.ListRewards(whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, rewards)
	})

	group.Get("/eligibility", func(c *fiber.Ctx) error {
		eligibility, err := rewardService.CheckEligibility(whopUserID(c), whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, eligibility)
	})

	group.Post("/claim", func(c *fiber.Ctx) error {
		type Req struct {
			RewardID string `json:"reward_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil || req.RewardID == "" {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "reward_id is required")
		}

		result, err := rewardService.GrantReward(whopUserID(c), req.RewardID, whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, result)
	})

	// Admin reward management
	adminGroup := app.Group("/admin/rewards", middleware.WhopContextMiddleware(), middleware.RequireAdmin())

	adminGroup.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			Name        string            `json:"name"`
			Description *string           `json:"description"`
			Threshold   int               `json:"threshold"`
			RewardType  models.RewardType `json:"reward_type"`
			RewardData  models.RewardData `json:"reward_data"`
			AutoApply   bool              `json:"auto_apply"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body")
		}

		reward, err := rewardService.CreateReward(whopCompanyID(c), services.CreateRewardInput{
			Name:        req.Name,
			Description: req.Description,
			Threshold:   req.Threshold,
			RewardType:  req.RewardType,
			RewardData:  req.RewardData,
			AutoApply:   req.AutoApply,
		})
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, reward)
	})

	adminGroup.Delete("/:id", func(c *fiber.Ctx) error {
		if err := rewardService.DeactivateReward(whopCompanyID(c), c.Params("id")); err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{"deactivated": true})
	})
}
