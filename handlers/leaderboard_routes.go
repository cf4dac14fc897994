// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"referly-server/middleware"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	group := app.Group("/leaderboard", middleware.WhopContextMiddleware())

	group.Get("/", func(c *fiber.Ctx) error {
		window := c.Query("window", "all")
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		entries, err := leaderboardService.GetGlobal(whopCompanyID(c), window, limit)
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{
			"window":  window,
			"entries": entries,
		})
	})

	group.Get("/campaign/:id", func(c *fiber.Ctx) error {
		window := c.Query("window", "all")
		limit, _ := strconv.Atoi(c.Query("limit", "50"))

		entries, err := leaderboardService.GetCampaign(whopCompanyID(c), c.Params("id"), window, limit)
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, fiber.Map{
			"window":  window,
			"entries": entries,
		})
	})
}
