// handlers/dashboard_routes.go
package handlers

import (
	"strconv"

	"referly-server/middleware"
	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func SetupDashboardRoutes(app *fiber.App, dashboardService *services.DashboardService) {
	group := app.Group("/dashboard", middleware.WhopContextMiddleware(), middleware.RequireAdmin())

	group.Get("/overview", func(c *fiber.Ctx) error {
		overview, err := dashboardService.GetOverview(whopCompanyID(c), c.Query("window", "all"))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, overview)
	})

	group.Get("/referrers", func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

		list, err := dashboardService.GetReferrerList(whopCompanyID(c), c.Query("window", "all"), services.ReferrerListParams{
			Search:    c.Query("search"),
			SortBy:    c.Query("sort_by", "referrals"),
			Ascending: c.Query("order") == "asc",
			Page:      page,
			PageSize:  pageSize,
		})
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, list)
	})

	group.Get("/chart", func(c *fiber.Ctx) error {
		points, err := dashboardService.GetChartData(whopCompanyID(c))
		if err != nil {
			return failFromError(c, err)
		}
		return ok(c, points)
	})

	group.Get("/export", func(c *fiber.Ctx) error {
		export, err := dashboardService.ExportReferrers(whopCompanyID(c), c.Query("window", "all"), c.Query("format", "csv"))
		if err != nil {
			return failFromError(c, err)
		}
		c.Set("Content-Type", export.ContentType)
		c.Set("Content-Disposition", "attachment; filename="+export.Filename)
		return c.Send(export.Data)
	})
}
