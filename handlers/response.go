// handlers/response.go
package handlers

import (
	"errors"
	"log"

	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

// All routes answer with the same envelope: {success: true, data: ...} or
// {success: false, error: {code, message}}.

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// failFromError maps service sentinel errors onto the envelope's error
// taxonomy. Anything unrecognized is a DATABASE_ERROR; the detail stays in
// the server log, not the response.
func failFromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fail(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, services.ErrInvalidCode):
		return fail(c, fiber.StatusNotFound, "INVALID_CODE", err.Error())
	case errors.Is(err, services.ErrCodeNotFound):
		return fail(c, fiber.StatusNotFound, "CODE_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrDuplicateReferral):
		return fail(c, fiber.StatusConflict, "DUPLICATE_REFERRAL", err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrReferrerNotFound):
		return fail(c, fiber.StatusNotFound, "REFERRER_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrRewardNotFound):
		return fail(c, fiber.StatusNotFound, "REWARD_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrCampaignNotFound):
		return fail(c, fiber.StatusNotFound, "CAMPAIGN_NOT_FOUND", err.Error())
	case errors.Is(err, services.ErrAlreadyRedeemed):
		return fail(c, fiber.StatusConflict, "ALREADY_REDEEMED", err.Error())
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		return fail(c, fiber.StatusInternalServerError, "CODE_GENERATION_FAILED", err.Error())
	case errors.Is(err, services.ErrGrantFailed):
		return fail(c, fiber.StatusInternalServerError, "GRANT_FAILED", err.Error())
	default:
		log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
		return fail(c, fiber.StatusInternalServerError, "DATABASE_ERROR", "internal error")
	}
}

func whopUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("whop_user_id").(string)
	return id
}

func whopCompanyID(c *fiber.Ctx) string {
	id, _ := c.Locals("whop_company_id").(string)
	return id
}
