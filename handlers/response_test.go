// handlers/response_test.go
package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"referly-server/services"

	"github.com/gofiber/fiber/v2"
)

func errorStatusAndCode(t *testing.T, err error) (int, string) {
	t.Helper()

	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return failFromError(c, err)
	})

	resp, testErr := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if testErr != nil {
		t.Fatalf("request failed: %v", testErr)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil {
		t.Fatalf("failed to decode body: %v", decodeErr)
	}
	if body.Success {
		t.Fatalf("error envelope must carry success=false")
	}
	return resp.StatusCode, body.Error.Code
}

func TestFailFromErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{services.ErrValidation, fiber.StatusBadRequest, "VALIDATION_ERROR"},
		{services.ErrInvalidCode, fiber.StatusNotFound, "INVALID_CODE"},
		{services.ErrDuplicateReferral, fiber.StatusConflict, "DUPLICATE_REFERRAL"},
		{services.ErrAlreadyRedeemed, fiber.StatusConflict, "ALREADY_REDEEMED"},
		{services.ErrCodeGenerationExhausted, fiber.StatusInternalServerError, "CODE_GENERATION_FAILED"},
		{services.ErrGrantFailed, fiber.StatusInternalServerError, "GRANT_FAILED"},
	}

	for _, tc := range cases {
		status, code := errorStatusAndCode(t, tc.err)
		if status != tc.wantStatus || code != tc.wantCode {
			t.Fatalf("%v: got %d/%s, want %d/%s", tc.err, status, code, tc.wantStatus, tc.wantCode)
		}
	}
}
