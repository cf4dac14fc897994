package services

import (
	"errors"
	"testing"
)

func TestIdentityLookupsRequireFullTenantIdentity(t *testing.T) {
	t.Parallel()

	// Both halves of the (whop_user_id, whop_company_id) identity are
	// required before any store access; the same member mirrored for
	// another company is a distinct row.
	svc := &IdentityService{}

	if _, err := svc.FindOrCreateUser("user_1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("FindOrCreateUser without company id: got %v, want ErrValidation", err)
	}
	if _, err := svc.FindOrCreateUser("", "biz_1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("FindOrCreateUser without user id: got %v, want ErrValidation", err)
	}
	if _, err := svc.GetUserByWhopID("user_1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("GetUserByWhopID without company id: got %v, want ErrValidation", err)
	}
	if _, err := svc.GetUserByWhopID("", "biz_1"); !errors.Is(err, ErrValidation) {
		t.Fatalf("GetUserByWhopID without user id: got %v, want ErrValidation", err)
	}
}
