package services

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestGenerateCodeFormat(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		code := GenerateCode(r)
		if !codePattern.MatchString(code) {
			t.Fatalf("generated code %q does not match %s", code, codePattern)
		}
	}
}

func TestGenerateUniqueCodeRetriesOnCollision(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2))
	collisions := 0
	code, err := GenerateUniqueCode(r, func(string) (bool, error) {
		if collisions < 3 {
			collisions++
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("generated code %q does not match %s", code, codePattern)
	}
	if collisions != 3 {
		t.Fatalf("expected 3 collisions before success, got %d", collisions)
	}
}

func TestGenerateUniqueCodeExhaustion(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	attempts := 0
	_, err := GenerateUniqueCode(r, func(string) (bool, error) {
		attempts++
		return true, nil
	})
	if !errors.Is(err, ErrCodeGenerationExhausted) {
		t.Fatalf("expected ErrCodeGenerationExhausted, got %v", err)
	}
	if attempts != 10 {
		t.Fatalf("expected exactly 10 attempts, got %d", attempts)
	}
}

func TestGenerateUniqueCodePropagatesLookupError(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(4))
	boom := errors.New("store down")
	_, err := GenerateUniqueCode(r, func(string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error to propagate, got %v", err)
	}
}
