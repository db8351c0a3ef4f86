package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestNotFoundUnwraps(t *testing.T) {
	id := uuid.MustParse("0b8c3f7e-25a4-4c55-9b59-6c1d3c8b1f10")
	err := fmt.Errorf("load component: %w", NotFound("repo.GetComponent", "component", id))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain")
	}
	if got := Message(err); got != "component "+id.String() {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestMessageFallsBack(t *testing.T) {
	if got := Message(errors.New("boom")); got != "boom" {
		t.Fatalf("unexpected message %q", got)
	}
	err := InvalidRequest("services.CalculateFIT", "standard is required")
	if !errors.Is(err, ErrInvalidRequest) || Message(err) != "standard is required" {
		t.Fatalf("unexpected invalid request error %v", err)
	}
}
