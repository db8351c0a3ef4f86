package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

func TestResolverPrefersMPN(t *testing.T) {
	store := NewMemoryStore(
		models.FailureMode{MPN: "LM358", Mode: "output stuck", Lambda: 4},
		models.FailureMode{Family: "opamp", Mode: "drift", Lambda: 2},
	)
	resolver := NewResolver(nil, store, 0)

	modes, err := resolver.Resolve(context.Background(), models.Component{ManufacturerPartNumber: "LM358", Family: "opamp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modes) != 1 || modes[0].Mode != "output stuck" {
		t.Fatalf("expected exact part match, got %+v", modes)
	}
}

func TestResolverFallsBackToFamily(t *testing.T) {
	store := NewMemoryStore(
		models.FailureMode{Family: "OPAMP", Mode: "drift", Lambda: 2},
		models.FailureMode{Family: "mlcc", Mode: "short", Lambda: 1},
	)
	resolver := NewResolver(nil, store, 0)

	modes, err := resolver.Resolve(context.Background(), models.Component{ManufacturerPartNumber: "TL072", Family: "opamp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modes) != 1 || modes[0].Mode != "drift" {
		t.Fatalf("expected family match, got %+v", modes)
	}
}

func TestResolverUnkeyedFamilyLimit(t *testing.T) {
	store := NewMemoryStore()
	for i := 0; i < 15; i++ {
		store.Add(models.FailureMode{Family: fmt.Sprintf("f%d", i), Mode: "m", Lambda: 1})
	}
	store.Add(models.FailureMode{MPN: "other", Mode: "untagged", Lambda: 1})

	modes, err := NewResolver(nil, store, 0).Resolve(context.Background(), models.Component{ManufacturerPartNumber: "nomatch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(modes) != DefaultFamilyLimit {
		t.Fatalf("expected %d family-tagged modes, got %d", DefaultFamilyLimit, len(modes))
	}

	modes, _ = NewResolver(nil, store, 3).Resolve(context.Background(), models.Component{})
	if len(modes) != 3 {
		t.Fatalf("expected configured limit, got %d", len(modes))
	}
}

func TestResolverNoMatchIsEmpty(t *testing.T) {
	modes, err := NewResolver(nil, NewMemoryStore(), 0).Resolve(context.Background(), models.Component{ManufacturerPartNumber: "X", Family: "none"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modes == nil || len(modes) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", modes)
	}
}

func TestResolverPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("catalog offline")
	store := StoreFuncs{
		ByMPN: func(ctx context.Context, mpn string) ([]models.FailureMode, error) { return nil, boom },
	}
	if _, err := NewResolver(nil, store, 0).Resolve(context.Background(), models.Component{ManufacturerPartNumber: "X"}); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}

	calls := 0
	store = StoreFuncs{
		ByFamily: func(ctx context.Context, family string, limit int) ([]models.FailureMode, error) {
			calls++
			if family != "" || limit != DefaultFamilyLimit {
				t.Fatalf("unexpected family query %q limit %d", family, limit)
			}
			return nil, nil
		},
	}
	if _, err := NewResolver(nil, store, 0).Resolve(context.Background(), models.Component{}); err != nil || calls != 1 {
		t.Fatalf("expected a single family query, got calls=%d err=%v", calls, err)
	}
}
