package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// StoreFuncs adapts a pair of functions to the Store interface.
type StoreFuncs struct {
	ByMPN    func(ctx context.Context, mpn string) ([]models.FailureMode, error)
	ByFamily func(ctx context.Context, family string, limit int) ([]models.FailureMode, error)
}

// FailureModesByMPN implements Store.
func (f StoreFuncs) FailureModesByMPN(ctx context.Context, mpn string) ([]models.FailureMode, error) {
	if f.ByMPN == nil {
		return nil, nil
	}
	return f.ByMPN(ctx, mpn)
}

// FailureModesByFamily implements Store.
func (f StoreFuncs) FailureModesByFamily(ctx context.Context, family string, limit int) ([]models.FailureMode, error) {
	if f.ByFamily == nil {
		return nil, nil
	}
	return f.ByFamily(ctx, family, limit)
}

// MemoryStore is an in-process catalog kept in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	modes []models.FailureMode
}

// NewMemoryStore returns a catalog holding a copy of modes.
func NewMemoryStore(modes ...models.FailureMode) *MemoryStore {
	s := &MemoryStore{}
	s.Add(modes...)
	return s
}

// Add appends modes to the catalog.
func (s *MemoryStore) Add(modes ...models.FailureMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = append(s.modes, modes...)
}

// FailureModesByMPN implements Store. Part numbers match exactly.
func (s *MemoryStore) FailureModesByMPN(ctx context.Context, mpn string) ([]models.FailureMode, error) {
	return s.filter(0, func(m models.FailureMode) bool { return m.MPN != "" && m.MPN == mpn }), nil
}

// FailureModesByFamily implements Store. Families match case-insensitively.
func (s *MemoryStore) FailureModesByFamily(ctx context.Context, family string, limit int) ([]models.FailureMode, error) {
	return s.filter(limit, func(m models.FailureMode) bool {
		if m.Family == "" {
			return false
		}
		return family == "" || strings.EqualFold(m.Family, family)
	}), nil
}

func (s *MemoryStore) filter(limit int, keep func(models.FailureMode) bool) []models.FailureMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.FailureMode, 0)
	for _, m := range s.modes {
		if !keep(m) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
