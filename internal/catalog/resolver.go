package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// DefaultFamilyLimit caps family-tier matches for components without a family key.
const DefaultFamilyLimit = 10

// Store abstracts the failure-mode catalog.
type Store interface {
	FailureModesByMPN(ctx context.Context, mpn string) ([]models.FailureMode, error)
	// FailureModesByFamily returns modes tagged with family. An empty family matches any
	// family-tagged mode. A limit of zero or less means no limit.
	FailureModesByFamily(ctx context.Context, family string, limit int) ([]models.FailureMode, error)
}

// Resolver applies the two-tier lookup: exact part number first, then family.
type Resolver struct {
	store       Store
	familyLimit int
	logger      *slog.Logger
}

// NewResolver constructs a Resolver. familyLimit of zero or less uses DefaultFamilyLimit.
func NewResolver(logger *slog.Logger, store Store, familyLimit int) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if familyLimit <= 0 {
		familyLimit = DefaultFamilyLimit
	}
	return &Resolver{store: store, familyLimit: familyLimit, logger: logger}
}

// Resolve returns the failure modes that apply to c. No match yields an empty list.
func (r *Resolver) Resolve(ctx context.Context, c models.Component) ([]models.FailureMode, error) {
	if r.store == nil {
		return nil, fmt.Errorf("catalog store not configured")
	}
	if c.ManufacturerPartNumber != "" {
		modes, err := r.store.FailureModesByMPN(ctx, c.ManufacturerPartNumber)
		if err != nil {
			return nil, fmt.Errorf("failure modes by mpn %q: %w", c.ManufacturerPartNumber, err)
		}
		if len(modes) > 0 {
			return modes, nil
		}
	}

	limit := 0
	if c.Family == "" {
		limit = r.familyLimit
	}
	modes, err := r.store.FailureModesByFamily(ctx, c.Family, limit)
	if err != nil {
		return nil, fmt.Errorf("failure modes by family %q: %w", c.Family, err)
	}
	if len(modes) > 0 {
		r.logger.Debug("using family failure modes",
			slog.String("component_id", c.ID.String()),
			slog.String("mpn", c.ManufacturerPartNumber),
			slog.String("family", c.Family),
			slog.Int("modes", len(modes)))
	}
	if modes == nil {
		modes = []models.FailureMode{}
	}
	return modes, nil
}
