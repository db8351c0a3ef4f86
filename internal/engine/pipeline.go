package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/miradorstack/mirador-fmeda/internal/models"
)

// ComponentStore defines the component lookups used by the pipeline.
type ComponentStore interface {
	ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error)
	GetComponent(ctx context.Context, id uuid.UUID) (models.Component, error)
	GetVariant(ctx context.Context, id uuid.UUID) (models.ComponentVariant, error)
	GetMissionProfile(ctx context.Context, id uuid.UUID) (models.MissionProfile, error)
}

// ModeResolver finds the catalog failure modes that apply to a component.
type ModeResolver interface {
	Resolve(ctx context.Context, c models.Component) ([]models.FailureMode, error)
}

// CalculationStore persists calculation snapshots.
type CalculationStore interface {
	StoreCalculation(ctx context.Context, calc models.Calculation) error
}

// Pipeline orchestrates loading, failure-mode resolution and both estimation paths.
type Pipeline struct {
	logger      *slog.Logger
	store       ComponentStore
	modes       ModeResolver
	snapshots   CalculationStore
	estimator   *Estimator
	crossCheck  *CrossChecker
	concurrency int
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithSnapshots persists project calculations that ask for it.
func WithSnapshots(store CalculationStore) PipelineOption {
	return func(p *Pipeline) { p.snapshots = store }
}

// WithCrossChecker annotates standard estimates with their ratio to the catalog roll-up.
func WithCrossChecker(c *CrossChecker) PipelineOption {
	return func(p *Pipeline) { p.crossCheck = c }
}

// WithConcurrency bounds parallel failure-mode resolution. Values below 1 mean 1.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) {
		if n < 1 {
			n = 1
		}
		p.concurrency = n
	}
}

// NewPipeline constructs a calculation pipeline.
func NewPipeline(logger *slog.Logger, store ComponentStore, modes ModeResolver, estimator *Estimator, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		logger:      logger,
		store:       store,
		modes:       modes,
		estimator:   estimator,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Standards lists the standards the pipeline can rate against.
func (p *Pipeline) Standards() []string {
	return p.estimator.Registry().Standards()
}

// CalculateFIT rates one component under one standard. A missing variant is refused.
func (p *Pipeline) CalculateFIT(ctx context.Context, req models.FITRequest) (FITResult, error) {
	if p.store == nil {
		return FITResult{}, fmt.Errorf("component store not configured")
	}
	calc, err := p.estimator.Registry().Lookup(req.Standard)
	if err != nil {
		return FITResult{}, err
	}
	c, err := p.store.GetComponent(ctx, req.ComponentID)
	if err != nil {
		return FITResult{}, fmt.Errorf("load component: %w", err)
	}
	in, err := p.fitInput(ctx, c, req.MissionProfileID, nil)
	if err != nil {
		return FITResult{}, err
	}
	return p.estimator.Registry().CalculateFIT(calc.Standard(), in)
}

// CalculateComponent rolls up the catalog failure modes of one component.
func (p *Pipeline) CalculateComponent(ctx context.Context, id uuid.UUID) (models.ComponentFMEDAResult, error) {
	if p.store == nil || p.modes == nil {
		return models.ComponentFMEDAResult{}, fmt.Errorf("pipeline stores not configured")
	}
	c, err := p.store.GetComponent(ctx, id)
	if err != nil {
		return models.ComponentFMEDAResult{}, fmt.Errorf("load component: %w", err)
	}
	modes, err := p.modes.Resolve(ctx, c)
	if err != nil {
		return models.ComponentFMEDAResult{}, fmt.Errorf("resolve failure modes for %s: %w", c.ID, err)
	}
	return CalcComponentFMEDA(c, modes), nil
}

// CalculateProject runs the failure-mode roll-up over the requested components and,
// when a standard is named, the standard estimate of each component next to it.
func (p *Pipeline) CalculateProject(ctx context.Context, req models.ProjectCalculationRequest) (models.ProjectCalculation, error) {
	if p.store == nil || p.modes == nil {
		return models.ProjectCalculation{}, fmt.Errorf("pipeline stores not configured")
	}
	standard := ""
	if req.Standard != "" {
		calc, err := p.estimator.Registry().Lookup(req.Standard)
		if err != nil {
			return models.ProjectCalculation{}, err
		}
		standard = calc.Standard()
	}

	components, err := p.loadComponents(ctx, req)
	if err != nil {
		return models.ProjectCalculation{}, err
	}
	modes, err := p.resolveModes(ctx, components)
	if err != nil {
		return models.ProjectCalculation{}, err
	}

	out := models.ProjectCalculation{Result: CalcProjectFMEDA(components, modes)}
	p.logger.Debug("project roll-up complete",
		slog.String("project_id", req.ProjectID.String()),
		slog.Int("components", len(components)),
		slog.Float64("dangerous_fit", out.Result.Aggregate.TotalDangerousFIT))

	if standard != "" {
		out.StandardFITs = p.estimateAll(ctx, standard, components, req.MissionProfileID)
		if p.crossCheck != nil {
			p.crossCheck.Annotate(out.Result.Components, out.StandardFITs)
		}
	}

	if req.Persist && p.snapshots != nil {
		if id, err := p.persist(ctx, req, out); err != nil {
			p.logger.Warn("failed to persist calculation", slog.Any("error", err))
		} else {
			out.CalculationID = &id
		}
	}
	return out, nil
}

func (p *Pipeline) loadComponents(ctx context.Context, req models.ProjectCalculationRequest) ([]models.Component, error) {
	if len(req.ComponentIDs) == 0 {
		components, err := p.store.ListProjectComponents(ctx, req.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("list project components: %w", err)
		}
		return components, nil
	}
	components := make([]models.Component, 0, len(req.ComponentIDs))
	for _, id := range req.ComponentIDs {
		c, err := p.store.GetComponent(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load component %s: %w", id, err)
		}
		components = append(components, c)
	}
	return components, nil
}

func (p *Pipeline) resolveModes(ctx context.Context, components []models.Component) (map[uuid.UUID][]models.FailureMode, error) {
	resolved := make([][]models.FailureMode, len(components))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i := range components {
		g.Go(func() error {
			modes, err := p.modes.Resolve(gctx, components[i])
			if err != nil {
				return fmt.Errorf("resolve failure modes for %s: %w", components[i].ID, err)
			}
			resolved[i] = modes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]models.FailureMode, len(components))
	for i, c := range components {
		out[c.ID] = resolved[i]
	}
	return out, nil
}

func (p *Pipeline) estimateAll(ctx context.Context, standard string, components []models.Component, profileID *uuid.UUID) []models.ComponentFIT {
	profiles := make(map[uuid.UUID]*models.MissionProfile)
	out := make([]models.ComponentFIT, 0, len(components))
	for _, c := range components {
		in, err := p.fitInput(ctx, c, profileID, profiles)
		if err != nil {
			out = append(out, models.ComponentFIT{ComponentID: c.ID, Standard: standard, Error: err.Error()})
			continue
		}
		out = append(out, p.estimator.Estimate(standard, in))
	}
	return out
}

// fitInput loads the variant and profile for c. An explicit profileID overrides the
// component's own profile. profiles memoises loaded profiles when non-nil.
func (p *Pipeline) fitInput(ctx context.Context, c models.Component, profileID *uuid.UUID, profiles map[uuid.UUID]*models.MissionProfile) (FITInput, error) {
	in := FITInput{Component: c}
	if c.VariantID != nil {
		v, err := p.store.GetVariant(ctx, *c.VariantID)
		if err != nil {
			return in, fmt.Errorf("load variant %s: %w", *c.VariantID, err)
		}
		in.Variant = &v
	}

	id := c.MissionProfileID
	if profileID != nil {
		id = profileID
	}
	if id == nil {
		return in, nil
	}
	if cached, ok := profiles[*id]; ok {
		in.Profile = cached
		return in, nil
	}
	profile, err := p.store.GetMissionProfile(ctx, *id)
	if err != nil {
		return in, fmt.Errorf("load mission profile %s: %w", *id, err)
	}
	in.Profile = &profile
	if profiles != nil {
		profiles[*id] = &profile
	}
	return in, nil
}

func (p *Pipeline) persist(ctx context.Context, req models.ProjectCalculationRequest, out models.ProjectCalculation) (uuid.UUID, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, err
	}
	result, err := json.Marshal(out)
	if err != nil {
		return uuid.Nil, err
	}
	calc := models.Calculation{
		ID:        uuid.New(),
		ProjectID: req.ProjectID,
		Payload:   payload,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
	if err := p.snapshots.StoreCalculation(ctx, calc); err != nil {
		return uuid.Nil, err
	}
	return calc.ID, nil
}

// IsStructural reports whether err is a per-request failure that no fallback can recover.
func IsStructural(err error) bool {
	return errors.Is(err, ErrUnknownStandard) ||
		errors.Is(err, ErrInvalidTemperature) ||
		errors.Is(err, ErrInvalidProfile) ||
		errors.Is(err, ErrMissingVariant)
}
