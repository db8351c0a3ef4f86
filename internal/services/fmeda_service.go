package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/cache"
	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/metrics"
	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// CatalogWriter records new failure-mode catalog entries.
type CatalogWriter interface {
	CreateFailureMode(ctx context.Context, mode models.FailureMode) (models.FailureMode, error)
}

// CalculationHistory lists persisted calculation snapshots.
type CalculationHistory interface {
	ListCalculations(ctx context.Context, projectID uuid.UUID, limit int) ([]models.Calculation, error)
}

// Options tunes an FMEDAService.
type Options struct {
	DefaultStandard string
	ResultTTL       time.Duration
	MaxComponents   int
}

// FMEDAService is the transport-neutral facade shared by the gRPC and HTTP surfaces.
type FMEDAService struct {
	logger     *slog.Logger
	pipeline   *engine.Pipeline
	components engine.ComponentStore
	catalog    CatalogWriter
	history    CalculationHistory
	results    cache.Provider
	opts       Options
	latencies  *utils.LatencyTracker
}

// catalogGenerationKey holds a token rotated on every catalog write. Project result keys
// embed it, so results computed against an older catalog are never served again.
var catalogGenerationKey = cache.Key("catalog", "generation")

// NewFMEDAService constructs the service facade. A nil cache provider disables result caching.
func NewFMEDAService(logger *slog.Logger, pipeline *engine.Pipeline, components engine.ComponentStore, catalog CatalogWriter, results cache.Provider, opts Options) *FMEDAService {
	if logger == nil {
		logger = slog.Default()
	}
	if results == nil {
		results = cache.NoopProvider{}
	}
	if opts.DefaultStandard == "" {
		opts.DefaultStandard = engine.StandardSN29500
	}
	return &FMEDAService{
		logger:     logger,
		pipeline:   pipeline,
		components: components,
		catalog:    catalog,
		results:    results,
		opts:       opts,
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// WithHistory enables ListCalculations.
func (s *FMEDAService) WithHistory(history CalculationHistory) *FMEDAService {
	s.history = history
	return s
}

// CalculateFIT rates one component under the requested standard, or the default one.
func (s *FMEDAService) CalculateFIT(ctx context.Context, req models.FITRequest) (engine.FITResult, error) {
	const op = "services.CalculateFIT"
	if req.ComponentID == uuid.Nil {
		return engine.FITResult{}, utils.InvalidRequest(op, "component_id is required")
	}
	if strings.TrimSpace(req.Standard) == "" {
		req.Standard = s.opts.DefaultStandard
	}

	start := time.Now()
	res, err := s.pipeline.CalculateFIT(ctx, req)
	s.observe(metrics.KindFIT, start, err)
	if err != nil {
		s.logFailure("fit calculation failed", err, slog.String("component_id", req.ComponentID.String()))
		return engine.FITResult{}, err
	}
	for _, w := range res.Warnings {
		metrics.ObserveDegradation(res.Standard, w.Code)
	}
	return res, nil
}

// CalculateComponent rolls up the catalog failure modes of one component.
func (s *FMEDAService) CalculateComponent(ctx context.Context, id uuid.UUID) (models.ComponentFMEDAResult, error) {
	const op = "services.CalculateComponent"
	if id == uuid.Nil {
		return models.ComponentFMEDAResult{}, utils.InvalidRequest(op, "component_id is required")
	}

	start := time.Now()
	res, err := s.pipeline.CalculateComponent(ctx, id)
	s.observe(metrics.KindComponent, start, err)
	if err != nil {
		s.logFailure("component calculation failed", err, slog.String("component_id", id.String()))
		return models.ComponentFMEDAResult{}, err
	}
	return res, nil
}

// CalculateProject rolls up a project. Results of requests that do not persist are served
// from the result cache while fresh.
func (s *FMEDAService) CalculateProject(ctx context.Context, req models.ProjectCalculationRequest) (models.ProjectCalculation, error) {
	const op = "services.CalculateProject"
	if req.ProjectID == uuid.Nil && len(req.ComponentIDs) == 0 {
		return models.ProjectCalculation{}, utils.InvalidRequest(op, "project_id or component_ids is required")
	}
	if s.opts.MaxComponents > 0 && len(req.ComponentIDs) > s.opts.MaxComponents {
		return models.ProjectCalculation{}, utils.InvalidRequest(op, "too many components requested")
	}
	req.Standard = strings.ToUpper(strings.TrimSpace(req.Standard))

	key := projectKey(req, s.catalogGeneration(ctx))
	if !req.Persist {
		var cached models.ProjectCalculation
		if err := cache.GetJSON(ctx, s.results, key, &cached); err == nil {
			metrics.ObserveCacheLookup(true)
			return cached, nil
		}
		metrics.ObserveCacheLookup(false)
	}

	start := time.Now()
	out, err := s.pipeline.CalculateProject(ctx, req)
	s.observe(metrics.KindProject, start, err)
	if err != nil {
		s.logFailure("project calculation failed", err, slog.String("project_id", req.ProjectID.String()))
		return models.ProjectCalculation{}, err
	}
	if s.opts.MaxComponents > 0 && len(out.Result.Components) > s.opts.MaxComponents {
		return models.ProjectCalculation{}, utils.InvalidRequest(op, "project exceeds the component limit")
	}

	for _, fit := range out.StandardFITs {
		for _, w := range fit.Warnings {
			code, _, _ := strings.Cut(w, ":")
			metrics.ObserveDegradation(fit.Standard, code)
		}
	}

	cacheable := out
	cacheable.CalculationID = nil
	if err := cache.SetJSON(ctx, s.results, key, cacheable, s.opts.ResultTTL); err != nil {
		s.logger.Debug("result cache write failed", slog.Any("error", err))
	}
	return out, nil
}

// CreateFailureMode validates and records a catalog entry.
func (s *FMEDAService) CreateFailureMode(ctx context.Context, mode models.FailureMode) (models.FailureMode, error) {
	const op = "services.CreateFailureMode"
	if s.catalog == nil {
		return models.FailureMode{}, utils.NewAppError(op, "catalog not configured", nil)
	}
	if err := validateFailureMode(op, mode); err != nil {
		return models.FailureMode{}, err
	}
	created, err := s.catalog.CreateFailureMode(ctx, mode)
	if err != nil {
		s.logFailure("create failure mode failed", err, slog.String("mpn", mode.MPN))
		return models.FailureMode{}, err
	}
	if err := s.results.Set(ctx, catalogGenerationKey, []byte(uuid.NewString()), 0); err != nil {
		s.logger.Warn("result cache invalidation failed", slog.Any("error", err))
	}
	return created, nil
}

func (s *FMEDAService) catalogGeneration(ctx context.Context) string {
	raw, err := s.results.Get(ctx, catalogGenerationKey)
	if err != nil || len(raw) == 0 {
		return "0"
	}
	return string(raw)
}

// ListProjectComponents returns the BOM of a project.
func (s *FMEDAService) ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error) {
	const op = "services.ListProjectComponents"
	if projectID == uuid.Nil {
		return nil, utils.InvalidRequest(op, "project_id is required")
	}
	return s.components.ListProjectComponents(ctx, projectID)
}

// ListCalculations returns the newest persisted calculations of a project.
func (s *FMEDAService) ListCalculations(ctx context.Context, projectID uuid.UUID, limit int) ([]models.Calculation, error) {
	const op = "services.ListCalculations"
	if s.history == nil {
		return nil, utils.NewAppError(op, "calculation history not configured", nil)
	}
	if projectID == uuid.Nil {
		return nil, utils.InvalidRequest(op, "project_id is required")
	}
	if limit < 0 || limit > 100 {
		return nil, utils.InvalidRequest(op, "limit must be within [0, 100]")
	}
	return s.history.ListCalculations(ctx, projectID, limit)
}

// Standards lists the standards requests may name.
func (s *FMEDAService) Standards() []string {
	return s.pipeline.Standards()
}

// LatencySummary reports recent calculation latencies across all kinds.
func (s *FMEDAService) LatencySummary() utils.LatencySummary {
	return s.latencies.Summary()
}

func (s *FMEDAService) observe(kind string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.ObserveCalculation(kind, duration, outcome(err))
	if err != nil {
		return
	}
	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("calculation latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}
}

func (s *FMEDAService) logFailure(msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	if outcome(err) == metrics.OutcomeRejected {
		level = slog.LevelDebug
	}
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("error", err))
	s.logger.Log(context.Background(), level, msg, args...)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, utils.ErrInvalidRequest), errors.Is(err, utils.ErrNotFound), engine.IsStructural(err):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}

func projectKey(req models.ProjectCalculationRequest, generation string) string {
	profile := "-"
	if req.MissionProfileID != nil {
		profile = req.MissionProfileID.String()
	}
	parts := []string{generation, req.ProjectID.String(), req.Standard, profile}
	for _, id := range req.ComponentIDs {
		parts = append(parts, id.String())
	}
	return cache.Key("project", parts...)
}

func validateFailureMode(op string, m models.FailureMode) error {
	switch {
	case strings.TrimSpace(m.Mode) == "":
		return utils.InvalidRequest(op, "mode is required")
	case m.MPN == "" && m.Family == "":
		return utils.InvalidRequest(op, "mpn or family is required")
	case m.Lambda < 0 || math.IsNaN(m.Lambda) || math.IsInf(m.Lambda, 0):
		return utils.InvalidRequest(op, "lambda must be a finite non-negative FIT")
	case m.DetectionCoverage != nil && !(*m.DetectionCoverage >= 0 && *m.DetectionCoverage <= 1):
		return utils.InvalidRequest(op, "detection_coverage must be within [0, 1]")
	}
	return nil
}
