package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockBackend struct {
	fitFunc     func(req models.FITRequest) (engine.FITResult, error)
	projectFunc func(req models.ProjectCalculationRequest) (models.ProjectCalculation, error)
	created     []models.FailureMode
	components  map[uuid.UUID][]models.Component
}

func (m *mockBackend) CalculateFIT(ctx context.Context, req models.FITRequest) (engine.FITResult, error) {
	return m.fitFunc(req)
}

func (m *mockBackend) CalculateProject(ctx context.Context, req models.ProjectCalculationRequest) (models.ProjectCalculation, error) {
	return m.projectFunc(req)
}

func (m *mockBackend) CreateFailureMode(ctx context.Context, mode models.FailureMode) (models.FailureMode, error) {
	mode.ID = uuid.New()
	m.created = append(m.created, mode)
	return mode, nil
}

func (m *mockBackend) ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error) {
	components, ok := m.components[projectID]
	if !ok {
		return nil, utils.NotFound("mock", "project", projectID)
	}
	return components, nil
}

func (m *mockBackend) ListCalculations(ctx context.Context, projectID uuid.UUID, limit int) ([]models.Calculation, error) {
	if limit > 100 {
		return nil, utils.InvalidRequest("mock", "limit too large")
	}
	return []models.Calculation{{ID: uuid.New(), ProjectID: projectID, Result: json.RawMessage(`{}`)}}, nil
}

func (m *mockBackend) LatencySummary() utils.LatencySummary {
	return utils.LatencySummary{Count: 3}
}

func (m *mockBackend) Standards() []string {
	return []string{engine.StandardIEC62380, engine.StandardSN29500}
}

func serve(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router := NewRouter(nil, &mockBackend{})
	rec := serve(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","standards":["IEC62380","SN29500"],"latency":{"count":3,"p50":0,"p95":0,"p99":0}}`, rec.Body.String())
}

func TestCreateFailureMode(t *testing.T) {
	backend := &mockBackend{}
	router := NewRouter(nil, backend)

	rec := serve(t, router, http.MethodPost, "/failure_modes", map[string]any{
		"mpn": "RC0603", "mode": "open", "lambda": 10, "detection_coverage": 0.9,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, backend.created, 1)
	assert.Equal(t, 0.9, backend.created[0].Coverage())

	rejected := []map[string]any{
		{"mode": "open", "lambda": 1},
		{"mpn": "RC0603", "lambda": 1},
		{"mpn": "RC0603", "mode": "open", "lambda": -2},
		{"mpn": "RC0603", "mode": "open", "lambda": 1, "detection_coverage": 1.2},
	}
	for _, body := range rejected {
		rec := serve(t, router, http.MethodPost, "/failure_modes", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
	assert.Len(t, backend.created, 1)

	rec = serve(t, router, http.MethodPost, "/failure_modes", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCalculate(t *testing.T) {
	projectID := uuid.New()
	componentID := uuid.New()
	var got models.ProjectCalculationRequest
	backend := &mockBackend{projectFunc: func(req models.ProjectCalculationRequest) (models.ProjectCalculation, error) {
		got = req
		return models.ProjectCalculation{Result: models.ProjectFMEDAResult{
			Components: []models.ComponentFMEDAResult{{ComponentID: componentID, TotalFIT: 15}},
			Aggregate:  models.AggregateTotals{TotalDangerousFIT: 6},
		}}, nil
	}}
	router := NewRouter(nil, backend)

	rec := serve(t, router, http.MethodPost, "/calculate", map[string]any{
		"project_id":    projectID.String(),
		"component_ids": []string{componentID.String()},
		"standard":      "SN29500",
		"persist":       true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, projectID, got.ProjectID)
	assert.Equal(t, []uuid.UUID{componentID}, got.ComponentIDs)
	assert.True(t, got.Persist)

	var out models.ProjectCalculation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 6.0, out.Result.Aggregate.TotalDangerousFIT)

	rec = serve(t, router, http.MethodPost, "/calculate", map[string]any{"component_ids": []string{"nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFitErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{&engine.StandardError{Standard: engine.StandardSN29500, Err: engine.ErrMissingVariant}, http.StatusPreconditionFailed, "missing_variant"},
		{&engine.StandardError{Standard: "MIL217", Err: engine.ErrUnknownStandard}, http.StatusBadRequest, "unknown_standard"},
		{fmt.Errorf("load component: %w", utils.NotFound("repo", "component", uuid.New())), http.StatusNotFound, "not_found"},
		{fmt.Errorf("db down"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		backend := &mockBackend{fitFunc: func(models.FITRequest) (engine.FITResult, error) { return engine.FITResult{}, tc.err }}
		rec := serve(t, NewRouter(nil, backend), http.MethodPost, "/fit", map[string]any{"component_id": uuid.NewString()})
		require.Equal(t, tc.want, rec.Code, "error %v", tc.err)

		var body errorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code)
		if tc.want == http.StatusInternalServerError {
			assert.Equal(t, "internal error", body.Error)
		}
	}
}

func TestFit(t *testing.T) {
	componentID := uuid.New()
	backend := &mockBackend{fitFunc: func(req models.FITRequest) (engine.FITResult, error) {
		return engine.FITResult{Standard: engine.StandardSN29500, FIT: 0.42, Model: "resistor"}, nil
	}}
	rec := serve(t, NewRouter(nil, backend), http.MethodPost, "/fit", map[string]any{"component_id": componentID.String()})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, componentID.String(), body["component_id"])
	assert.Equal(t, 0.42, body["fit"])

	rec = serve(t, NewRouter(nil, backend), http.MethodPost, "/fit", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListComponents(t *testing.T) {
	projectID := uuid.New()
	backend := &mockBackend{components: map[uuid.UUID][]models.Component{
		projectID: {{ID: uuid.New(), ProjectID: projectID, ManufacturerPartNumber: "RC0603", Quantity: 4}},
	}}
	router := NewRouter(nil, backend)

	rec := serve(t, router, http.MethodGet, "/components/"+projectID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var components []models.Component
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &components))
	require.Len(t, components, 1)
	assert.Equal(t, "RC0603", components[0].ManufacturerPartNumber)

	assert.Equal(t, http.StatusNotFound, serve(t, router, http.MethodGet, "/components/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/components/not-a-uuid", nil).Code)
}

func TestListCalculations(t *testing.T) {
	router := NewRouter(nil, &mockBackend{})
	projectID := uuid.New()

	rec := serve(t, router, http.MethodGet, "/calculations/"+projectID.String()+"?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var calcs []models.Calculation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &calcs))
	require.Len(t, calcs, 1)
	assert.Equal(t, projectID, calcs[0].ProjectID)

	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/calculations/"+projectID.String()+"?limit=x", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(t, router, http.MethodGet, "/calculations/"+projectID.String()+"?limit=500", nil).Code)
}
