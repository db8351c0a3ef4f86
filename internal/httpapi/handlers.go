// Package httpapi exposes the FMEDA service over JSON HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/miradorstack/mirador-fmeda/internal/api"
	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// Backend is the service the HTTP handlers delegate to.
type Backend interface {
	CalculateFIT(ctx context.Context, req models.FITRequest) (engine.FITResult, error)
	CalculateProject(ctx context.Context, req models.ProjectCalculationRequest) (models.ProjectCalculation, error)
	CreateFailureMode(ctx context.Context, mode models.FailureMode) (models.FailureMode, error)
	ListProjectComponents(ctx context.Context, projectID uuid.UUID) ([]models.Component, error)
	ListCalculations(ctx context.Context, projectID uuid.UUID, limit int) ([]models.Calculation, error)
	Standards() []string
	LatencySummary() utils.LatencySummary
}

type healthBody struct {
	api.HealthResponse
	Latency utils.LatencySummary `json:"latency"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type handlers struct {
	logger  *slog.Logger
	backend Backend
}

// NewRouter builds the gin engine serving the FMEDA routes.
func NewRouter(logger *slog.Logger, backend Backend) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{logger: logger, backend: backend}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestLog)
	router.GET("/health", h.health)
	router.POST("/failure_modes", h.createFailureMode)
	router.POST("/calculate", h.calculate)
	router.POST("/fit", h.fit)
	router.GET("/components/:project_id", h.listComponents)
	router.GET("/calculations/:project_id", h.listCalculations)
	return router
}

func (h *handlers) requestLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.logger.Debug("http request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", time.Since(start)))
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthBody{
		HealthResponse: api.HealthResponse{Status: "ok", Standards: h.backend.Standards()},
		Latency:        h.backend.LatencySummary(),
	})
}

func (h *handlers) createFailureMode(c *gin.Context) {
	var req failureModeRequest
	if !h.bind(c, &req) {
		return
	}
	created, err := h.backend.CreateFailureMode(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *handlers) calculate(c *gin.Context) {
	var req calculateRequest
	if !h.bind(c, &req) {
		return
	}
	out, err := h.backend.CalculateProject(c.Request.Context(), req.model())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) fit(c *gin.Context) {
	var req fitRequest
	if !h.bind(c, &req) {
		return
	}
	domainReq := req.model()
	res, err := h.backend.CalculateFIT(c.Request.Context(), domainReq)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FITResponse{ComponentID: domainReq.ComponentID, FITResult: res})
}

func (h *handlers) listComponents(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "project_id must be a uuid", Code: "invalid_request"})
		return
	}
	components, err := h.backend.ListProjectComponents(c.Request.Context(), projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, components)
}

func (h *handlers) listCalculations(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "project_id must be a uuid", Code: "invalid_request"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, errorBody{Error: "limit must be an integer", Code: "invalid_request"})
			return
		}
	}
	calcs, err := h.backend.ListCalculations(c.Request.Context(), projectID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, calcs)
}

// bind decodes and validates the JSON body into dst, answering 400 on failure.
func (h *handlers) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body: " + err.Error(), Code: "invalid_request"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msg = verrs[0].Field() + " failed " + verrs[0].Tag() + " validation"
		}
		c.JSON(http.StatusBadRequest, errorBody{Error: msg, Code: "invalid_request"})
		return false
	}
	return true
}

func (h *handlers) fail(c *gin.Context, err error) {
	status, code := classify(err)
	msg := utils.Message(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", slog.String("path", c.FullPath()), slog.Any("error", err))
		msg = "internal error"
	}
	c.JSON(status, errorBody{Error: msg, Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrMissingVariant):
		return http.StatusPreconditionFailed, "missing_variant"
	case errors.Is(err, engine.ErrUnknownStandard):
		return http.StatusBadRequest, "unknown_standard"
	case errors.Is(err, utils.ErrInvalidRequest),
		errors.Is(err, engine.ErrInvalidTemperature),
		errors.Is(err, engine.ErrInvalidProfile):
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
