package services

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-fmeda/internal/api"
	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/grpc/fmedav1"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

// GRPCServer implements the gRPC FMEDAEngine service over an FMEDAService.
type GRPCServer struct {
	fmedav1.UnimplementedFMEDAEngineServer

	logger  *slog.Logger
	service *FMEDAService
}

// NewGRPCServer adapts service to the gRPC surface.
func NewGRPCServer(logger *slog.Logger, service *FMEDAService) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCServer{logger: logger, service: service}
}

// CalculateFIT rates one component under one standard.
func (g *GRPCServer) CalculateFIT(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	domainReq, err := api.FromProtoFITRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	g.logger.Debug("CalculateFIT called", slog.String("component_id", domainReq.ComponentID.String()), slog.String("standard", domainReq.Standard))
	res, err := g.service.CalculateFIT(ctx, domainReq)
	if err != nil {
		return nil, statusError(err)
	}
	return g.encode(api.ToProtoFITResult(domainReq.ComponentID, res))
}

// CalculateComponent rolls up the failure modes of one component.
func (g *GRPCServer) CalculateComponent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	id, err := api.FromProtoComponentRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := g.service.CalculateComponent(ctx, id)
	if err != nil {
		return nil, statusError(err)
	}
	return g.encode(api.ToProtoComponentResult(res))
}

// CalculateProject rolls up a project.
func (g *GRPCServer) CalculateProject(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	domainReq, err := api.FromProtoProjectRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := g.service.CalculateProject(ctx, domainReq)
	if err != nil {
		return nil, statusError(err)
	}
	return g.encode(api.ToProtoProjectCalculation(res))
}

// HealthCheck returns the current health state and the available standards.
func (g *GRPCServer) HealthCheck(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return g.encode(api.ToProtoHealth(api.HealthResponse{Status: "SERVING", Standards: g.service.Standards()}))
}

func (g *GRPCServer) encode(resp *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		g.logger.Error("encode response failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

// statusError maps service errors onto gRPC status codes.
func statusError(err error) error {
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, utils.ErrInvalidRequest),
		errors.Is(err, engine.ErrUnknownStandard),
		errors.Is(err, engine.ErrInvalidTemperature),
		errors.Is(err, engine.ErrInvalidProfile):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrMissingVariant):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "calculation timed out")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "calculation canceled")
	default:
		return status.Error(codes.Internal, "calculation failed")
	}
}
