package grpc

// proto.go hand-writes the service descriptor for loanrisk.v1.RiskAssessmentService.
// Messages travel as JSON through the codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "loanrisk.v1.RiskAssessmentService"

// Full method names, as seen by interceptors.
const (
	MethodAssessRisk          = "/" + ServiceName + "/AssessRisk"
	MethodRecordOutcome       = "/" + ServiceName + "/RecordOutcome"
	MethodListPredictions     = "/" + ServiceName + "/ListPredictions"
	MethodComputeModelMetrics = "/" + ServiceName + "/ComputeModelMetrics"
)

// RiskAssessmentServiceServer is the server API for RiskAssessmentService.
type RiskAssessmentServiceServer interface {
	AssessRisk(context.Context, *AssessRiskRequest) (*AssessRiskResponse, error)
	RecordOutcome(context.Context, *RecordOutcomeRequest) (*RecordOutcomeResponse, error)
	ListPredictions(context.Context, *ListPredictionsRequest) (*ListPredictionsResponse, error)
	ComputeModelMetrics(context.Context, *ComputeModelMetricsRequest) (*ComputeModelMetricsResponse, error)
	mustEmbedUnimplementedRiskAssessmentServiceServer()
}

// UnimplementedRiskAssessmentServiceServer provides forward-compatible default implementations.
type UnimplementedRiskAssessmentServiceServer struct{}

func (UnimplementedRiskAssessmentServiceServer) AssessRisk(context.Context, *AssessRiskRequest) (*AssessRiskResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method AssessRisk not implemented")
}
func (UnimplementedRiskAssessmentServiceServer) RecordOutcome(context.Context, *RecordOutcomeRequest) (*RecordOutcomeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RecordOutcome not implemented")
}
func (UnimplementedRiskAssessmentServiceServer) ListPredictions(context.Context, *ListPredictionsRequest) (*ListPredictionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListPredictions not implemented")
}
func (UnimplementedRiskAssessmentServiceServer) ComputeModelMetrics(context.Context, *ComputeModelMetricsRequest) (*ComputeModelMetricsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ComputeModelMetrics not implemented")
}
func (UnimplementedRiskAssessmentServiceServer) mustEmbedUnimplementedRiskAssessmentServiceServer() {}

// RegisterRiskAssessmentServiceServer registers srv with the gRPC server.
func RegisterRiskAssessmentServiceServer(s grpclib.ServiceRegistrar, srv RiskAssessmentServiceServer) {
	s.RegisterService(&riskAssessmentServiceDesc, srv)
}

var riskAssessmentServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskAssessmentServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "AssessRisk", Handler: assessRiskHandler},
		{MethodName: "RecordOutcome", Handler: recordOutcomeHandler},
		{MethodName: "ListPredictions", Handler: listPredictionsHandler},
		{MethodName: "ComputeModelMetrics", Handler: computeModelMetricsHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "loanrisk/v1/risk.proto",
}

// unaryHandler adapts a typed server method to grpclib.MethodDesc.Handler.
func unaryHandler[Req, Resp any](
	fullMethod string,
	call func(RiskAssessmentServiceServer, context.Context, *Req) (*Resp, error),
) func(any, context.Context, func(any) error, grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RiskAssessmentServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RiskAssessmentServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var (
	assessRiskHandler = unaryHandler(MethodAssessRisk,
		func(s RiskAssessmentServiceServer, ctx context.Context, in *AssessRiskRequest) (*AssessRiskResponse, error) {
			return s.AssessRisk(ctx, in)
		})
	recordOutcomeHandler = unaryHandler(MethodRecordOutcome,
		func(s RiskAssessmentServiceServer, ctx context.Context, in *RecordOutcomeRequest) (*RecordOutcomeResponse, error) {
			return s.RecordOutcome(ctx, in)
		})
	listPredictionsHandler = unaryHandler(MethodListPredictions,
		func(s RiskAssessmentServiceServer, ctx context.Context, in *ListPredictionsRequest) (*ListPredictionsResponse, error) {
			return s.ListPredictions(ctx, in)
		})
	computeModelMetricsHandler = unaryHandler(MethodComputeModelMetrics,
		func(s RiskAssessmentServiceServer, ctx context.Context, in *ComputeModelMetricsRequest) (*ComputeModelMetricsResponse, error) {
			return s.ComputeModelMetrics(ctx, in)
		})
)
