package triagev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName                                  = "triage.v1.TriageEngine"
	TriageEngine_RankAlert_FullMethodName        = "/triage.v1.TriageEngine/RankAlert"
	TriageEngine_GeneratePlaybook_FullMethodName = "/triage.v1.TriageEngine/GeneratePlaybook"
	TriageEngine_HealthCheck_FullMethodName      = "/triage.v1.TriageEngine/HealthCheck"
)

// TriageEngineServer is the server API for the TriageEngine service.
type TriageEngineServer interface {
	RankAlert(context.Context, *RankAlertRequest) (*AlertFidelityRanking, error)
	GeneratePlaybook(context.Context, *GeneratePlaybookRequest) (*Playbook, error)
	HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

// UnimplementedTriageEngineServer returns Unimplemented for every method.
type UnimplementedTriageEngineServer struct{}

func (UnimplementedTriageEngineServer) RankAlert(context.Context, *RankAlertRequest) (*AlertFidelityRanking, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RankAlert not implemented")
}

func (UnimplementedTriageEngineServer) GeneratePlaybook(context.Context, *GeneratePlaybookRequest) (*Playbook, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GeneratePlaybook not implemented")
}

func (UnimplementedTriageEngineServer) HealthCheck(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method HealthCheck not implemented")
}

// RegisterTriageEngineServer registers srv on s.
func RegisterTriageEngineServer(s grpc.ServiceRegistrar, srv TriageEngineServer) {
	s.RegisterService(&TriageEngine_ServiceDesc, srv)
}

func _TriageEngine_RankAlert_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RankAlertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TriageEngineServer).RankAlert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TriageEngine_RankAlert_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriageEngineServer).RankAlert(ctx, req.(*RankAlertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TriageEngine_GeneratePlaybook_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GeneratePlaybookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TriageEngineServer).GeneratePlaybook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TriageEngine_GeneratePlaybook_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriageEngineServer).GeneratePlaybook(ctx, req.(*GeneratePlaybookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TriageEngine_HealthCheck_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthCheckRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TriageEngineServer).HealthCheck(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TriageEngine_HealthCheck_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TriageEngineServer).HealthCheck(ctx, req.(*HealthCheckRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// TriageEngine_ServiceDesc describes the TriageEngine service for grpc.Server.
var TriageEngine_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TriageEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RankAlert", Handler: _TriageEngine_RankAlert_Handler},
		{MethodName: "GeneratePlaybook", Handler: _TriageEngine_GeneratePlaybook_Handler},
		{MethodName: "HealthCheck", Handler: _TriageEngine_HealthCheck_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "triage/v1/triage.json",
}

// TriageEngineClient is the client API for the TriageEngine service.
type TriageEngineClient interface {
	RankAlert(ctx context.Context, in *RankAlertRequest, opts ...grpc.CallOption) (*AlertFidelityRanking, error)
	GeneratePlaybook(ctx context.Context, in *GeneratePlaybookRequest, opts ...grpc.CallOption) (*Playbook, error)
	HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type triageEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewTriageEngineClient returns a client that always selects the JSON codec.
func NewTriageEngineClient(cc grpc.ClientConnInterface) TriageEngineClient {
	return &triageEngineClient{cc: cc}
}

func (c *triageEngineClient) RankAlert(ctx context.Context, in *RankAlertRequest, opts ...grpc.CallOption) (*AlertFidelityRanking, error) {
	out := new(AlertFidelityRanking)
	if err := c.cc.Invoke(ctx, TriageEngine_RankAlert_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *triageEngineClient) GeneratePlaybook(ctx context.Context, in *GeneratePlaybookRequest, opts ...grpc.CallOption) (*Playbook, error) {
	out := new(Playbook)
	if err := c.cc.Invoke(ctx, TriageEngine_GeneratePlaybook_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *triageEngineClient) HealthCheck(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, TriageEngine_HealthCheck_FullMethodName, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
