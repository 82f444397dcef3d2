// Package v1 holds the AttritionService gRPC contract. Messages are the
// protobuf well-known Empty and Struct types, so no generated message code
// is required.
package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AttritionService_ServiceName = "evalify.attrition.v1.AttritionService"

	AttritionService_RunBatch_FullMethodName             = "/evalify.attrition.v1.AttritionService/RunBatch"
	AttritionService_GetPrediction_FullMethodName        = "/evalify.attrition.v1.AttritionService/GetPrediction"
	AttritionService_GetPredictionHistory_FullMethodName = "/evalify.attrition.v1.AttritionService/GetPredictionHistory"
)

// AttritionServiceClient is the client API for AttritionService.
type AttritionServiceClient interface {
	RunBatch(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetPredictionHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type attritionServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAttritionServiceClient(cc grpc.ClientConnInterface) AttritionServiceClient {
	return &attritionServiceClient{cc}
}

func (c *attritionServiceClient) RunBatch(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AttritionService_RunBatch_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *attritionServiceClient) GetPrediction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AttritionService_GetPrediction_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *attritionServiceClient) GetPredictionHistory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, AttritionService_GetPredictionHistory_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// AttritionServiceServer is the server API for AttritionService.
type AttritionServiceServer interface {
	RunBatch(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPredictionHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAttritionServiceServer can be embedded for forward
// compatible implementations.
type UnimplementedAttritionServiceServer struct{}

func (UnimplementedAttritionServiceServer) RunBatch(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunBatch not implemented")
}
func (UnimplementedAttritionServiceServer) GetPrediction(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetPrediction not implemented")
}
func (UnimplementedAttritionServiceServer) GetPredictionHistory(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetPredictionHistory not implemented")
}

func RegisterAttritionServiceServer(s grpc.ServiceRegistrar, srv AttritionServiceServer) {
	s.RegisterService(&AttritionService_ServiceDesc, srv)
}

func _AttritionService_RunBatch_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttritionServiceServer).RunBatch(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttritionService_RunBatch_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttritionServiceServer).RunBatch(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _AttritionService_GetPrediction_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttritionServiceServer).GetPrediction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttritionService_GetPrediction_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttritionServiceServer).GetPrediction(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _AttritionService_GetPredictionHistory_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AttritionServiceServer).GetPredictionHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AttritionService_GetPredictionHistory_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AttritionServiceServer).GetPredictionHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// AttritionService_ServiceDesc is the grpc.ServiceDesc for AttritionService.
var AttritionService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: AttritionService_ServiceName,
	HandlerType: (*AttritionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RunBatch",
			Handler:    _AttritionService_RunBatch_Handler,
		},
		{
			MethodName: "GetPrediction",
			Handler:    _AttritionService_GetPrediction_Handler,
		},
		{
			MethodName: "GetPredictionHistory",
			Handler:    _AttritionService_GetPredictionHistory_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/v1/attrition.proto",
}
