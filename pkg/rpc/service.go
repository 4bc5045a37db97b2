package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "sensorice.v1.DashboardService"

// DashboardServiceServer is the server API for DashboardService.
type DashboardServiceServer interface {
	ListFields(context.Context, *ListFieldsRequest) (*ListFieldsResponse, error)
	GetDashboard(context.Context, *GetDashboardRequest) (*GetDashboardResponse, error)
	GetPestRisk(context.Context, *GetPestRiskRequest) (*GetPestRiskResponse, error)
	GetWeather(context.Context, *GetWeatherRequest) (*GetWeatherResponse, error)
	GetHistory(context.Context, *GetHistoryRequest) (*GetHistoryResponse, error)
	RecordReading(context.Context, *RecordReadingRequest) (*RecordReadingResponse, error)
	ClassifyMoisture(context.Context, *ClassifyMoistureRequest) (*ClassifyMoistureResponse, error)
}

// UnimplementedDashboardServiceServer can be embedded for forward compatibility.
type UnimplementedDashboardServiceServer struct{}

func (UnimplementedDashboardServiceServer) ListFields(context.Context, *ListFieldsRequest) (*ListFieldsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListFields not implemented")
}
func (UnimplementedDashboardServiceServer) GetDashboard(context.Context, *GetDashboardRequest) (*GetDashboardResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetDashboard not implemented")
}
func (UnimplementedDashboardServiceServer) GetPestRisk(context.Context, *GetPestRiskRequest) (*GetPestRiskResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPestRisk not implemented")
}
func (UnimplementedDashboardServiceServer) GetWeather(context.Context, *GetWeatherRequest) (*GetWeatherResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetWeather not implemented")
}
func (UnimplementedDashboardServiceServer) GetHistory(context.Context, *GetHistoryRequest) (*GetHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetHistory not implemented")
}
func (UnimplementedDashboardServiceServer) RecordReading(context.Context, *RecordReadingRequest) (*RecordReadingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordReading not implemented")
}
func (UnimplementedDashboardServiceServer) ClassifyMoisture(context.Context, *ClassifyMoistureRequest) (*ClassifyMoistureResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClassifyMoisture not implemented")
}

// RegisterDashboardServiceServer registers srv on s.
func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

func unary[Req, Resp any](name string, call func(DashboardServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(DashboardServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DashboardServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DashboardServiceDesc describes DashboardService for grpc.ServiceRegistrar.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListFields", DashboardServiceServer.ListFields),
		unary("GetDashboard", DashboardServiceServer.GetDashboard),
		unary("GetPestRisk", DashboardServiceServer.GetPestRisk),
		unary("GetWeather", DashboardServiceServer.GetWeather),
		unary("GetHistory", DashboardServiceServer.GetHistory),
		unary("RecordReading", DashboardServiceServer.RecordReading),
		unary("ClassifyMoisture", DashboardServiceServer.ClassifyMoisture),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sensorice/v1/dashboard.proto",
}
