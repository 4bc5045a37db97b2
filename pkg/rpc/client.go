package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// DashboardClient is the client API for DashboardService.
// Every call is sent with the JSON content-subtype.
type DashboardClient struct {
	cc grpc.ClientConnInterface
}

// NewDashboardClient wraps a connection.
func NewDashboardClient(cc grpc.ClientConnInterface) *DashboardClient {
	return &DashboardClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardClient) ListFields(ctx context.Context, in *ListFieldsRequest, opts ...grpc.CallOption) (*ListFieldsResponse, error) {
	return invoke[ListFieldsResponse](ctx, c.cc, "ListFields", in, opts)
}

func (c *DashboardClient) GetDashboard(ctx context.Context, in *GetDashboardRequest, opts ...grpc.CallOption) (*GetDashboardResponse, error) {
	return invoke[GetDashboardResponse](ctx, c.cc, "GetDashboard", in, opts)
}

func (c *DashboardClient) GetPestRisk(ctx context.Context, in *GetPestRiskRequest, opts ...grpc.CallOption) (*GetPestRiskResponse, error) {
	return invoke[GetPestRiskResponse](ctx, c.cc, "GetPestRisk", in, opts)
}

func (c *DashboardClient) GetWeather(ctx context.Context, in *GetWeatherRequest, opts ...grpc.CallOption) (*GetWeatherResponse, error) {
	return invoke[GetWeatherResponse](ctx, c.cc, "GetWeather", in, opts)
}

func (c *DashboardClient) GetHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (*GetHistoryResponse, error) {
	return invoke[GetHistoryResponse](ctx, c.cc, "GetHistory", in, opts)
}

func (c *DashboardClient) RecordReading(ctx context.Context, in *RecordReadingRequest, opts ...grpc.CallOption) (*RecordReadingResponse, error) {
	return invoke[RecordReadingResponse](ctx, c.cc, "RecordReading", in, opts)
}

func (c *DashboardClient) ClassifyMoisture(ctx context.Context, in *ClassifyMoistureRequest, opts ...grpc.CallOption) (*ClassifyMoistureResponse, error) {
	return invoke[ClassifyMoistureResponse](ctx, c.cc, "ClassifyMoisture", in, opts)
}
