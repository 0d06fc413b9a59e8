package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChartControlClient calls a remote ControlService.
type ChartControlClient struct {
	cc grpc.ClientConnInterface
}

func NewChartControlClient(cc grpc.ClientConnInterface) *ChartControlClient {
	return &ChartControlClient{cc: cc}
}

func (c *ChartControlClient) GetInterval(ctx context.Context, chart string) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("GetInterval"), wrapperspb.String(chart), out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *ChartControlClient) SetInterval(ctx context.Context, chart, interval string) (string, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"chart": chart, "interval": interval})
	if err != nil {
		return "", err
	}
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("SetInterval"), in, out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *ChartControlClient) ListCharts(ctx context.Context) (map[string]interface{}, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListCharts"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}
