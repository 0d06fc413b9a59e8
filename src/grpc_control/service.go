package grpc_control

import (
	"context"
	"errors"
	"fmt"

	"trading-dashboard/src/dashboard"
	"trading-dashboard/src/helpers"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/validation"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ChartController is what the control service drives.
type ChartController interface {
	Interval(chart string) (models.MInterval, error)
	SetInterval(chart string, interval models.MInterval) error
	Charts() []dashboard.ChartStatus
}

// ControlService exposes chart interval selection over gRPC.
type ControlService struct {
	Controller ChartController
	Logger     *logger.Logger
}

func NewControlService(ctrl ChartController, log *logger.Logger) *ControlService {
	return &ControlService{Controller: ctrl, Logger: log}
}

// -----------------------------------------------------------------------------

// GetInterval returns the interval the named chart is showing.
func (s *ControlService) GetInterval(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if err := validation.ValidateChart(req.GetValue()); err != nil {
		return nil, toStatus(err)
	}
	iv, err := s.Controller.Interval(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(string(iv)), nil
}

// -----------------------------------------------------------------------------

// SetInterval expects {"chart": ..., "interval": ...} and returns the new
// interval once the chart has been restarted on it.
func (s *ControlService) SetInterval(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	fields := req.GetFields()
	in := validation.IntervalRequest{
		Chart:    fields["chart"].GetStringValue(),
		Interval: fields["interval"].GetStringValue(),
	}
	iv, err := validation.ValidateChartInterval(in)
	if err != nil {
		return nil, toStatus(err)
	}

	if err := s.Controller.SetInterval(in.Chart, iv); err != nil {
		s.Logger.Error("gRPC: SetInterval %s=%s failed: %v", in.Chart, iv, err)
		return nil, toStatus(err)
	}
	s.Logger.Info("gRPC: %s now on %s", in.Chart, iv)
	return wrapperspb.String(string(iv)), nil
}

// -----------------------------------------------------------------------------

// ListCharts maps every chart to {"interval", "running", "last"}.
func (s *ControlService) ListCharts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out := make(map[string]interface{})
	for _, st := range s.Controller.Charts() {
		entry := map[string]interface{}{
			"interval": string(st.Interval),
			"running":  st.Running,
		}
		if st.Last != nil {
			entry["last"] = string(st.Last.Reason)
			if st.Last.Err != nil {
				entry["error"] = st.Last.Err.Error()
			}
		}
		out[st.Name] = entry
	}
	res, err := structpb.NewStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding chart list: %v", err)
	}
	return res, nil
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	var v *helpers.ValidationError
	if errors.As(err, &v) {
		return status.Error(codes.InvalidArgument, v.Error())
	}
	var st *helpers.StorageError
	if errors.As(err, &st) {
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// -----------------------------------------------------------------------------
// Service registration. The messages are protobuf well-known types, so the
// descriptor is written out by hand instead of generated.
// -----------------------------------------------------------------------------

const ServiceName = "dashboard.ChartControl"

type ChartControlServer interface {
	GetInterval(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	SetInterval(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	ListCharts(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

func RegisterChartControlServer(s grpc.ServiceRegistrar, srv ChartControlServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ChartControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetInterval", Handler: getIntervalHandler},
		{MethodName: "SetInterval", Handler: setIntervalHandler},
		{MethodName: "ListCharts", Handler: listChartsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "chart_control.proto",
}

func getIntervalHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartControlServer).GetInterval(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetInterval")}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChartControlServer).GetInterval(ctx, req.(*wrapperspb.StringValue))
	})
}

func setIntervalHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartControlServer).SetInterval(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("SetInterval")}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChartControlServer).SetInterval(ctx, req.(*structpb.Struct))
	})
}

func listChartsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ChartControlServer).ListCharts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListCharts")}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ChartControlServer).ListCharts(ctx, req.(*emptypb.Empty))
	})
}

func fullMethod(name string) string {
	return fmt.Sprintf("/%s/%s", ServiceName, name)
}
