package scmv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ReportService_OrderStatus_FullMethodName       = "/scm.v1.ReportService/OrderStatus"
	ReportService_CargoTracking_FullMethodName     = "/scm.v1.ReportService/CargoTracking"
	ReportService_CarrierEfficiency_FullMethodName = "/scm.v1.ReportService/CarrierEfficiency"
	ReportService_WarehouseLoad_FullMethodName     = "/scm.v1.ReportService/WarehouseLoad"
	ReportService_KPI_FullMethodName               = "/scm.v1.ReportService/KPI"
	ReportService_Dashboard_FullMethodName         = "/scm.v1.ReportService/Dashboard"
)

// ReportServiceClient: клиент scm.v1.ReportService.
type ReportServiceClient interface {
	OrderStatus(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*OrderStatusResponse, error)
	CargoTracking(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CargoTrackingResponse, error)
	CarrierEfficiency(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CarrierEfficiencyResponse, error)
	WarehouseLoad(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*WarehouseLoadResponse, error)
	KPI(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*KPIResponse, error)
	Dashboard(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*DashboardResponse, error)
}

type reportServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewReportServiceClient создаёт клиента поверх соединения.
func NewReportServiceClient(cc grpc.ClientConnInterface) ReportServiceClient {
	return &reportServiceClient{cc}
}

// callOptions добавляет JSON-кодек к опциям вызова.
func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}

func (c *reportServiceClient) OrderStatus(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*OrderStatusResponse, error) {
	out := new(OrderStatusResponse)
	err := c.cc.Invoke(ctx, ReportService_OrderStatus_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportServiceClient) CargoTracking(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CargoTrackingResponse, error) {
	out := new(CargoTrackingResponse)
	err := c.cc.Invoke(ctx, ReportService_CargoTracking_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportServiceClient) CarrierEfficiency(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*CarrierEfficiencyResponse, error) {
	out := new(CarrierEfficiencyResponse)
	err := c.cc.Invoke(ctx, ReportService_CarrierEfficiency_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportServiceClient) WarehouseLoad(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*WarehouseLoadResponse, error) {
	out := new(WarehouseLoadResponse)
	err := c.cc.Invoke(ctx, ReportService_WarehouseLoad_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportServiceClient) KPI(ctx context.Context, in *ReportRequest, opts ...grpc.CallOption) (*KPIResponse, error) {
	out := new(KPIResponse)
	err := c.cc.Invoke(ctx, ReportService_KPI_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reportServiceClient) Dashboard(ctx context.Context, in *DashboardRequest, opts ...grpc.CallOption) (*DashboardResponse, error) {
	out := new(DashboardResponse)
	err := c.cc.Invoke(ctx, ReportService_Dashboard_FullMethodName, in, out, callOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReportServiceServer: серверная часть scm.v1.ReportService.
// Реализации должны встраивать UnimplementedReportServiceServer.
type ReportServiceServer interface {
	OrderStatus(context.Context, *ReportRequest) (*OrderStatusResponse, error)
	CargoTracking(context.Context, *ReportRequest) (*CargoTrackingResponse, error)
	CarrierEfficiency(context.Context, *ReportRequest) (*CarrierEfficiencyResponse, error)
	WarehouseLoad(context.Context, *ReportRequest) (*WarehouseLoadResponse, error)
	KPI(context.Context, *ReportRequest) (*KPIResponse, error)
	Dashboard(context.Context, *DashboardRequest) (*DashboardResponse, error)
	mustEmbedUnimplementedReportServiceServer()
}

// UnimplementedReportServiceServer отвечает Unimplemented на все методы.
type UnimplementedReportServiceServer struct{}

func (UnimplementedReportServiceServer) OrderStatus(context.Context, *ReportRequest) (*OrderStatusResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OrderStatus not implemented")
}

func (UnimplementedReportServiceServer) CargoTracking(context.Context, *ReportRequest) (*CargoTrackingResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CargoTracking not implemented")
}

func (UnimplementedReportServiceServer) CarrierEfficiency(context.Context, *ReportRequest) (*CarrierEfficiencyResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CarrierEfficiency not implemented")
}

func (UnimplementedReportServiceServer) WarehouseLoad(context.Context, *ReportRequest) (*WarehouseLoadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method WarehouseLoad not implemented")
}

func (UnimplementedReportServiceServer) KPI(context.Context, *ReportRequest) (*KPIResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method KPI not implemented")
}

func (UnimplementedReportServiceServer) Dashboard(context.Context, *DashboardRequest) (*DashboardResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Dashboard not implemented")
}

func (UnimplementedReportServiceServer) mustEmbedUnimplementedReportServiceServer() {}

// RegisterReportServiceServer регистрирует реализацию на сервере.
func RegisterReportServiceServer(s grpc.ServiceRegistrar, srv ReportServiceServer) {
	s.RegisterService(&ReportService_ServiceDesc, srv)
}

func _ReportService_OrderStatus_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).OrderStatus(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_OrderStatus_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).OrderStatus(ctx, req.(*ReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportService_CargoTracking_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).CargoTracking(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_CargoTracking_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).CargoTracking(ctx, req.(*ReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportService_CarrierEfficiency_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).CarrierEfficiency(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_CarrierEfficiency_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).CarrierEfficiency(ctx, req.(*ReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportService_WarehouseLoad_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).WarehouseLoad(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_WarehouseLoad_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).WarehouseLoad(ctx, req.(*ReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportService_KPI_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).KPI(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_KPI_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).KPI(ctx, req.(*ReportRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _ReportService_Dashboard_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DashboardRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ReportServiceServer).Dashboard(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ReportService_Dashboard_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ReportServiceServer).Dashboard(ctx, req.(*DashboardRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ReportService_ServiceDesc: описание сервиса для grpc.ServiceRegistrar.
var ReportService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "scm.v1.ReportService",
	HandlerType: (*ReportServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "OrderStatus",
			Handler:    _ReportService_OrderStatus_Handler,
		},
		{
			MethodName: "CargoTracking",
			Handler:    _ReportService_CargoTracking_Handler,
		},
		{
			MethodName: "CarrierEfficiency",
			Handler:    _ReportService_CarrierEfficiency_Handler,
		},
		{
			MethodName: "WarehouseLoad",
			Handler:    _ReportService_WarehouseLoad_Handler,
		},
		{
			MethodName: "KPI",
			Handler:    _ReportService_KPI_Handler,
		},
		{
			MethodName: "Dashboard",
			Handler:    _ReportService_Dashboard_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scm/v1/report_service",
}
