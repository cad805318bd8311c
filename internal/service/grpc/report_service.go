package grpcsvc

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
	scmv1 "github.com/vladislavdragonenkov/scm/proto/scm/v1"
)

// ReportService реализует gRPC API отчётов поверх report.Engine.
type ReportService struct {
	scmv1.UnimplementedReportServiceServer

	engine *report.Engine
	logger *log.Entry
}

// NewReportService конструирует сервис с зависимостями.
func NewReportService(engine *report.Engine, logger *log.Entry) *ReportService {
	if logger == nil {
		logger = log.New().WithField("component", "report-service")
	}
	return &ReportService{
		engine: engine,
		logger: logger,
	}
}

// OrderStatus возвращает отчёт по статусам заказов.
func (s *ReportService) OrderStatus(ctx context.Context, req *scmv1.ReportRequest) (*scmv1.OrderStatusResponse, error) {
	items, err := s.engine.OrderStatus(ctx, req.Filter())
	if err != nil {
		return nil, s.toStatus(err, report.ReportOrderStatus)
	}
	return &scmv1.OrderStatusResponse{Items: items}, nil
}

// CargoTracking возвращает маршруты грузов с событиями.
func (s *ReportService) CargoTracking(ctx context.Context, req *scmv1.ReportRequest) (*scmv1.CargoTrackingResponse, error) {
	items, err := s.engine.CargoTracking(ctx, req.Filter())
	if err != nil {
		return nil, s.toStatus(err, report.ReportCargoTracking)
	}
	return &scmv1.CargoTrackingResponse{Items: items}, nil
}

func (s *ReportService) CarrierEfficiency(ctx context.Context, req *scmv1.ReportRequest) (*scmv1.CarrierEfficiencyResponse, error) {
	items, err := s.engine.CarrierEfficiency(ctx, req.Filter())
	if err != nil {
		return nil, s.toStatus(err, report.ReportCarrierEfficiency)
	}
	return &scmv1.CarrierEfficiencyResponse{Items: items}, nil
}

func (s *ReportService) WarehouseLoad(ctx context.Context, req *scmv1.ReportRequest) (*scmv1.WarehouseLoadResponse, error) {
	items, err := s.engine.WarehouseLoad(ctx, req.Filter())
	if err != nil {
		return nil, s.toStatus(err, report.ReportWarehouseLoad)
	}
	return &scmv1.WarehouseLoadResponse{Items: items}, nil
}

// KPI возвращает сводные показатели и причины задержек.
func (s *ReportService) KPI(ctx context.Context, req *scmv1.ReportRequest) (*scmv1.KPIResponse, error) {
	kpi, err := s.engine.KPI(ctx, req.Filter())
	if err != nil {
		return nil, s.toStatus(err, report.ReportKPI)
	}
	return &scmv1.KPIResponse{Report: kpi}, nil
}

// Dashboard возвращает сводку главной страницы.
func (s *ReportService) Dashboard(ctx context.Context, _ *scmv1.DashboardRequest) (*scmv1.DashboardResponse, error) {
	stats, err := s.engine.Dashboard(ctx)
	if err != nil {
		return nil, s.toStatus(err, report.ReportDashboard)
	}
	return &scmv1.DashboardResponse{Stats: stats}, nil
}

func (s *ReportService) toStatus(err error, name string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.WithError(err).WithField("report", name).Error("failed to build report")
		return status.Error(codes.Internal, "failed to build report")
	}
}
